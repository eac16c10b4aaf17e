package http

import (
	"net/http"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/form"
	"github.com/pagemantra/worktrack-backend-go/internal/handler/http/response"
)

type FormHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	TeamForms(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Assign(w http.ResponseWriter, r *http.Request)
	Unassign(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type formHandlerImpl struct {
	formService form.FormService
}

func NewFormHandler(formService form.FormService) FormHandler {
	return &formHandlerImpl{formService: formService}
}

func (h *formHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req form.CreateFormRequest
	if !decodeJSON(w, r, &req, "CreateForm") {
		return
	}

	created, err := h.formService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Form created successfully", created)
}

func (h *formHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	filter := form.FormFilter{IsActive: q.flag("is_active"), Params: q.params()}
	if !q.done(w) {
		return
	}

	page, err := h.formService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, page)
}

func (h *formHandlerImpl) TeamForms(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(w, r, "teamID")
	if !ok {
		return
	}

	forms, err := h.formService.TeamForms(r.Context(), teamID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, forms)
}

func (h *formHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	f, err := h.formService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, f)
}

func (h *formHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req form.UpdateFormRequest
	if !decodeJSON(w, r, &req, "UpdateForm") {
		return
	}

	updated, err := h.formService.Update(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Form updated successfully", updated)
}

func (h *formHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req form.AssignTeamsRequest
	if !decodeJSON(w, r, &req, "AssignForm") {
		return
	}

	updated, err := h.formService.Assign(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Form assigned successfully", updated)
}

func (h *formHandlerImpl) Unassign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	teamID, ok := pathID(w, r, "teamID")
	if !ok {
		return
	}

	updated, err := h.formService.Unassign(r.Context(), id, teamID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Form unassigned successfully", updated)
}

func (h *formHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.formService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Form deleted successfully", nil)
}
