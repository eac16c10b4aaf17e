package http

import (
	"net/http"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/team"
	"github.com/pagemantra/worktrack-backend-go/internal/handler/http/response"
)

type TeamHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	AddMember(w http.ResponseWriter, r *http.Request)
	RemoveMember(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type teamHandlerImpl struct {
	teamService team.TeamService
}

func NewTeamHandler(teamService team.TeamService) TeamHandler {
	return &teamHandlerImpl{teamService: teamService}
}

func (h *teamHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req team.CreateTeamRequest
	if !decodeJSON(w, r, &req, "CreateTeam") {
		return
	}

	created, err := h.teamService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Team created successfully", created)
}

func (h *teamHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	filter := team.TeamFilter{IsActive: q.flag("is_active"), Params: q.params()}
	if !q.done(w) {
		return
	}

	page, err := h.teamService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, page)
}

func (h *teamHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	t, err := h.teamService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, t)
}

func (h *teamHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req team.UpdateTeamRequest
	if !decodeJSON(w, r, &req, "UpdateTeam") {
		return
	}

	updated, err := h.teamService.Update(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Team updated successfully", updated)
}

func (h *teamHandlerImpl) AddMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req team.AddMemberRequest
	if !decodeJSON(w, r, &req, "AddTeamMember") {
		return
	}

	updated, err := h.teamService.AddMember(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Member added successfully", updated)
}

func (h *teamHandlerImpl) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	updated, err := h.teamService.RemoveMember(r.Context(), id, userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Member removed successfully", updated)
}

func (h *teamHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.teamService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Team deleted successfully", nil)
}
