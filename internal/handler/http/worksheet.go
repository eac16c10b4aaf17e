package http

import (
	"net/http"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/worksheet"
	"github.com/pagemantra/worktrack-backend-go/internal/handler/http/response"
)

type WorksheetHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	Verify(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	BulkApprove(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	My(w http.ResponseWriter, r *http.Request)
	PendingVerification(w http.ResponseWriter, r *http.Request)
	PendingApproval(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
}

type worksheetHandlerImpl struct {
	worksheetService worksheet.WorksheetService
}

func NewWorksheetHandler(worksheetService worksheet.WorksheetService) WorksheetHandler {
	return &worksheetHandlerImpl{worksheetService: worksheetService}
}

func worksheetFilter(q *queryReader) worksheet.WorksheetFilter {
	filter := worksheet.WorksheetFilter{
		EmployeeID: q.text("employee_id"),
		StartDate:  q.text("start_date"),
		EndDate:    q.text("end_date"),
		Params:     q.params(),
	}
	if s := q.text("status"); s != nil {
		status := worksheet.Status(*s)
		filter.Status = &status
	}
	return filter
}

func (h *worksheetHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req worksheet.CreateWorksheetRequest
	if !decodeJSON(w, r, &req, "CreateWorksheet") {
		return
	}

	created, err := h.worksheetService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Worksheet created successfully", created)
}

func (h *worksheetHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req worksheet.UpdateWorksheetRequest
	if !decodeJSON(w, r, &req, "UpdateWorksheet") {
		return
	}

	updated, err := h.worksheetService.Update(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Worksheet updated successfully", updated)
}

// transition runs a body-less state change on the worksheet named in the path.
func (h *worksheetHandlerImpl) transition(w http.ResponseWriter, r *http.Request, message string, apply func(r *http.Request, id string) (worksheet.WorksheetResponse, error)) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := apply(r, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, message, result)
}

func (h *worksheetHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Worksheet submitted successfully", func(r *http.Request, id string) (worksheet.WorksheetResponse, error) {
		return h.worksheetService.Submit(r.Context(), id)
	})
}

func (h *worksheetHandlerImpl) Verify(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Worksheet verified successfully", func(r *http.Request, id string) (worksheet.WorksheetResponse, error) {
		return h.worksheetService.Verify(r.Context(), id)
	})
}

func (h *worksheetHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Worksheet approved successfully", func(r *http.Request, id string) (worksheet.WorksheetResponse, error) {
		return h.worksheetService.Approve(r.Context(), id)
	})
}

func (h *worksheetHandlerImpl) BulkApprove(w http.ResponseWriter, r *http.Request) {
	var req worksheet.BulkApproveRequest
	if !decodeJSON(w, r, &req, "BulkApprove") {
		return
	}

	approved, err := h.worksheetService.BulkApprove(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if approved == nil {
		approved = []worksheet.WorksheetResponse{}
	}
	response.Success(w, approved)
}

func (h *worksheetHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req worksheet.RejectRequest
	if !decodeJSON(w, r, &req, "RejectWorksheet") {
		return
	}

	rejected, err := h.worksheetService.Reject(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Worksheet rejected", rejected)
}

func (h *worksheetHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	filter := worksheetFilter(q)
	if !q.done(w) {
		return
	}

	page, err := h.worksheetService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, page)
}

func (h *worksheetHandlerImpl) My(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	filter := worksheetFilter(q)
	if !q.done(w) {
		return
	}

	page, err := h.worksheetService.My(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, page)
}

func (h *worksheetHandlerImpl) PendingVerification(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	params := q.params()
	if !q.done(w) {
		return
	}

	page, err := h.worksheetService.PendingVerification(r.Context(), params)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, page)
}

func (h *worksheetHandlerImpl) PendingApproval(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	params := q.params()
	if !q.done(w) {
		return
	}

	page, err := h.worksheetService.PendingApproval(r.Context(), params)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, page)
}

func (h *worksheetHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	filter := worksheet.SummaryFilter{StartDate: q.date("start_date"), EndDate: q.date("end_date")}
	if !q.done(w) {
		return
	}

	summary, err := h.worksheetService.Summary(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, summary)
}

func (h *worksheetHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ws, err := h.worksheetService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, ws)
}
