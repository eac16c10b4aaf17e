package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/attendance"
	"github.com/pagemantra/worktrack-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	Current(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)

	CreateBreakSettings(w http.ResponseWriter, r *http.Request)
	GetBreakSettings(w http.ResponseWriter, r *http.Request)
	UpdateBreakSettings(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService    attendance.AttendanceService
	breakSettingsService attendance.BreakSettingsService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, breakSettingsService attendance.BreakSettingsService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService:    attendanceService,
		breakSettingsService: breakSettingsService,
	}
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	session, err := h.attendanceService.ClockIn(r.Context())
	if err != nil {
		slog.Debug("ClockIn service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Clocked in successfully", session)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.ClockOutRequest
	if !decodeOptionalJSON(w, r, &req, "ClockOut") {
		return
	}

	session, err := h.attendanceService.ClockOut(r.Context(), req)
	if err != nil {
		slog.Debug("ClockOut service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Clocked out successfully", session)
}

// StartBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	var req attendance.StartBreakRequest
	if !decodeOptionalJSON(w, r, &req, "StartBreak") {
		return
	}

	session, err := h.attendanceService.StartBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Break started", session)
}

// EndBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	session, err := h.attendanceService.EndBreak(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Break ended", session)
}

// Current implements AttendanceHandler. No open session is not an error.
func (h *attendanceHandlerImpl) Current(w http.ResponseWriter, r *http.Request) {
	session, err := h.attendanceService.Current(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, session)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.attendanceService.Today(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if sessions == nil {
		sessions = []attendance.SessionResponse{}
	}
	response.Success(w, sessions)
}

// History implements AttendanceHandler.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	filter := attendance.HistoryFilter{
		EmployeeID: q.text("employee_id"),
		StartDate:  q.text("start_date"),
		EndDate:    q.text("end_date"),
		Params:     q.params(),
	}
	if s := q.text("status"); s != nil {
		status := attendance.SessionStatus(*s)
		filter.Status = &status
	}
	if !q.done(w) {
		return
	}

	page, err := h.attendanceService.History(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, page)
}

// CreateBreakSettings implements AttendanceHandler.
func (h *attendanceHandlerImpl) CreateBreakSettings(w http.ResponseWriter, r *http.Request) {
	var req attendance.CreateBreakSettingsRequest
	if !decodeJSON(w, r, &req, "CreateBreakSettings") {
		return
	}

	settings, err := h.breakSettingsService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Break settings created successfully", settings)
}

// GetBreakSettings implements AttendanceHandler. A team without a policy
// answers with empty data.
func (h *attendanceHandlerImpl) GetBreakSettings(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(w, r, "teamID")
	if !ok {
		return
	}

	settings, err := h.breakSettingsService.Get(r.Context(), teamID)
	if errors.Is(err, attendance.ErrBreakSettingsMissing) {
		response.Success(w, nil)
		return
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, settings)
}

// UpdateBreakSettings implements AttendanceHandler.
func (h *attendanceHandlerImpl) UpdateBreakSettings(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(w, r, "teamID")
	if !ok {
		return
	}
	var req attendance.UpdateBreakSettingsRequest
	if !decodeJSON(w, r, &req, "UpdateBreakSettings") {
		return
	}

	settings, err := h.breakSettingsService.Update(r.Context(), teamID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Break settings updated successfully", settings)
}
