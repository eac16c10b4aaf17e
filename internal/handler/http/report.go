package http

import (
	"net/http"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/report"
	"github.com/pagemantra/worktrack-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	Productivity(w http.ResponseWriter, r *http.Request)
	Attendance(w http.ResponseWriter, r *http.Request)
	Overtime(w http.ResponseWriter, r *http.Request)
	TeamPerformance(w http.ResponseWriter, r *http.Request)
	WorksheetAnalytics(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// reportRequest reads the shared range and subject filters. Dates default to
// the last 30 days in the service.
func reportRequest(r *http.Request) report.ReportRequest {
	q := r.URL.Query()
	optional := func(key string) *string {
		if v := q.Get(key); v != "" {
			return &v
		}
		return nil
	}
	return report.ReportRequest{
		StartDate:  optional("start_date"),
		EndDate:    optional("end_date"),
		EmployeeID: optional("employee_id"),
		TeamID:     optional("team_id"),
	}
}

// Productivity handles GET /reports/productivity
func (h *reportHandlerImpl) Productivity(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.Productivity(r.Context(), reportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Attendance handles GET /reports/attendance
func (h *reportHandlerImpl) Attendance(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.Attendance(r.Context(), reportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Overtime handles GET /reports/overtime
func (h *reportHandlerImpl) Overtime(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.Overtime(r.Context(), reportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// TeamPerformance handles GET /reports/team-performance
func (h *reportHandlerImpl) TeamPerformance(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.TeamPerformance(r.Context(), reportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// WorksheetAnalytics handles GET /reports/worksheet-analytics
func (h *reportHandlerImpl) WorksheetAnalytics(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.WorksheetAnalytics(r.Context(), reportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
