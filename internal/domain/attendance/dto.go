package attendance

import (
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/validator"
)

type StartBreakRequest struct {
	BreakType BreakType `json:"break_type" validate:"omitempty,oneof=short_break lunch_break tea_break meeting other"`
	Comment   *string   `json:"comment" validate:"omitempty,max=500"`
}

func (r *StartBreakRequest) Validate() error {
	if r.BreakType == "" {
		r.BreakType = BreakShort
	}
	return validator.Struct(r)
}

type ClockOutRequest struct {
	Force bool `json:"force"`
}

type HistoryFilter struct {
	EmployeeID *string
	StartDate  *string
	EndDate    *string
	Status     *SessionStatus
	pagination.Params
}

func (f *HistoryFilter) Validate() error {
	errs := f.Params.Validate()
	if f.EmployeeID != nil && !validator.IsValidID(*f.EmployeeID) {
		errs = errs.Add("employee_id", "employee_id must be a valid identifier")
	}
	var start, end time.Time
	var okStart, okEnd bool
	if f.StartDate != nil {
		if start, okStart = validator.IsValidDate(*f.StartDate); !okStart {
			errs = errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil {
		if end, okEnd = validator.IsValidDate(*f.EndDate); !okEnd {
			errs = errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if okStart && okEnd && start.After(end) {
		errs = errs.Add("start_date", ErrInvalidDateRange.Error())
	}
	if f.Status != nil && !f.Status.IsValid() {
		errs = errs.Add("status", "status must be one of active, on_break, completed, incomplete")
	}
	return errs.OrNil()
}

type CreateBreakSettingsRequest struct {
	TeamID                  string `json:"team_id" validate:"required,uuid"`
	MaxBreaksPerDay         *int   `json:"max_breaks_per_day" validate:"omitempty,gte=1,lte=50"`
	MaxBreakDurationMinutes *int   `json:"max_break_duration_minutes" validate:"omitempty,gte=1,lte=1440"`
	LunchBreakDuration      *int   `json:"lunch_break_duration" validate:"omitempty,gte=1,lte=480"`
	ShortBreakDuration      *int   `json:"short_break_duration" validate:"omitempty,gte=1,lte=480"`
	EnforceLimits           bool   `json:"enforce_limits"`
}

func (r *CreateBreakSettingsRequest) Validate() error {
	if r.LunchBreakDuration == nil {
		lunch := 60
		r.LunchBreakDuration = &lunch
	}
	if r.ShortBreakDuration == nil {
		short := 15
		r.ShortBreakDuration = &short
	}
	return validator.Struct(r)
}

type UpdateBreakSettingsRequest struct {
	MaxBreaksPerDay         *int  `json:"max_breaks_per_day" validate:"omitempty,gte=1,lte=50"`
	MaxBreakDurationMinutes *int  `json:"max_break_duration_minutes" validate:"omitempty,gte=1,lte=1440"`
	LunchBreakDuration      *int  `json:"lunch_break_duration" validate:"omitempty,gte=1,lte=480"`
	ShortBreakDuration      *int  `json:"short_break_duration" validate:"omitempty,gte=1,lte=480"`
	EnforceLimits           *bool `json:"enforce_limits"`
}

func (r *UpdateBreakSettingsRequest) Validate() error {
	return validator.Struct(r)
}

type SessionResponse struct {
	ID                 string        `json:"id"`
	EmployeeID         string        `json:"employee_id"`
	EmployeeName       *string       `json:"employee_name,omitempty"`
	Date               string        `json:"date"`
	LoginTime          time.Time     `json:"login_time"`
	LogoutTime         *time.Time    `json:"logout_time"`
	Breaks             []Break       `json:"breaks"`
	TotalWorkHours     float64       `json:"total_work_hours"`
	TotalBreakMinutes  int           `json:"total_break_minutes"`
	OvertimeHours      float64       `json:"overtime_hours"`
	Status             SessionStatus `json:"status"`
	WorksheetSubmitted bool          `json:"worksheet_submitted"`
	CurrentBreakID     *string       `json:"current_break_id"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func NewSessionResponse(s TimeSession) SessionResponse {
	breaks := s.Breaks
	if breaks == nil {
		breaks = []Break{}
	}
	return SessionResponse{
		ID:                 s.ID,
		EmployeeID:         s.EmployeeID,
		EmployeeName:       s.EmployeeName,
		Date:               s.Date,
		LoginTime:          s.LoginTime,
		LogoutTime:         s.LogoutTime,
		Breaks:             breaks,
		TotalWorkHours:     s.TotalWorkHours,
		TotalBreakMinutes:  s.TotalBreakMinutes,
		OvertimeHours:      s.OvertimeHours,
		Status:             s.Status,
		WorksheetSubmitted: s.WorksheetSubmitted,
		CurrentBreakID:     s.CurrentBreakID,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}
