package task

import (
	"strings"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/validator"
)

type CreateTaskRequest struct {
	Title          string   `json:"title" validate:"required,min=3,max=200"`
	Description    *string  `json:"description" validate:"omitempty,max=2000"`
	AssignedTo     string   `json:"assigned_to" validate:"required,uuid"`
	TeamID         *string  `json:"team_id" validate:"omitempty,uuid"`
	Priority       Priority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate        *string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	EstimatedHours *float64 `json:"estimated_hours" validate:"omitempty,gte=0,lte=1000"`
}

func (r *CreateTaskRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	return validator.Struct(r)
}

type UpdateTaskRequest struct {
	Title          *string   `json:"title" validate:"omitempty,min=3,max=200"`
	Description    *string   `json:"description" validate:"omitempty,max=2000"`
	Status         *Status   `json:"status" validate:"omitempty,oneof=pending in_progress completed on_hold cancelled"`
	Priority       *Priority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate        *string   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	EstimatedHours *float64  `json:"estimated_hours" validate:"omitempty,gte=0,lte=1000"`
}

func (r *UpdateTaskRequest) Validate() error {
	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		r.Title = &trimmed
	}
	return validator.Struct(r)
}

// OnlyStatus reports whether the request touches nothing but the status.
func (r UpdateTaskRequest) OnlyStatus() bool {
	return r.Title == nil && r.Description == nil && r.Priority == nil &&
		r.DueDate == nil && r.EstimatedHours == nil
}

type WorkLogRequest struct {
	HoursWorked float64 `json:"hours_worked" validate:"gt=0,lte=24"`
	WorkDate    string  `json:"work_date" validate:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes" validate:"omitempty,max=1000"`
}

func (r *WorkLogRequest) Validate() error {
	r.WorkDate = strings.TrimSpace(r.WorkDate)
	return validator.Struct(r)
}

type TaskFilter struct {
	Status     *Status
	Priority   *Priority
	AssignedTo *string
	AssignedBy *string
	pagination.Params
}

func (f *TaskFilter) Validate() error {
	errs := f.Params.Validate()
	if f.Status != nil && !f.Status.IsValid() {
		errs = errs.Add("status", "status must be one of pending, in_progress, completed, on_hold, cancelled")
	}
	if f.Priority != nil && !f.Priority.IsValid() {
		errs = errs.Add("priority", "priority must be one of low, medium, high, urgent")
	}
	if f.AssignedTo != nil && !validator.IsValidID(*f.AssignedTo) {
		errs = errs.Add("assigned_to", "assigned_to must be a valid identifier")
	}
	return errs.OrNil()
}

type SummaryFilter struct {
	StartDate *string
	EndDate   *string
}

func (f *SummaryFilter) Validate() error {
	var errs validator.ValidationErrors
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
		errs = errs.Add("start_date", ErrInvalidSummaryDate.Error())
	}
	return errs.OrNil()
}

// StatusTotals is one row of the task summary aggregation.
type StatusTotals struct {
	Status         Status
	Count          int64
	EstimatedHours float64
	ActualHours    float64
}

type Summary struct {
	TotalTasks          int64            `json:"total_tasks"`
	ByStatus            map[Status]int64 `json:"by_status"`
	TotalEstimatedHours float64          `json:"total_estimated_hours"`
	TotalActualHours    float64          `json:"total_actual_hours"`
}

func NewSummary(rows []StatusTotals) Summary {
	s := Summary{ByStatus: make(map[Status]int64, len(Statuses))}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	for _, r := range rows {
		s.ByStatus[r.Status] += r.Count
		s.TotalTasks += r.Count
		s.TotalEstimatedHours += r.EstimatedHours
		s.TotalActualHours += r.ActualHours
	}
	return s
}

type TaskResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	AssignedTo     string     `json:"assigned_to"`
	AssigneeName   *string    `json:"assigned_to_name,omitempty"`
	AssignedBy     string     `json:"assigned_by"`
	TeamID         *string    `json:"team_id"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	DueDate        *string    `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    float64    `json:"actual_hours"`
	WorkLogs       []WorkLog  `json:"work_logs"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func NewTaskResponse(t Task) TaskResponse {
	logs := t.WorkLogs
	if logs == nil {
		logs = []WorkLog{}
	}
	return TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		AssignedTo:     t.AssignedTo,
		AssigneeName:   t.AssigneeName,
		AssignedBy:     t.AssignedBy,
		TeamID:         t.TeamID,
		Status:         t.Status,
		Priority:       t.Priority,
		DueDate:        t.DueDate,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		WorkLogs:       logs,
		CompletedAt:    t.CompletedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
