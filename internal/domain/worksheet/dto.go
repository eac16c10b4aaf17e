package worksheet

import (
	"strings"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/validator"
)

type FieldResponseRequest struct {
	FieldID    string `json:"field_id" validate:"required"`
	FieldLabel string `json:"field_label" validate:"required,max=200"`
	Value      any    `json:"value"`
}

type CreateWorksheetRequest struct {
	Date           string                 `json:"date" validate:"required,datetime=2006-01-02"`
	FormID         string                 `json:"form_id" validate:"required,uuid"`
	FormResponses  []FieldResponseRequest `json:"form_responses" validate:"omitempty,dive"`
	TasksCompleted []string               `json:"tasks_completed" validate:"omitempty,dive,uuid"`
	TotalHours     *float64               `json:"total_hours" validate:"omitempty,gte=0,lte=24"`
	Notes          *string                `json:"notes" validate:"omitempty,max=2000"`
}

func (r *CreateWorksheetRequest) Validate() error {
	r.Date = strings.TrimSpace(r.Date)
	return validator.Struct(r)
}

type UpdateWorksheetRequest struct {
	FormResponses  []FieldResponseRequest `json:"form_responses" validate:"omitempty,dive"`
	TasksCompleted []string               `json:"tasks_completed" validate:"omitempty,dive,uuid"`
	TotalHours     *float64               `json:"total_hours" validate:"omitempty,gte=0,lte=24"`
	Notes          *string                `json:"notes" validate:"omitempty,max=2000"`
}

func (r *UpdateWorksheetRequest) Validate() error {
	return validator.Struct(r)
}

func (r UpdateWorksheetRequest) Edit() Edit {
	return Edit{
		FormResponses:  toFieldResponses(r.FormResponses),
		TasksCompleted: r.TasksCompleted,
		TotalHours:     r.TotalHours,
		Notes:          r.Notes,
	}
}

func toFieldResponses(in []FieldResponseRequest) []FieldResponse {
	if in == nil {
		return nil
	}
	out := make([]FieldResponse, len(in))
	for i, r := range in {
		out[i] = FieldResponse{FieldID: r.FieldID, FieldLabel: r.FieldLabel, Value: r.Value}
	}
	return out
}

func (r CreateWorksheetRequest) Responses() []FieldResponse {
	if out := toFieldResponses(r.FormResponses); out != nil {
		return out
	}
	return []FieldResponse{}
}

type RejectRequest struct {
	Reason string `json:"rejection_reason" validate:"required,min=5,max=500"`
}

func (r *RejectRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	return validator.Struct(r)
}

type BulkApproveRequest struct {
	WorksheetIDs []string `json:"worksheet_ids" validate:"required,min=1,max=100,dive,uuid"`
}

func (r *BulkApproveRequest) Validate() error {
	return validator.Struct(r)
}

type WorksheetFilter struct {
	EmployeeID *string
	Status     *Status
	StartDate  *string
	EndDate    *string
	pagination.Params
}

func (f *WorksheetFilter) Validate() error {
	errs := f.Params.Validate()
	if f.EmployeeID != nil && !validator.IsValidID(*f.EmployeeID) {
		errs = errs.Add("employee_id", "employee_id must be a valid identifier")
	}
	if f.Status != nil && !f.Status.IsValid() {
		errs = errs.Add("status", "status must be one of draft, submitted, tl_verified, manager_approved, rejected")
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
		errs = errs.Add("start_date", "start_date must not be after end_date")
	}
	return errs.OrNil()
}

type SummaryFilter struct {
	StartDate *string
	EndDate   *string
}

type Summary struct {
	Total               int64 `json:"total"`
	Draft               int64 `json:"draft"`
	Submitted           int64 `json:"submitted"`
	TLVerified          int64 `json:"tl_verified"`
	ManagerApproved     int64 `json:"manager_approved"`
	Rejected            int64 `json:"rejected"`
	PendingVerification int64 `json:"pending_verification"`
	PendingApproval     int64 `json:"pending_approval"`
}

// NewSummary folds per-status counts into the summary projection.
func NewSummary(counts map[Status]int64) Summary {
	s := Summary{
		Draft:           counts[StatusDraft],
		Submitted:       counts[StatusSubmitted],
		TLVerified:      counts[StatusTLVerified],
		ManagerApproved: counts[StatusManagerApproved],
		Rejected:        counts[StatusRejected],
	}
	s.Total = s.Draft + s.Submitted + s.TLVerified + s.ManagerApproved + s.Rejected
	s.PendingVerification = s.Submitted
	s.PendingApproval = s.TLVerified
	return s
}

type WorksheetResponse struct {
	ID                string          `json:"id"`
	EmployeeID        string          `json:"employee_id"`
	EmployeeName      *string         `json:"employee_name,omitempty"`
	Date              string          `json:"date"`
	FormID            string          `json:"form_id"`
	FormResponses     []FieldResponse `json:"form_responses"`
	TasksCompleted    []string        `json:"tasks_completed"`
	TotalHours        float64         `json:"total_hours"`
	Notes             *string         `json:"notes"`
	Status            Status          `json:"status"`
	SubmittedAt       *time.Time      `json:"submitted_at"`
	TLVerifiedBy      *string         `json:"tl_verified_by"`
	TLVerifiedAt      *time.Time      `json:"tl_verified_at"`
	ManagerApprovedBy *string         `json:"manager_approved_by"`
	ManagerApprovedAt *time.Time      `json:"manager_approved_at"`
	RejectionReason   *string         `json:"rejection_reason"`
	RejectedBy        *string         `json:"rejected_by"`
	RejectedAt        *time.Time      `json:"rejected_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func NewWorksheetResponse(w Worksheet) WorksheetResponse {
	responses := w.FormResponses
	if responses == nil {
		responses = []FieldResponse{}
	}
	tasks := w.TasksCompleted
	if tasks == nil {
		tasks = []string{}
	}
	return WorksheetResponse{
		ID:                w.ID,
		EmployeeID:        w.EmployeeID,
		EmployeeName:      w.EmployeeName,
		Date:              w.Date,
		FormID:            w.FormID,
		FormResponses:     responses,
		TasksCompleted:    tasks,
		TotalHours:        w.TotalHours,
		Notes:             w.Notes,
		Status:            w.Status,
		SubmittedAt:       w.SubmittedAt,
		TLVerifiedBy:      w.TLVerifiedBy,
		TLVerifiedAt:      w.TLVerifiedAt,
		ManagerApprovedBy: w.ManagerApprovedBy,
		ManagerApprovedAt: w.ManagerApprovedAt,
		RejectionReason:   w.RejectionReason,
		RejectedBy:        w.RejectedBy,
		RejectedAt:        w.RejectedAt,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}
