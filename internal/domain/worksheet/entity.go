package worksheet

import (
	"slices"
	"time"
)

type Status string

const (
	StatusDraft           Status = "draft"
	StatusSubmitted       Status = "submitted"
	StatusTLVerified      Status = "tl_verified"
	StatusManagerApproved Status = "manager_approved"
	StatusRejected        Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusTLVerified, StatusManagerApproved, StatusRejected:
		return true
	}
	return false
}

// Action is a transition of the verification workflow.
type Action string

const (
	ActionUpdate  Action = "update"
	ActionSubmit  Action = "submit"
	ActionVerify  Action = "verify"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// transitions lists, per action, the states it may start from.
var transitions = map[Action][]Status{
	ActionUpdate:  {StatusDraft, StatusRejected},
	ActionSubmit:  {StatusDraft, StatusRejected},
	ActionVerify:  {StatusSubmitted},
	ActionApprove: {StatusTLVerified},
	ActionReject:  {StatusSubmitted, StatusTLVerified},
}

// From returns the states action may start from.
func From(action Action) []Status {
	return slices.Clone(transitions[action])
}

// CanApply reports whether action is legal from s.
func CanApply(action Action, s Status) bool {
	return slices.Contains(transitions[action], s)
}

type FieldResponse struct {
	FieldID    string `json:"field_id"`
	FieldLabel string `json:"field_label"`
	Value      any    `json:"value"`
}

// Worksheet is the daily work log of one employee, signed off by the team
// lead and then the manager.
type Worksheet struct {
	ID                string
	EmployeeID        string
	Date              string
	FormID            string
	FormResponses     []FieldResponse
	TasksCompleted    []string
	TotalHours        float64
	Notes             *string
	Status            Status
	SubmittedAt       *time.Time
	TLVerifiedBy      *string
	TLVerifiedAt      *time.Time
	ManagerApprovedBy *string
	ManagerApprovedAt *time.Time
	RejectionReason   *string
	RejectedBy        *string
	RejectedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Join
	EmployeeName *string
}

// Edit is the owner-supplied content of a worksheet.
type Edit struct {
	FormResponses  []FieldResponse
	TasksCompleted []string
	TotalHours     *float64
	Notes          *string
}

// Update applies e. A rejected worksheet returns to draft and loses its
// rejection metadata.
func (w Worksheet) Update(e Edit, now time.Time) (Worksheet, error) {
	if !CanApply(ActionUpdate, w.Status) {
		return w, ErrNotEditable
	}
	if e.FormResponses != nil {
		w.FormResponses = slices.Clone(e.FormResponses)
	}
	if e.TasksCompleted != nil {
		w.TasksCompleted = slices.Clone(e.TasksCompleted)
	}
	if e.TotalHours != nil {
		w.TotalHours = *e.TotalHours
	}
	if e.Notes != nil {
		w.Notes = e.Notes
	}
	if w.Status == StatusRejected {
		w.Status = StatusDraft
		w.clearRejection()
	}
	w.UpdatedAt = now
	return w, nil
}

func (w Worksheet) Submit(now time.Time) (Worksheet, error) {
	if !CanApply(ActionSubmit, w.Status) {
		return w, ErrCannotSubmit
	}
	at := now
	w.Status = StatusSubmitted
	w.SubmittedAt = &at
	w.clearRejection()
	w.UpdatedAt = now
	return w, nil
}

func (w Worksheet) Verify(by string, now time.Time) (Worksheet, error) {
	if !CanApply(ActionVerify, w.Status) {
		return w, ErrCannotVerify
	}
	at := now
	w.Status = StatusTLVerified
	w.TLVerifiedBy = &by
	w.TLVerifiedAt = &at
	w.UpdatedAt = now
	return w, nil
}

func (w Worksheet) Approve(by string, now time.Time) (Worksheet, error) {
	if !CanApply(ActionApprove, w.Status) {
		return w, ErrCannotApprove
	}
	at := now
	w.Status = StatusManagerApproved
	w.ManagerApprovedBy = &by
	w.ManagerApprovedAt = &at
	w.UpdatedAt = now
	return w, nil
}

func (w Worksheet) Reject(by, reason string, now time.Time) (Worksheet, error) {
	if !CanApply(ActionReject, w.Status) {
		return w, ErrCannotReject
	}
	at := now
	w.Status = StatusRejected
	w.RejectionReason = &reason
	w.RejectedBy = &by
	w.RejectedAt = &at
	w.UpdatedAt = now
	return w, nil
}

func (w *Worksheet) clearRejection() {
	w.RejectionReason = nil
	w.RejectedBy = nil
	w.RejectedAt = nil
}
