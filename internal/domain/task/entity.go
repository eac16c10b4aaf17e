package task

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on_hold"
	StatusCancelled  Status = "cancelled"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// WorkLog is one entry of time spent on a task.
type WorkLog struct {
	LoggedBy    string    `json:"logged_by"`
	HoursWorked float64   `json:"hours_worked"`
	WorkDate    string    `json:"work_date"`
	Notes       *string   `json:"notes"`
	LoggedAt    time.Time `json:"logged_at"`
}

type Task struct {
	ID             string
	Title          string
	Description    *string
	AssignedTo     string
	AssignedBy     string
	TeamID         *string
	Status         Status
	Priority       Priority
	DueDate        *string
	EstimatedHours *float64
	ActualHours    float64
	WorkLogs       []WorkLog
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Join: the assignee's supervisors, for visibility checks.
	AssigneeName       *string
	AssigneeManagerID  *string
	AssigneeTeamLeadID *string
}

// SetStatus moves the task to status, stamping or clearing completed_at.
func (t Task) SetStatus(status Status, now time.Time) Task {
	if status == t.Status {
		return t
	}
	t.Status = status
	if status == StatusCompleted {
		at := now
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
	return t
}
