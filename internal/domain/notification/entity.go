package notification

import (
	"time"
)

type NotificationType string

const (
	TypeWorksheetSubmitted NotificationType = "worksheet_submitted"
	TypeWorksheetVerified  NotificationType = "worksheet_verified"
	TypeWorksheetApproved  NotificationType = "worksheet_approved"
	TypeWorksheetRejected  NotificationType = "worksheet_rejected"
	TypeTaskAssigned       NotificationType = "task_assigned"
	TypeTaskUpdated        NotificationType = "task_updated"
	TypeOvertimeAlert      NotificationType = "overtime_alert"
	TypeBreakLimitWarning  NotificationType = "break_limit_warning"
	TypeTeamMemberAdded    NotificationType = "team_member_added"
	TypeFormAssigned       NotificationType = "form_assigned"
)

func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeWorksheetSubmitted,
		TypeWorksheetVerified,
		TypeWorksheetApproved,
		TypeWorksheetRejected,
		TypeTaskAssigned,
		TypeTaskUpdated,
		TypeOvertimeAlert,
		TypeBreakLimitWarning,
		TypeTeamMemberAdded,
		TypeFormAssigned,
	}
}

func (t NotificationType) IsValid() bool {
	for _, known := range AllNotificationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType
	Title       string
	Message     string
	RelatedID   *string
	IsRead      bool
	CreatedAt   time.Time
}
