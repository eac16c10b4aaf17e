package notification

import (
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

// CreateNotificationRequest is a side effect queued by another operation.
type CreateNotificationRequest struct {
	RecipientID string
	Type        NotificationType
	Title       string
	Message     string
	RelatedID   *string
}

type ListNotificationsRequest struct {
	IsRead *bool
	pagination.Params
}

func (r *ListNotificationsRequest) Validate() error {
	return r.Params.Validate().OrNil()
}

type NotificationResponse struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	RelatedID   *string          `json:"related_id"`
	IsRead      bool             `json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}

func NewNotificationResponse(n Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		RelatedID:   n.RelatedID,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}

type CountResponse struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// SSEEvent is the payload pushed to a connected recipient.
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}
