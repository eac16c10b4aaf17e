package notification

import (
	"context"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

// Notifier queues notifications as fire-and-forget side effects. Failures are
// logged by the implementation and never returned to the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, req CreateNotificationRequest)
}

type Service interface {
	Notifier

	List(ctx context.Context, req ListNotificationsRequest) (pagination.Page[NotificationResponse], error)
	ListUnread(ctx context.Context, params pagination.Params) (pagination.Page[NotificationResponse], error)
	Count(ctx context.Context) (CountResponse, error)
	MarkAsRead(ctx context.Context, id string) (NotificationResponse, error)
	MarkAllAsRead(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)

	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())
	Stop()
}
