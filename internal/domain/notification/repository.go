package notification

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, n Notification) error
	CreateBatch(ctx context.Context, ns []Notification) error
	List(ctx context.Context, recipientID string, req ListNotificationsRequest) ([]Notification, int64, error)
	Count(ctx context.Context, recipientID string) (total int64, unread int64, err error)
	// MarkAsRead returns ErrNotificationNotFound when id is not owned by recipientID.
	MarkAsRead(ctx context.Context, id, recipientID string) (Notification, error)
	MarkAllAsRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id, recipientID string) error
	DeleteAll(ctx context.Context, recipientID string) (int64, error)
}
