package memory

import (
	"context"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
)

type notificationRepository struct{ s *Store }

func NewNotificationRepository(s *Store) notification.Repository {
	return &notificationRepository{s: s}
}

func (r *notificationRepository) Create(ctx context.Context, n notification.Notification) error {
	return r.CreateBatch(ctx, []notification.Notification{n})
}

func (r *notificationRepository) CreateBatch(_ context.Context, ns []notification.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range ns {
		n.ID, _ = r.s.nextID(n.ID)
		r.s.notifications = append(r.s.notifications, n)
	}
	return nil
}

// List returns newest first; ties keep reverse insertion order.
func (r *notificationRepository) List(_ context.Context, recipientID string, req notification.ListNotificationsRequest) ([]notification.Notification, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []notification.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		n := r.s.notifications[i]
		if n.RecipientID != recipientID {
			continue
		}
		if req.IsRead != nil && n.IsRead != *req.IsRead {
			continue
		}
		out = append(out, n)
	}
	sortDesc(out, func(n notification.Notification) string { return n.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000") })
	items, total := window(out, req.Params)
	return items, total, nil
}

func (r *notificationRepository) Count(_ context.Context, recipientID string) (int64, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total, unread int64
	for _, n := range r.s.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		total++
		if !n.IsRead {
			unread++
		}
	}
	return total, unread, nil
}

func (r *notificationRepository) MarkAsRead(_ context.Context, id, recipientID string) (notification.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, n := range r.s.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			r.s.notifications[i].IsRead = true
			return r.s.notifications[i], nil
		}
	}
	return notification.Notification{}, notification.ErrNotificationNotFound
}

func (r *notificationRepository) MarkAllAsRead(_ context.Context, recipientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for i := range r.s.notifications {
		if r.s.notifications[i].RecipientID == recipientID && !r.s.notifications[i].IsRead {
			r.s.notifications[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *notificationRepository) Delete(_ context.Context, id, recipientID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, n := range r.s.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			r.s.notifications = append(r.s.notifications[:i], r.s.notifications[i+1:]...)
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}

func (r *notificationRepository) DeleteAll(_ context.Context, recipientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.notifications[:0]
	var deleted int64
	for _, n := range r.s.notifications {
		if n.RecipientID == recipientID {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.s.notifications = kept
	return deleted, nil
}
