package memory

import (
	"context"
	"sync"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
)

// Notifier records notifications synchronously instead of queueing them.
type Notifier struct {
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (n *Notifier) Notify(_ context.Context, req notification.CreateNotificationRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, req)
}

func (n *Notifier) Sent() []notification.CreateNotificationRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.CreateNotificationRequest(nil), n.sent...)
}

// To returns the notifications addressed to recipientID, in order.
func (n *Notifier) To(recipientID string) []notification.CreateNotificationRequest {
	var out []notification.CreateNotificationRequest
	for _, req := range n.Sent() {
		if req.RecipientID == recipientID {
			out = append(out, req)
		}
	}
	return out
}

func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
}
