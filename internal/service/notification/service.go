package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/sse"
)

// EventName is the SSE event name of a pushed notification.
const EventName = "notification"

// Config holds notification worker configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo   notification.Repository
	hub    *sse.Hub
	clock  clock.Clock
	config Config

	queue    chan notification.CreateNotificationRequest
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService starts the background workers that persist queued
// notifications in batches and push them to connected recipients.
func NewNotificationService(repo notification.Repository, hub *sse.Hub, clk clock.Clock, cfg Config) notification.Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:   repo,
		hub:    hub,
		clock:  clk,
		config: cfg,
		queue:  make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification workers started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)

	return s
}

func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		items := make([]notification.Notification, len(batch))
		for i, req := range batch {
			items[i] = s.build(req)
		}

		if err := s.repo.CreateBatch(ctx, items); err != nil {
			slog.Error("notification batch insert failed", "worker", id, "count", len(items), "error", err)
		} else {
			slog.Debug("notifications stored", "worker", id, "count", len(items))
			for _, n := range items {
				s.push(n)
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *service) build(req notification.CreateNotificationRequest) notification.Notification {
	return notification.Notification{
		ID:          uuid.NewString(),
		RecipientID: req.RecipientID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		RelatedID:   req.RelatedID,
		CreatedAt:   s.clock.Now(),
	}
}

func (s *service) push(n notification.Notification) {
	s.hub.Publish(sse.Event{
		UserID: n.RecipientID,
		Name:   EventName,
		Data:   notification.NewNotificationResponse(n),
	})
}

// Notify queues req. A full queue falls back to a direct insert.
func (s *service) Notify(ctx context.Context, req notification.CreateNotificationRequest) {
	if req.RecipientID == "" {
		return
	}
	if !req.Type.IsValid() {
		slog.ErrorContext(ctx, "dropping notification", "type", req.Type, "error", notification.ErrInvalidNotificationType)
		return
	}

	select {
	case s.queue <- req:
		return
	default:
	}

	slog.WarnContext(ctx, "notification queue full, inserting directly", "recipient_id", req.RecipientID)
	n := s.build(req)
	if err := s.repo.Create(context.WithoutCancel(ctx), n); err != nil {
		slog.ErrorContext(ctx, "notification insert failed", "recipient_id", req.RecipientID, "type", req.Type, "error", err)
		return
	}
	s.push(n)
}

func (s *service) List(ctx context.Context, req notification.ListNotificationsRequest) (pagination.Page[notification.NotificationResponse], error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return pagination.Page[notification.NotificationResponse]{}, err
	}
	if err := req.Validate(); err != nil {
		return pagination.Page[notification.NotificationResponse]{}, err
	}

	items, total, err := s.repo.List(ctx, actor.ID, req)
	if err != nil {
		return pagination.Page[notification.NotificationResponse]{}, fmt.Errorf("failed to list notifications: %w", err)
	}

	page := pagination.NewPage(items, total, req.Params)
	return pagination.Map(page, notification.NewNotificationResponse), nil
}

func (s *service) ListUnread(ctx context.Context, params pagination.Params) (pagination.Page[notification.NotificationResponse], error) {
	unread := false
	return s.List(ctx, notification.ListNotificationsRequest{IsRead: &unread, Params: params})
}

func (s *service) Count(ctx context.Context) (notification.CountResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return notification.CountResponse{}, err
	}
	total, unread, err := s.repo.Count(ctx, actor.ID)
	if err != nil {
		return notification.CountResponse{}, fmt.Errorf("failed to count notifications: %w", err)
	}
	return notification.CountResponse{Total: total, Unread: unread}, nil
}

func (s *service) MarkAsRead(ctx context.Context, id string) (notification.NotificationResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return notification.NotificationResponse{}, err
	}
	n, err := s.repo.MarkAsRead(ctx, id, actor.ID)
	if err != nil {
		return notification.NotificationResponse{}, err
	}
	return notification.NewNotificationResponse(n), nil
}

func (s *service) MarkAllAsRead(ctx context.Context) (int64, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.MarkAllAsRead(ctx, actor.ID)
}

func (s *service) Delete(ctx context.Context, id string) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, actor.ID)
}

func (s *service) DeleteAll(ctx context.Context) (int64, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.DeleteAll(ctx, actor.ID)
}

// Subscribe streams the notifications pushed to userID until ctx ends or the
// returned cleanup runs.
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Name, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop drains the queue, flushes the workers and waits for them to exit.
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("notification workers stopped")
	})
}
