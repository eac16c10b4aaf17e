package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, recipient_id, type, title, message, related_id, is_read, created_at`

func scanNotification(row pgx.Row) (notification.Notification, error) {
	var n notification.Notification
	var notifType string
	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&notifType,
		&n.Title,
		&n.Message,
		&n.RelatedID,
		&n.IsRead,
		&n.CreatedAt,
	)
	n.Type = notification.NotificationType(notifType)
	return n, err
}

// Create inserts a single notification
func (r *notificationRepository) Create(ctx context.Context, n notification.Notification) error {
	return r.CreateBatch(ctx, []notification.Notification{n})
}

// CreateBatch inserts notifications with one multi-row statement
func (r *notificationRepository) CreateBatch(ctx context.Context, ns []notification.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	const perRow = 8
	valueStrings := make([]string, 0, len(ns))
	valueArgs := make([]any, 0, len(ns)*perRow)

	for i, n := range ns {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}

		base := i * perRow
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		valueArgs = append(valueArgs,
			n.ID,
			n.RecipientID,
			string(n.Type),
			n.Title,
			n.Message,
			n.RelatedID,
			n.IsRead,
			n.CreatedAt,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO notifications (%s)
		VALUES %s
	`, notificationColumns, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to batch create notifications: %w", err)
	}
	return nil
}

// List returns a recipient's notifications, newest first
func (r *notificationRepository) List(ctx context.Context, recipientID string, req notification.ListNotificationsRequest) ([]notification.Notification, int64, error) {
	q := GetQuerier(ctx, r.db)

	args := queryArgs{recipientID}
	where := conditions{"recipient_id = $1"}
	if req.IsRead != nil {
		where.and("is_read = %s", args.add(*req.IsRead))
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications `+where.where(), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications
		%s
		ORDER BY created_at DESC, id DESC
		%s
	`, notificationColumns, where.where(), limitOffset(req.Params, &args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, total, nil
}

// Count returns the total and unread counts for a recipient
func (r *notificationRepository) Count(ctx context.Context, recipientID string) (int64, int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_read)
		FROM notifications
		WHERE recipient_id = $1
	`
	var total, unread int64
	if err := q.QueryRow(ctx, query, recipientID).Scan(&total, &unread); err != nil {
		return 0, 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return total, unread, nil
}

// MarkAsRead marks one notification of the recipient as read
func (r *notificationRepository) MarkAsRead(ctx context.Context, id, recipientID string) (notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND recipient_id = $2
		RETURNING ` + notificationColumns

	n, err := scanNotification(q.QueryRow(ctx, query, id, recipientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notification.Notification{}, notification.ErrNotificationNotFound
		}
		return notification.Notification{}, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return n, nil
}

// MarkAllAsRead marks every unread notification of the recipient as read
func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND NOT is_read`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete deletes a notification
func (r *notificationRepository) Delete(ctx context.Context, id, recipientID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// DeleteAll deletes every notification of the recipient
func (r *notificationRepository) DeleteAll(ctx context.Context, recipientID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM notifications WHERE recipient_id = $1`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
