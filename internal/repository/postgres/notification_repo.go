package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kantong/kantong-backend/internal/domain"
)

const notificationColumns = `id, workspace_id, type, title, message, is_read, created_at`

// NotificationRepository implements domain.NotificationRepository using PostgreSQL
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create stores a notification
func (r *NotificationRepository) Create(notification *domain.Notification) (*domain.Notification, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO notifications (workspace_id, type, title, message)
		VALUES ($1, $2, $3, $4)
		RETURNING `+notificationColumns,
		notification.WorkspaceID, string(notification.Type), notification.Title, notification.Message,
	)
	return scanNotification(row)
}

// GetByWorkspace lists notifications newest first
func (r *NotificationRepository) GetByWorkspace(workspaceID int32, unreadOnly bool, limit int32) ([]*domain.Notification, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+notificationColumns+` FROM notifications
		WHERE workspace_id = $1 AND (NOT $2 OR is_read = FALSE)
		ORDER BY created_at DESC, id DESC
		LIMIT $3`,
		workspaceID, unreadOnly, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// CountUnread counts unread notifications
func (r *NotificationRepository) CountUnread(workspaceID int32) (int64, error) {
	var count int64
	err := r.pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM notifications WHERE workspace_id = $1 AND is_read = FALSE`,
		workspaceID,
	).Scan(&count)
	return count, err
}

// MarkRead marks one notification as read
func (r *NotificationRepository) MarkRead(workspaceID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE notifications SET is_read = TRUE WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification as read and returns how many changed
func (r *NotificationRepository) MarkAllRead(workspaceID int32) (int64, error) {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE notifications SET is_read = TRUE WHERE workspace_id = $1 AND is_read = FALSE`,
		workspaceID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		n   domain.Notification
		typ string
	)
	if err := row.Scan(&n.ID, &n.WorkspaceID, &typ, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Type = domain.NotificationType(typ)
	return &n, nil
}
