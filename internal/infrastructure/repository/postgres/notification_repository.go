package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/crickarena/crickarena/internal/domain/notification"
	qb "github.com/crickarena/crickarena/internal/platform/querybuilder"
)

var notificationColumns = []string{
	"id", "user_id", "type", "title", "body", "link", "is_read", "created_at",
}

type notificationTableModel struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	Link      string    `db:"link"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}

type notificationInsertModel struct {
	UserID int64  `db:"user_id"`
	Type   string `db:"type"`
	Title  string `db:"title"`
	Body   string `db:"body"`
	Link   string `db:"link"`
}

func (m notificationTableModel) toDomain() notification.Notification {
	return notification.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      m.Type,
		Title:     m.Title,
		Body:      m.Body,
		Link:      m.Link,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	insertModel := notificationInsertModel{
		UserID: n.UserID,
		Type:   n.Type,
		Title:  n.Title,
		Body:   n.Body,
		Link:   n.Link,
	}
	query, args, err := qb.InsertModel("notifications", insertModel, "RETURNING id, created_at")
	if err != nil {
		return fmt.Errorf("build create notification query: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]notification.Notification, error) {
	builder := qb.Select(notificationColumns...).
		From("notifications").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list notifications query: %w", err)
	}

	var rows []notificationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	notifications := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, row.toDomain())
	}
	return notifications, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	query, args, err := qb.Select("COUNT(*)").
		From("notifications").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("is_read", false),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build unread count query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("unread notification count: %w", err)
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID int64) error {
	query, args, err := qb.Update("notifications").
		Set("is_read", true).
		Where(
			qb.Eq("id", notificationID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark notification read query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected mark notification read: %w", err)
	}
	if affected == 0 {
		return notification.ErrNotFound
	}

	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	query, args, err := qb.Update("notifications").
		Set("is_read", true).
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("is_read", false),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark all notifications read query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}

	return nil
}
