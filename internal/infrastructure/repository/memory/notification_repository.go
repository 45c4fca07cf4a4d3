package memory

import (
	"context"
	"sync"
	"time"

	"github.com/crickarena/crickarena/internal/domain/notification"
)

type NotificationRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]notification.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{items: make(map[int64]notification.Notification)}
}

func (r *NotificationRepository) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	n.ID = r.nextID
	n.CreatedAt = time.Now()
	r.items[n.ID] = *n
	return nil
}

func (r *NotificationRepository) ListByUser(_ context.Context, userID int64, limit int) ([]notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]notification.Notification, 0)
	for id := r.nextID; id >= 1; id-- {
		n, ok := r.items[id]
		if !ok || n.UserID != userID {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *NotificationRepository) UnreadCount(_ context.Context, userID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, userID, notificationID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[notificationID]
	if !ok || n.UserID != userID {
		return notification.ErrNotFound
	}
	n.IsRead = true
	r.items[notificationID] = n
	return nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.items[id] = n
		}
	}
	return nil
}
