package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/crickarena/crickarena/internal/domain/notification"
	"github.com/crickarena/crickarena/internal/domain/user"
	"github.com/crickarena/crickarena/internal/platform/logging"
)

const notificationPageSize = 50

type NotificationService struct {
	notifications notification.Repository
	users         user.Repository
	logger        *logging.Logger
}

func NewNotificationService(notifications notification.Repository, users user.Repository, logger *logging.Logger) *NotificationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationService{notifications: notifications, users: users, logger: logger}
}

func (s *NotificationService) List(ctx context.Context, userPublicID string) ([]notification.Notification, error) {
	ctx, span := startSpan(ctx, "usecase.NotificationService.List")
	defer span.End()

	account, err := s.accountOf(ctx, userPublicID)
	if err != nil {
		return nil, err
	}
	return s.notifications.ListByUser(ctx, account.ID, notificationPageSize)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userPublicID string) (int, error) {
	ctx, span := startSpan(ctx, "usecase.NotificationService.UnreadCount")
	defer span.End()

	account, err := s.accountOf(ctx, userPublicID)
	if err != nil {
		return 0, err
	}
	return s.notifications.UnreadCount(ctx, account.ID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userPublicID string, notificationID int64) error {
	ctx, span := startSpan(ctx, "usecase.NotificationService.MarkRead")
	defer span.End()

	account, err := s.accountOf(ctx, userPublicID)
	if err != nil {
		return err
	}
	if err := s.notifications.MarkRead(ctx, account.ID, notificationID); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			return fmt.Errorf("%w: notification not found", ErrNotFound)
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userPublicID string) error {
	ctx, span := startSpan(ctx, "usecase.NotificationService.MarkAllRead")
	defer span.End()

	account, err := s.accountOf(ctx, userPublicID)
	if err != nil {
		return err
	}
	return s.notifications.MarkAllRead(ctx, account.ID)
}

func (s *NotificationService) accountOf(ctx context.Context, userPublicID string) (user.User, error) {
	account, err := s.users.GetByPublicID(ctx, userPublicID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return user.User{}, fmt.Errorf("find user: %w", err)
	}
	return account, nil
}
