package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/crickarena/crickarena/internal/domain/notification"
	"github.com/crickarena/crickarena/internal/domain/user"
	notificationmock "github.com/crickarena/crickarena/internal/mocks/domain/notification"
	usermock "github.com/crickarena/crickarena/internal/mocks/domain/user"
)

func TestNotificationService_List_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := usermock.NewRepository(t)
	notifications := notificationmock.NewRepository(t)

	service := NewNotificationService(notifications, users, nil)
	expected := []notification.Notification{
		{ID: 2, UserID: 7, Type: notification.TypeResultsReady, Title: "Results are in"},
		{ID: 1, UserID: 7, Type: notification.TypeContestJoined, Title: "Joined a contest"},
	}

	users.
		On("GetByPublicID", mock.Anything, "user-7").
		Return(user.User{ID: 7, PublicID: "user-7"}, nil).
		Once()
	notifications.
		On("ListByUser", mock.Anything, int64(7), notificationPageSize).
		Return(expected, nil).
		Once()

	got, err := service.List(ctx, "user-7")
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(got) != len(expected) {
		t.Fatalf("unexpected notification count: got=%d want=%d", len(got), len(expected))
	}
	if got[0].ID != expected[0].ID {
		t.Fatalf("unexpected first notification: got=%d want=%d", got[0].ID, expected[0].ID)
	}
}

func TestNotificationService_MarkRead_NotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := usermock.NewRepository(t)
	notifications := notificationmock.NewRepository(t)

	service := NewNotificationService(notifications, users, nil)

	users.
		On("GetByPublicID", mock.Anything, "user-7").
		Return(user.User{ID: 7, PublicID: "user-7"}, nil).
		Once()
	notifications.
		On("MarkRead", mock.Anything, int64(7), int64(99)).
		Return(notification.ErrNotFound).
		Once()

	err := service.MarkRead(ctx, "user-7", 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
