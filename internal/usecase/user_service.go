package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crickarena/crickarena/internal/domain/user"
	"github.com/crickarena/crickarena/internal/platform/logging"
)

type UpdateProfileInput struct {
	FullName    *string
	Mobile      *string
	State       *string
	DateOfBirth *time.Time
}

// UserProfile bundles an account with its lifetime contest stats.
type UserProfile struct {
	User  user.User
	Stats user.Stats
}

type UserService struct {
	users            user.Repository
	stats            user.StatsRepository
	restrictedStates map[string]struct{}
	logger           *logging.Logger
	now              func() time.Time
}

func NewUserService(users user.Repository, stats user.StatsRepository, restrictedStates []string, logger *logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Default()
	}
	restricted := make(map[string]struct{}, len(restrictedStates))
	for _, state := range restrictedStates {
		restricted[strings.ToLower(strings.TrimSpace(state))] = struct{}{}
	}
	return &UserService{
		users:            users,
		stats:            stats,
		restrictedStates: restricted,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *UserService) Profile(ctx context.Context, userPublicID string) (UserProfile, error) {
	ctx, span := startSpan(ctx, "usecase.UserService.Profile")
	defer span.End()

	account, err := s.users.GetByPublicID(ctx, userPublicID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return UserProfile{}, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return UserProfile{}, fmt.Errorf("find user: %w", err)
	}

	stats, err := s.stats.GetOrCreate(ctx, account.ID)
	if err != nil {
		return UserProfile{}, fmt.Errorf("load user stats: %w", err)
	}

	return UserProfile{User: sanitize(account), Stats: stats}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userPublicID string, input UpdateProfileInput) (UserProfile, error) {
	ctx, span := startSpan(ctx, "usecase.UserService.UpdateProfile")
	defer span.End()

	account, err := s.users.GetByPublicID(ctx, userPublicID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return UserProfile{}, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return UserProfile{}, fmt.Errorf("find user: %w", err)
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return UserProfile{}, fmt.Errorf("%w: full name cannot be empty", ErrInvalidInput)
		}
		account.FullName = name
	}
	if input.Mobile != nil {
		if !user.ValidMobile(*input.Mobile) {
			return UserProfile{}, fmt.Errorf("%w: a valid 10-digit mobile number is required", ErrInvalidInput)
		}
		account.Mobile = strings.TrimSpace(*input.Mobile)
	}
	if input.State != nil {
		state := strings.TrimSpace(*input.State)
		if state == "" {
			return UserProfile{}, fmt.Errorf("%w: state cannot be empty", ErrInvalidInput)
		}
		if _, restricted := s.restrictedStates[strings.ToLower(state)]; restricted {
			return UserProfile{}, fmt.Errorf("%w: fantasy contests are not available in %s", ErrForbidden, state)
		}
		account.State = state
	}
	if input.DateOfBirth != nil {
		if input.DateOfBirth.IsZero() || s.now().AddDate(-18, 0, 0).Before(*input.DateOfBirth) {
			return UserProfile{}, fmt.Errorf("%w: you must be at least 18 years old", ErrInvalidInput)
		}
		account.DateOfBirth = *input.DateOfBirth
	}

	if err := s.users.UpdateProfile(ctx, &account); err != nil {
		if errors.Is(err, user.ErrMobileTaken) {
			return UserProfile{}, fmt.Errorf("%w: mobile number already registered", ErrConflict)
		}
		return UserProfile{}, fmt.Errorf("update profile: %w", err)
	}

	stats, err := s.stats.GetOrCreate(ctx, account.ID)
	if err != nil {
		return UserProfile{}, fmt.Errorf("load user stats: %w", err)
	}

	return UserProfile{User: sanitize(account), Stats: stats}, nil
}
