package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crickarena/crickarena/internal/domain/user"
	idgen "github.com/crickarena/crickarena/internal/platform/id"
	"github.com/crickarena/crickarena/internal/platform/logging"
)

const resetTokenTTL = time.Hour

// TokenManager issues and verifies signed session tokens.
type TokenManager interface {
	Issue(principal user.Principal) (string, error)
	Verify(token string) (user.Principal, error)
}

type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	Mobile      string
	DateOfBirth time.Time
	State       string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthService struct {
	users            user.Repository
	stats            user.StatsRepository
	tokens           TokenManager
	ids              idgen.Generator
	bcryptCost       int
	restrictedStates map[string]struct{}
	logger           *logging.Logger
	now              func() time.Time
}

func NewAuthService(
	users user.Repository,
	stats user.StatsRepository,
	tokens TokenManager,
	ids idgen.Generator,
	bcryptCost int,
	restrictedStates []string,
	logger *logging.Logger,
) *AuthService {
	if logger == nil {
		logger = logging.Default()
	}
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = 12
	}

	restricted := make(map[string]struct{}, len(restrictedStates))
	for _, state := range restrictedStates {
		restricted[strings.ToLower(strings.TrimSpace(state))] = struct{}{}
	}

	return &AuthService{
		users:            users,
		stats:            stats,
		tokens:           tokens,
		ids:              ids,
		bcryptCost:       bcryptCost,
		restrictedStates: restricted,
		logger:           logger,
		now:              time.Now,
	}
}

// Register creates an account and returns it with a fresh session token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (user.User, string, error) {
	ctx, span := startSpan(ctx, "usecase.AuthService.Register")
	defer span.End()

	email := user.NormalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, "", fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(input.Password) < 8 {
		return user.User{}, "", fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return user.User{}, "", fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	if !user.ValidMobile(input.Mobile) {
		return user.User{}, "", fmt.Errorf("%w: a valid 10-digit mobile number is required", ErrInvalidInput)
	}
	state := strings.TrimSpace(input.State)
	if state == "" {
		return user.User{}, "", fmt.Errorf("%w: state is required", ErrInvalidInput)
	}
	if s.isRestrictedState(state) {
		return user.User{}, "", fmt.Errorf("%w: fantasy contests are not available in %s", ErrForbidden, state)
	}
	if input.DateOfBirth.IsZero() || s.now().AddDate(-18, 0, 0).Before(input.DateOfBirth) {
		return user.User{}, "", fmt.Errorf("%w: you must be at least 18 years old", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return user.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	publicID, err := s.ids.NewID()
	if err != nil {
		return user.User{}, "", fmt.Errorf("generate user id: %w", err)
	}

	account := user.User{
		PublicID:     publicID,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Mobile:       strings.TrimSpace(input.Mobile),
		DateOfBirth:  input.DateOfBirth,
		State:        state,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, &account); err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			return user.User{}, "", fmt.Errorf("%w: email already registered", ErrConflict)
		case errors.Is(err, user.ErrMobileTaken):
			return user.User{}, "", fmt.Errorf("%w: mobile number already registered", ErrConflict)
		default:
			return user.User{}, "", fmt.Errorf("create user: %w", err)
		}
	}

	if _, err := s.stats.GetOrCreate(ctx, account.ID); err != nil {
		s.logger.WarnContext(ctx, "seed user stats failed", "user_id", account.PublicID, "error", err)
	}

	token, err := s.tokens.Issue(principalOf(account))
	if err != nil {
		return user.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", account.PublicID, "state", state)
	return sanitize(account), token, nil
}

// Login verifies credentials and returns the account with a session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (user.User, string, error) {
	ctx, span := startSpan(ctx, "usecase.AuthService.Login")
	defer span.End()

	invalid := fmt.Errorf("%w: invalid email or password", ErrUnauthorized)

	account, err := s.users.GetByEmail(ctx, user.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, "", invalid
		}
		return user.User{}, "", fmt.Errorf("find user by email: %w", err)
	}
	if !account.IsActive {
		return user.User{}, "", invalid
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return user.User{}, "", invalid
	}

	token, err := s.tokens.Issue(principalOf(account))
	if err != nil {
		return user.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	return sanitize(account), token, nil
}

// ForgotPassword records a reset token. The outcome is identical whether or
// not the email exists, to resist account enumeration.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	ctx, span := startSpan(ctx, "usecase.AuthService.ForgotPassword")
	defer span.End()

	account, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find user by email: %w", err)
	}

	token, err := randomToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	if err := s.users.SetResetToken(ctx, account.ID, token, s.now().Add(resetTokenTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	// Delivery (email/SMS) is out of process; the token is only logged at
	// debug level for development.
	s.logger.DebugContext(ctx, "password reset token issued", "user_id", account.PublicID)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx, span := startSpan(ctx, "usecase.AuthService.ResetPassword")
	defer span.End()

	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: reset token is required", ErrInvalidInput)
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	account, err := s.users.GetByResetToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired reset token", ErrInvalidInput)
		}
		return fmt.Errorf("find user by reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, account.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.users.ClearResetToken(ctx, account.ID); err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}

	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userPublicID, currentPassword, newPassword string) error {
	ctx, span := startSpan(ctx, "usecase.AuthService.ChangePassword")
	defer span.End()

	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	account, err := s.users.GetByPublicID(ctx, userPublicID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.UpdatePassword(ctx, account.ID, string(hash))
}

func (s *AuthService) isRestrictedState(state string) bool {
	_, ok := s.restrictedStates[strings.ToLower(strings.TrimSpace(state))]
	return ok
}

func principalOf(account user.User) user.Principal {
	return user.Principal{
		UserID:   account.PublicID,
		Email:    account.Email,
		FullName: account.FullName,
		Mobile:   account.Mobile,
	}
}

func sanitize(account user.User) user.User {
	account.PasswordHash = ""
	return account
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
