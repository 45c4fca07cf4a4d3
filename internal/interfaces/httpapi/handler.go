package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/crickarena/crickarena/internal/platform/logging"
	"github.com/crickarena/crickarena/internal/usecase"
)

// SessionCookie describes how the session cookie is issued.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type Handler struct {
	authService         *usecase.AuthService
	userService         *usecase.UserService
	matchService        *usecase.MatchService
	teamService         *usecase.TeamService
	contestService      *usecase.ContestService
	syncService         *usecase.ContestSyncService
	leaderboardService  *usecase.LeaderboardService
	notificationService *usecase.NotificationService
	sessionCookie       SessionCookie
	logger              *logging.Logger
	validator           *validator.Validate
}

func NewHandler(
	authService *usecase.AuthService,
	userService *usecase.UserService,
	matchService *usecase.MatchService,
	teamService *usecase.TeamService,
	contestService *usecase.ContestService,
	syncService *usecase.ContestSyncService,
	leaderboardService *usecase.LeaderboardService,
	notificationService *usecase.NotificationService,
	sessionCookie SessionCookie,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if sessionCookie.Name == "" {
		sessionCookie.Name = "ca_session"
	}
	if sessionCookie.TTL <= 0 {
		sessionCookie.TTL = 168 * time.Hour
	}

	return &Handler{
		authService:         authService,
		userService:         userService,
		matchService:        matchService,
		teamService:         teamService,
		contestService:      contestService,
		syncService:         syncService,
		leaderboardService:  leaderboardService,
		notificationService: notificationService,
		sessionCookie:       sessionCookie,
		logger:              logger,
		validator:           validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, payload{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, body any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, body); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionCookie.TTL / time.Second),
		HttpOnly: true,
		Secure:   h.sessionCookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.sessionCookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
