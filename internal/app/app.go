package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/crickarena/crickarena/external/cricketdata"
	"github.com/crickarena/crickarena/internal/config"
	"github.com/crickarena/crickarena/internal/domain/scoring"
	"github.com/crickarena/crickarena/internal/domain/team"
	"github.com/crickarena/crickarena/internal/infrastructure/repository/postgres"
	"github.com/crickarena/crickarena/internal/infrastructure/token"
	"github.com/crickarena/crickarena/internal/interfaces/httpapi"
	"github.com/crickarena/crickarena/internal/platform/cache"
	idgen "github.com/crickarena/crickarena/internal/platform/id"
	"github.com/crickarena/crickarena/internal/platform/logging"
	"github.com/crickarena/crickarena/internal/platform/resilience"
	"github.com/crickarena/crickarena/internal/usecase"
)

// App owns the HTTP server and the resources it depends on. The DB pool is
// built here with explicit limits and closed by Close; nothing constructs it
// lazily behind a package global.
type App struct {
	Server *http.Server
	db     *sqlx.DB
	logger *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	userRepo := postgres.NewUserRepository(db)
	statsRepo := postgres.NewUserStatsRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	contestRepo := postgres.NewContestRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	cricketClient := cricketdata.NewClient(cricketdata.ClientConfig{
		BaseURL:    cfg.CricketAPIBaseURL,
		APIKey:     cfg.CricketAPIKey,
		Timeout:    cfg.CricketAPITimeout,
		MaxRetries: cfg.CricketAPIMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.CricketAPICircuitEnabled,
			FailureThreshold: cfg.CricketAPICircuitFailureCount,
			OpenTimeout:      cfg.CricketAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.CricketAPICircuitHalfOpenReq,
		},
	})

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	tokens := token.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	ids := idgen.NewRandomGenerator()

	matchSvc := usecase.NewMatchService(cricketClient, store, cfg.CacheTTL, logger)
	authSvc := usecase.NewAuthService(userRepo, statsRepo, tokens, ids, cfg.BcryptCost, cfg.RestrictedStates, logger)
	userSvc := usecase.NewUserService(userRepo, statsRepo, cfg.RestrictedStates, logger)
	teamSvc := usecase.NewTeamService(teamRepo, userRepo, statsRepo, contestRepo, matchSvc, ids, team.DefaultRules(), logger)
	contestSvc := usecase.NewContestService(contestRepo, teamRepo, userRepo, statsRepo, notificationRepo, logger)
	syncSvc := usecase.NewContestSyncService(contestRepo, teamRepo, statsRepo, notificationRepo, matchSvc, ids, scoring.DefaultRules(), 0, logger)
	leaderboardSvc := usecase.NewLeaderboardService(userRepo, statsRepo, logger)
	notificationSvc := usecase.NewNotificationService(notificationRepo, userRepo, logger)

	handler := httpapi.NewHandler(
		authSvc,
		userSvc,
		matchSvc,
		teamSvc,
		contestSvc,
		syncSvc,
		leaderboardSvc,
		notificationSvc,
		httpapi.SessionCookie{
			Name:   cfg.SessionCookieName,
			TTL:    cfg.TokenTTL,
			Secure: cfg.AppEnv == config.EnvProd,
		},
		logger,
	)
	router := httpapi.NewRouter(handler, tokens, logger, cfg.CORSAllowedOrigins, cfg.CronToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		_ = db.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{Server: server, db: db, logger: logger}, nil
}

// Close releases resources the app owns; call it after the server stops.
func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
