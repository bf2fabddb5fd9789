package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hanxue/hanxue-api/internal/api"
	apiMiddleware "github.com/hanxue/hanxue-api/internal/api/middleware"
	"github.com/hanxue/hanxue-api/internal/config"
	"github.com/hanxue/hanxue-api/internal/domain/srs"
	"github.com/hanxue/hanxue-api/internal/jobs"
	"github.com/hanxue/hanxue-api/internal/platform/postgres"
	"github.com/hanxue/hanxue-api/internal/service"
	"github.com/hanxue/hanxue-api/internal/service/auth"
	"github.com/hanxue/hanxue-api/internal/service/review"
	"github.com/hanxue/hanxue-api/internal/store"
)

// application holds the wired dependencies of a running server.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	db        *sql.DB
	handler   http.Handler
	scheduler *jobs.Scheduler
}

// newApplication wires stores, services, handlers and jobs over db.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := cfg.SRS.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid study time zone %q: %w", cfg.SRS.Timezone, err)
	}

	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	vocabularyStore := postgres.NewPostgresVocabularyStore(db, logger)
	progressStore := postgres.NewPostgresReviewProgressStore(db, logger)
	countersStore := postgres.NewPostgresUserCountersStore(db, logger)
	runInTx := store.NewTxRunner(db)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	verifier := auth.NewBcryptVerifier()

	reviewService, err := review.NewReviewService(
		vocabularyStore,
		progressStore,
		countersStore,
		runInTx,
		srs.NewDefaultService(),
		cfg.SRS,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review service: %w", err)
	}
	userService := service.NewUserService(userStore, verifier, runInTx, logger)

	var limiter *apiMiddleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = apiMiddleware.NewRateLimiter(cfg.RateLimit)
	}

	handler := newRouter(routeDeps{
		logger:      logger,
		auth:        apiMiddleware.NewAuthMiddleware(jwtService),
		rateLimiter: limiter,
		health:      api.NewHealthHandler(db),
		authHandler: api.NewAuthHandler(userService, userStore, jwtService, verifier, cfg.Auth, logger),
		progress:    api.NewProgressHandler(reviewService, logger),
		user:        api.NewUserHandler(userService, reviewService, logger),
	})

	var sweeper *jobs.StreakSweeper
	if cfg.Jobs.StreakSweepEnabled {
		sweeper = jobs.NewStreakSweeper(countersStore, loc, logger)
	}
	scheduler, err := jobs.NewScheduler(cfg.Jobs, loc, sweeper, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create job scheduler: %w", err)
	}

	return &application{
		config:    cfg,
		logger:    logger,
		db:        db,
		handler:   handler,
		scheduler: scheduler,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		} else {
			app.logger.Info("database connection closed")
		}
	}
}
