package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/propale/propale/internal/api"
	"github.com/propale/propale/internal/api/middleware"
	"github.com/propale/propale/internal/app"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/database"
	"github.com/propale/propale/internal/services"
	"github.com/propale/propale/internal/views"
	"github.com/propale/propale/internal/web"
	"github.com/propale/propale/pkg/config"
	"github.com/propale/propale/pkg/queue"
	"github.com/propale/propale/pkg/util"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting Propale server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	if cfg.Database.MigrateOnStart {
		if err := database.MigrateUp(cfg.Database.URL(), logger); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis, background jobs will fail", "error", err)
	}
	asynqClient := queue.NewClient(&cfg.Redis)

	core, err := app.New(context.Background(), cfg, db, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(core.Store, jwtService)

	defaults := services.NewDefaultContentService(core.Store)
	drafts := views.NewDraftStore()
	svc := api.Services{
		Companies: services.NewCompanyService(core.Store, authService, core.Events, logger),
		Contacts:  services.NewContactService(core.Store, authService, logger),
		Prospects: services.NewProspectService(core.Store, authService, core.Events, logger),
		Proposals: core.Proposals,
		Builder:   services.NewBuilderService(core.Proposals, defaults, drafts),
		Defaults:  defaults,
		Stepper:   services.NewStepperService(core.Store),
		Email:     services.NewEmailService(core.Mailer, logger),
		Access:    views.NewAccessView(services.NewAccessService(core.Store)),
	}

	templates, err := web.LoadTemplates()
	if err != nil {
		logger.Error("failed to load templates", "error", err)
		os.Exit(1)
	}

	staticFS, err := web.GetStaticFS()
	if err != nil {
		logger.Error("failed to get static fs", "error", err)
		os.Exit(1)
	}

	csrfStore := middleware.NewCSRFStore()
	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window())
	scheduler := util.NewScheduler(logger)
	_, err = scheduler.AddFunc(cfg.Housekeeping.Schedule, func() {
		pruned := drafts.Prune(cfg.Housekeeping.DraftMaxIdle())
		purged := csrfStore.Purge()
		forgotten := limiter.Purge()
		if pruned > 0 || purged > 0 || forgotten > 0 {
			logger.Info("housekeeping done",
				"drafts_pruned", pruned,
				"csrf_tokens_purged", purged,
				"rate_limit_clients_purged", forgotten,
			)
		}
	})
	if err != nil {
		logger.Error("invalid housekeeping schedule", "schedule", cfg.Housekeeping.Schedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	if next, err := util.NextCronTime(cfg.Housekeeping.Schedule, time.Now()); err == nil {
		logger.Info("housekeeping scheduled", "schedule", cfg.Housekeeping.Schedule, "next_run", next)
	}

	router := api.NewRouter(api.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		Store:          core.Store,
		Logger:         logger,
		JWTService:     jwtService,
		AuthService:    authService,
		TokenTTL:       cfg.JWT.Expiry(),
		Services:       svc,
		Latest:         views.NewLatest(),
		CSRF:           csrfStore,
		Templates:      templates,
		StaticFS:       staticFS,
		Queue:          asynqClient,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimiter:    limiter,
		LegacyHosts:    cfg.Redirect.LegacyHosts,
		CanonicalHost:  cfg.Redirect.CanonicalHost,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // synchronous PDF rendering
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	<-scheduler.Stop().Done()

	if err := core.Close(); err != nil {
		logger.Error("failed to flush events", "error", err)
	}
	asynqClient.Close()
	redisClient.Close()

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
