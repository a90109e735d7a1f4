package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-content-retention/internal/config"
	"go-content-retention/internal/content"
	"go-content-retention/internal/database"
	"go-content-retention/internal/event"
	"go-content-retention/internal/handler"
	"go-content-retention/internal/middleware"
	"go-content-retention/internal/registry"
	"go-content-retention/internal/router"
	"go-content-retention/internal/scheduler"
	"go-content-retention/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	sweepCron    *scheduler.SweepScheduler
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	contents := content.NewPostgres(db.Pool)
	if _, err := contents.EnsureRoot(context.Background(), cfg.SiteRootID); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure site root: %w", err)
	}
	store := registry.NewPostgres(db.Pool)
	slog.Info("database ready", "root_id", cfg.SiteRootID)

	bus := event.NewBus()

	logService := service.NewDeletionLogService(store, contents, cfg.RetentionDays, cfg.DisplayDays)
	interceptorService := service.NewInterceptorService(contents, logService, store, bus, cfg.QuarantineID)
	restoreService := service.NewRestoreService(contents, logService, bus)
	sweepService := service.NewSweepService(contents, logService, bus, cfg.QuarantineID)
	settingsService := service.NewSettingsService(store, contents, logService, bus, cfg.QuarantineID)

	// The quarantine container must exist before the first marked deletion
	// arrives, but only while the feature is switched on.
	if interceptorService.FeatureEnabled(context.Background()) {
		if err := settingsService.EnsureQuarantineContainer(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure quarantine container: %w", err)
		}
	}

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.JWTAccessTTL)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	deletionHandler := handler.NewDeletionHandler(interceptorService, restoreService, sweepService)
	logHandler := handler.NewLogHandler(logService)
	settingsHandler := handler.NewSettingsHandler(settingsService)

	appRouter := router.New(cfg, authMiddleware, deletionHandler, logHandler, settingsHandler)

	sweepCron := scheduler.New(sweepService, cfg.SweepSchedule)
	cronCtx, cronCancel := context.WithCancel(context.Background())
	if err := sweepCron.Start(cronCtx); err != nil {
		cronCancel()
		db.Close()
		return nil, fmt.Errorf("failed to start sweep scheduler: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:    server,
		db:        db,
		sweepCron: sweepCron,
		cleanupFuncs: []func(){
			func() {
				cronCancel()
				sweepCron.Stop()
			},
			func() {
				db.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
