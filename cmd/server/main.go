package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"vocabclash/internal/config"
	"vocabclash/internal/database"
	"vocabclash/internal/gamification"
	"vocabclash/internal/handlers"
	"vocabclash/internal/logging"
	"vocabclash/internal/scheduler"
	"vocabclash/internal/security"
	"vocabclash/internal/service"
)

func main() {
	if err := run(); err != nil {
		// The global logger may still be the no-op one if setup failed.
		fmt.Fprintf(os.Stderr, "server failed: %+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	flush, err := logging.Setup(cfg.LogFormat, cfg.AppEnv)
	if err != nil {
		return err
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return errors.Wrap(err, "initialize database")
	}
	defer db.Close()
	zap.S().Infow("Database connection established", "type", cfg.DatabaseType)

	if err := db.RunMigrations(ctx); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	zap.S().Infow("Migrations completed successfully")

	// Initialize services
	catalog := gamification.DefaultCatalog()
	locks := service.NewUserLocks()

	progressService := service.NewProgressService(db, catalog, locks)
	progressService.SetIdleTimeouts(cfg.SessionIdleTimeout, cfg.AuthIdleTimeout)
	sessionService := service.NewSessionService(db, catalog, locks)
	sessionService.SetIdleTimeouts(cfg.SessionIdleTimeout, cfg.AuthIdleTimeout)
	gamificationService := service.NewGamificationService(db, catalog)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.EmailDebug)
	if err != nil {
		return errors.Wrap(err, "initialize email service")
	}
	var reminder scheduler.Reminder
	if emailService.IsEnabled() {
		reminder = service.NewReminderService(db, emailService)
	}

	// Background jobs
	jobs := scheduler.New(sessionService, reminder, scheduler.Options{
		SweepInterval: cfg.SessionSweepInterval,
		ReminderTime:  cfg.ReminderTime,
	})
	if err := jobs.Start(); err != nil {
		return errors.Wrap(err, "start scheduler")
	}
	defer jobs.Stop()

	// Initialize handlers
	if cfg.JWTSecret == "" {
		zap.S().Warnw("JWT_SECRET not set, using the development signing key")
	}
	tokens := security.NewTokenVerifier(cfg.TokenSecret(), cfg.JWTIssuer)
	answerLimiter := security.NewRateLimiter(cfg.AnswerRateLimit, time.Minute)
	defer answerLimiter.Stop()

	router := handlers.NewRouter(
		handlers.NewMiddleware(tokens, answerLimiter),
		handlers.NewProgressHandler(progressService, sessionService, cfg.DueWordsLimit),
		handlers.NewGamificationHandler(gamificationService),
	)

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zap.S().Infow("Server starting", "addr", server.Addr, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	select {
	case err := <-serverErr:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	zap.S().Infow("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
