package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sourcing/config"
	"sourcing/handlers"
	"sourcing/metrics"
	"sourcing/services"
	"sourcing/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// openStore connects both halves of the Postgres store.
func openStore() (*storage.Postgres, func(), error) {
	db, err := storage.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	orm, err := storage.InitGormDB(cfg)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := orm.DB(); err == nil {
			sqlDB.Close()
		}
		db.Close()
	}
	return storage.NewPostgres(db, orm), closeFn, nil
}

// newQuoteAnalyzer picks the analyzer for the configured provider.
func newQuoteAnalyzer(ctx context.Context, m *metrics.Manager) (services.QuoteAnalyzer, error) {
	switch cfg.LLMProvider {
	case config.ProviderRules:
		return services.NewRuleQuoteAnalyzer(), nil
	case config.ProviderGemini:
		client, err := services.NewGeminiClient(ctx, cfg, m)
		if err != nil {
			return nil, err
		}
		return services.NewLLMQuoteAnalyzer(client.WithResponseSchema(services.QuoteResponseSchema())), nil
	default:
		return services.NewLLMQuoteAnalyzer(services.NewOpenAIClient(cfg, m)), nil
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("database connected", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	m := metrics.NewManager()
	analyzer, err := newQuoteAnalyzer(ctx, m)
	if err != nil {
		return err
	}

	var mailer services.Mailer
	if cfg.SMTPEnabled() {
		mailer = services.NewEmailService(cfg)
	} else {
		logger.Warn("SMTP is not configured, notification emails are disabled")
	}

	d := &handlers.Deps{
		Store:      store,
		Matcher:    services.NewMatcher(store, logger, m),
		Normalizer: services.NewNormalizer(analyzer, store, logger, m),
		Notifier:   services.NewNotifier(store, mailer, logger),
		Config:     cfg,
		Logger:     logger,
		Metrics:    m,
	}

	scheduler, err := startMaintenance(store)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.NewRouter(d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr), zap.String("llm_provider", cfg.LLMProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

var maintenanceRunning int32

// startMaintenance schedules the expired-session cleanup.
func startMaintenance(store *storage.Postgres) (*cron.Cron, error) {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(zap.NewStdLog(logger.Named("cron")))))

	_, err := c.AddFunc(cfg.SessionCleanupSchedule, func() {
		if !atomic.CompareAndSwapInt32(&maintenanceRunning, 0, 1) {
			logger.Warn("previous maintenance run still active, skipping")
			return
		}
		defer atomic.StoreInt32(&maintenanceRunning, 0)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		runJob(ctx, "CleanupExpiredSessions", func(ctx context.Context) error {
			n, err := store.CleanupExpiredSessions(ctx)
			if err == nil {
				logger.Info("expired sessions removed", zap.Int64("count", n))
			}
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule session cleanup %q: %w", cfg.SessionCleanupSchedule, err)
	}

	c.Start()
	return c, nil
}

// runJob runs one maintenance job, logging its outcome and any panic.
func runJob(ctx context.Context, name string, fn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("maintenance job panicked",
				zap.String("job", name), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		}
	}()

	start := time.Now()
	if err := fn(ctx); err != nil {
		logger.Error("maintenance job failed", zap.String("job", name), zap.Error(err))
		return
	}
	logger.Info("maintenance job completed", zap.String("job", name), zap.Duration("took", time.Since(start)))
}
