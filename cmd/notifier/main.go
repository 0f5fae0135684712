package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cadencehq/cadence/internal/application/notifier"
	"github.com/cadencehq/cadence/internal/application/todo"
	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/infrastructure/observability"
	"github.com/cadencehq/cadence/internal/infrastructure/persistence/postgres"
	"github.com/cadencehq/cadence/internal/notify"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadNotifierConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	providers, logger, err := observability.Init(ctx, observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to init observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "failed to shutdown observability providers", "error", err)
		}
	}()
	slog.SetDefault(logger)

	store, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	ledger, err := notify.OpenLedger(ctx, cfg.Loop.LedgerPath)
	if err != nil {
		return fmt.Errorf("failed to open delivery ledger: %w", err)
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			slog.Error("failed to close delivery ledger", "error", err)
		}
	}()

	sender := notify.NewWebhookSender(notify.WithSendTimeout(cfg.Loop.SendTimeout))
	todoService := todo.NewService(store, todo.Config{})

	n := notifier.New(store, store, todoService, sender, ledger,
		notifier.WithInterval(cfg.Loop.Interval),
		notifier.WithOperationTimeout(cfg.Loop.OperationTimeout),
		notifier.WithLedgerRetentionDays(cfg.Loop.RetentionDays),
	)

	// Blocks until the signal context is cancelled, then drains the
	// in-flight cycle before returning.
	return n.Start(ctx)
}
