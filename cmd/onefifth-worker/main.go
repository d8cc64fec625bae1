// The audit worker consumes ledger change events from the bus and
// appends them to a local JSONL trail. It runs alongside the server and
// shares the same database file read-only.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"onefifth/internal/amqp"
	"onefifth/internal/config"
	applog "onefifth/internal/log"
	"onefifth/internal/storage"
	"onefifth/internal/worker"
)

func main() {
	if err := run(); err != nil {
		applog.New(applog.DefaultConfig()).Error("fatal", applog.FieldError, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.DefaultConfig().Level,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the audit worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	auditor := worker.NewAuditWorker(repo, cfg.AuditLogPath)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("audit worker started",
			"queue", cfg.AMQPQueue,
			"audit_log", cfg.AuditLogPath)
		err := client.ConsumeLedgerEvents(gctx, func(msg *amqp.LedgerEventMessage) error {
			return auditor.HandleEvent(gctx, msg)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return g.Wait()
}
