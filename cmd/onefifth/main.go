package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"onefifth/internal/amqp"
	"onefifth/internal/config"
	serverhttp "onefifth/internal/http"
	applog "onefifth/internal/log"
	"onefifth/internal/services"
	"onefifth/internal/settings"
	"onefifth/internal/storage"
)

func main() {
	if err := run(); err != nil {
		applog.New(applog.DefaultConfig()).Error("fatal", applog.FieldError, err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One-time import of the previous release's database. Failures are
	// logged and the app starts with whatever the current store holds.
	if err := storage.ImportLegacy(ctx, cfg.LegacyDBPath, cfg.DBPath); err != nil {
		logger.WithComponent(applog.ComponentMigration).Warn("legacy import failed",
			applog.FieldError, err)
	}

	repo, err := storage.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		return err
	}

	settingsCache := settings.New(repo)
	if err := settingsCache.Load(ctx); err != nil {
		repo.Close()
		return err
	}

	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// The bus is optional; run without it rather than refusing
			// to start.
			logger.WithComponent(applog.ComponentAMQP).Warn("event bus unavailable",
				applog.FieldError, err)
		} else {
			events = client
		}
	}

	ledger := services.NewLedgerService(repo, settingsCache, events)
	defer ledger.Close()

	srv := serverhttp.NewServer(":"+cfg.Port, ledger, cfg.CacheTTL)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithComponent(applog.ComponentHTTP).Info("server listening",
			"addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.WithComponent(applog.ComponentApp).Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
