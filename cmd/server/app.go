package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/iliyamo/shastra-reservations/internal/config"
	"github.com/iliyamo/shastra-reservations/internal/database"
	"github.com/iliyamo/shastra-reservations/internal/logging"
	"github.com/iliyamo/shastra-reservations/internal/notify"
	"github.com/iliyamo/shastra-reservations/internal/outbox"
	"github.com/iliyamo/shastra-reservations/internal/queue"
	"github.com/iliyamo/shastra-reservations/internal/repository"
)

func loadDotEnv(files ...string) { config.LoadDotEnv(files...) }

// app holds what every subcommand needs: config, logger and database.
type app struct {
	cfg   config.Config
	log   *zap.Logger
	db    *sqlx.DB
	clock clockwork.Clock

	sentry bool
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(config.LoadLogConfig())
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	a := &app{cfg: cfg, log: log, clock: clockwork.NewRealClock()}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentryOptions(cfg)); err != nil {
			log.Error("sentry init failed", zap.Error(err))
		} else {
			a.sentry = true
		}
	}

	db, err := database.Open(cfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("database: %w", err)
	}
	a.db = db

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		a.close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database ready", zap.String("driver", cfg.DBDriver))
	return a, nil
}

// sentryOptions samples every trace outside production.
func sentryOptions(cfg config.Config) sentry.ClientOptions {
	rate := 1.0
	if cfg.IsProd() {
		rate = 0.2
	}
	return sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Env,
		EnableTracing:    true,
		TracesSampleRate: rate,
		Debug:            !cfg.IsProd(),
	}
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.sentry {
		sentry.Flush(2 * time.Second)
	}
	_ = a.log.Sync()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func (a *app) newRelay(pub *queue.Publisher) *outbox.Relay {
	return outbox.NewRelay(repository.NewOutboxRepo(a.db), pub, a.clock, a.log.Named("relay"), config.LoadOutboxConfig())
}

func (a *app) newConsumer() (*queue.Consumer, error) {
	renderer, err := notify.NewRenderer(a.clock)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	qcfg := config.LoadQueueConfig()
	log := a.log.Named("worker")
	h := queue.NewHandler(
		repository.NewOutboxRepo(a.db),
		renderer,
		notify.NewSender(config.LoadMailConfig(), log),
		a.clock,
		log,
		config.LoadOutboxConfig(),
	)
	return queue.NewConsumer(qcfg.URL, qcfg.QueueName, qcfg.Prefetch, h, log), nil
}
