package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/shastra-reservations/internal/config"
	"github.com/iliyamo/shastra-reservations/internal/database"
	"github.com/iliyamo/shastra-reservations/internal/handler"
	"github.com/iliyamo/shastra-reservations/internal/menu"
	"github.com/iliyamo/shastra-reservations/internal/queue"
	"github.com/iliyamo/shastra-reservations/internal/repository"
	"github.com/iliyamo/shastra-reservations/internal/router"
	"github.com/iliyamo/shastra-reservations/internal/service"
)

func newServeCommand() *cobra.Command {
	var withWorkers bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(withWorkers)
		},
	}
	cmd.Flags().BoolVar(&withWorkers, "with-workers", false, "also run the outbox relay and notification worker in-process")
	return cmd
}

func runServe(withWorkers bool) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		a.log.Warn("redis unavailable, rate limiting and menu cache disabled")
	} else {
		defer rdb.Close()
	}

	m, err := menu.Load()
	if err != nil {
		return err
	}

	accounts := repository.NewAccountRepo(a.db)
	reservations := repository.NewReservationRepo(a.db)
	notifications := repository.NewOutboxRepo(a.db)

	e := router.New(router.Deps{
		Auth:         handler.NewAuthHandler(service.NewAccountService(a.db, accounts, notifications, a.clock, a.log)),
		Reservations: handler.NewReservationHandler(service.NewReservationService(a.db, accounts, reservations, notifications, a.clock, a.log)),
		Health:       handler.NewHealthHandler(dbPing(a), cachePing(rdb)),
		Menu:         handler.NewMenuHandler(m),
		Redis:        rdb,
		Cache:        config.LoadCacheConfig(),
		RateLimit:    config.LoadRateLimitConfig(),
		Log:          a.log,
	})

	ctx, stop := signalContext()
	defer stop()

	var wg sync.WaitGroup
	if withWorkers {
		qcfg := config.LoadQueueConfig()
		pub := queue.NewPublisher(qcfg.URL, qcfg.QueueName)
		defer pub.Close()
		consumer, err := a.newConsumer()
		if err != nil {
			return err
		}
		relay := a.newRelay(pub)

		wg.Add(2)
		go func() { defer wg.Done(); _ = relay.Run(ctx) }()
		go func() { defer wg.Done(); _ = consumer.Run(ctx) }()
	}

	addr := ":" + a.cfg.Port
	a.log.Info("listening", zap.String("addr", addr), zap.String("env", a.cfg.Env), zap.Bool("workers", withWorkers))

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		wg.Wait()
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server shutdown", zap.Error(err))
	}
	wg.Wait()
	return nil
}

func dbPing(a *app) handler.PingFunc {
	return func(ctx context.Context) error { return database.Ping(ctx, a.db) }
}

// cachePing is nil without Redis so health reports the cache as disabled.
func cachePing(rdb *redis.Client) handler.PingFunc {
	if rdb == nil {
		return nil
	}
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}
