package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/shastra-reservations/internal/config"
	"github.com/iliyamo/shastra-reservations/internal/queue"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			// bootstrap already migrates
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			a.log.Info("schema is up to date", zap.String("driver", a.cfg.DBDriver))
			return nil
		},
	}
}

func newRelayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Publish pending notifications from the outbox to RabbitMQ",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			qcfg := config.LoadQueueConfig()
			pub := queue.NewPublisher(qcfg.URL, qcfg.QueueName)
			defer pub.Close()

			ctx, stop := signalContext()
			defer stop()
			return ignoreCanceled(a.newRelay(pub).Run(ctx))
		},
	}
}

func newWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Render and send queued notification e-mails",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			consumer, err := a.newConsumer()
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			a.log.Info("notification worker started", zap.String("queue", config.LoadQueueConfig().QueueName))
			return ignoreCanceled(consumer.Run(ctx))
		},
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
