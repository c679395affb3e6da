// Package outbox relays pending notification rows to the message broker.
package outbox

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/iliyamo/shastra-reservations/internal/config"
	"github.com/iliyamo/shastra-reservations/internal/model"
	"github.com/iliyamo/shastra-reservations/internal/queue"
)

// Store is the part of the outbox repository the relay uses.
type Store interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]model.Notification, error)
	MarkPublished(ctx context.Context, id string, now time.Time) (bool, error)
	Reschedule(ctx context.Context, id string, fromStatus model.NotificationStatus, attempts int, lastErr string, next time.Time, now time.Time) (bool, error)
	RequeueStale(ctx context.Context, cutoff, now time.Time) (int64, error)
}

// Publisher hands an event to the broker.
type Publisher interface {
	Publish(ctx context.Context, ev queue.NotificationRequestedEvent) error
}

// Relay moves due rows from pending to published and publishes one event
// per row.  A row is claimed before it is published so a worker never sees
// a message for a row that is still pending.
type Relay struct {
	store Store
	pub   Publisher
	clock clockwork.Clock
	log   *zap.Logger
	cfg   config.OutboxConfig
}

func NewRelay(store Store, pub Publisher, clock clockwork.Clock, log *zap.Logger, cfg config.OutboxConfig) *Relay {
	return &Relay{store: store, pub: pub, clock: clock, log: log, cfg: cfg}
}

// Run ticks every PollInterval until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	r.log.Info("outbox relay started", zap.Duration("poll_interval", r.cfg.PollInterval))
	for {
		if _, err := r.Tick(ctx); err != nil && ctx.Err() == nil {
			r.log.Warn("outbox relay tick failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return ctx.Err()
		case <-ticker.Chan():
		}
	}
}

// Tick relays one batch and returns how many rows were published.  It stops
// at the first broker error; the affected row goes back to pending.
func (r *Relay) Tick(ctx context.Context) (int, error) {
	now := r.clock.Now().UTC()
	if r.cfg.StaleAfter > 0 {
		n, err := r.store.RequeueStale(ctx, now.Add(-r.cfg.StaleAfter), now)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			r.log.Warn("requeued stale notifications", zap.Int64("count", n))
		}
	}

	due, err := r.store.ListDue(ctx, now, r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, n := range due {
		claimed, err := r.store.MarkPublished(ctx, n.ID, now)
		if err != nil {
			return published, err
		}
		if !claimed {
			continue
		}
		ev := queue.NotificationRequestedEvent{
			NotificationID: n.ID,
			Kind:           string(n.Kind),
			Recipient:      n.Recipient,
			Attempt:        n.Attempts + 1,
			RequestedAt:    now.Format(time.RFC3339),
		}
		if err := r.pub.Publish(ctx, ev); err != nil {
			retryAt := now.Add(r.cfg.PollInterval)
			if _, rerr := r.store.Reschedule(ctx, n.ID, model.NotificationPublished, n.Attempts, err.Error(), retryAt, now); rerr != nil {
				r.log.Error("release notification after publish failure", zap.String("notification_id", n.ID), zap.Error(rerr))
			}
			return published, err
		}
		published++
	}
	if published > 0 {
		r.log.Debug("relayed notifications", zap.Int("count", published))
	}
	return published, nil
}
