package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/iliyamo/shastra-reservations/internal/config"
	"github.com/iliyamo/shastra-reservations/internal/model"
	"github.com/iliyamo/shastra-reservations/internal/notify"
	"github.com/iliyamo/shastra-reservations/internal/repository"
)

// sendTimeout bounds a single SMTP delivery.
const sendTimeout = 30 * time.Second

// NotificationStore is the part of the outbox the worker needs.
type NotificationStore interface {
	Get(ctx context.Context, id string) (model.Notification, error)
	MarkSent(ctx context.Context, id string, now time.Time) (bool, error)
	Reschedule(ctx context.Context, id string, fromStatus model.NotificationStatus, attempts int, lastErr string, next time.Time, now time.Time) (bool, error)
	MarkFailed(ctx context.Context, id string, fromStatus model.NotificationStatus, attempts int, lastErr string, now time.Time) (bool, error)
}

// Handler delivers the notification named by a queue message and records
// the outcome on the outbox row.
type Handler struct {
	store    NotificationStore
	renderer *notify.Renderer
	sender   notify.Sender
	clock    clockwork.Clock
	log      *zap.Logger
	retry    config.OutboxConfig
}

func NewHandler(store NotificationStore, renderer *notify.Renderer, sender notify.Sender, clock clockwork.Clock, log *zap.Logger, retry config.OutboxConfig) *Handler {
	return &Handler{store: store, renderer: renderer, sender: sender, clock: clock, log: log, retry: retry}
}

// Handle processes one message body.  A returned error means the message
// could not be interpreted or the store is unavailable; delivery failures
// are recorded on the row and are not returned.
func (h *Handler) Handle(ctx context.Context, body []byte) error {
	var ev NotificationRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	log := h.log.With(zap.String("notification_id", ev.NotificationID), zap.String("kind", ev.Kind))

	n, err := h.store.Get(ctx, ev.NotificationID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("notification row missing, dropping message")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load notification: %w", err)
	}
	if n.Status != model.NotificationPublished {
		// Redelivery of a message that was already settled.
		log.Info("notification already settled", zap.String("status", string(n.Status)))
		return nil
	}

	msg, err := h.renderer.Render(n)
	if err != nil {
		return h.fail(ctx, log, n, n.Attempts+1, err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	sendErr := h.sender.Send(sendCtx, msg)
	cancel()

	now := h.clock.Now().UTC()
	if sendErr == nil {
		if _, err := h.store.MarkSent(ctx, n.ID, now); err != nil {
			return fmt.Errorf("mark sent: %w", err)
		}
		log.Info("notification sent", zap.String("to", n.Recipient))
		return nil
	}

	attempts := n.Attempts + 1
	if attempts >= h.retry.MaxAttempts {
		return h.fail(ctx, log, n, attempts, sendErr)
	}
	next := now.Add(Backoff(attempts, h.retry.BaseBackoff, h.retry.MaxBackoff))
	if _, err := h.store.Reschedule(ctx, n.ID, model.NotificationPublished, attempts, sendErr.Error(), next, now); err != nil {
		return fmt.Errorf("reschedule: %w", err)
	}
	log.Warn("notification delivery failed, retry scheduled",
		zap.Int("attempts", attempts),
		zap.Time("next_attempt_at", next),
		zap.Error(sendErr),
	)
	return nil
}

func (h *Handler) fail(ctx context.Context, log *zap.Logger, n model.Notification, attempts int, cause error) error {
	if _, err := h.store.MarkFailed(ctx, n.ID, model.NotificationPublished, attempts, cause.Error(), h.clock.Now().UTC()); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	log.Error("notification failed permanently", zap.Int("attempts", attempts), zap.Error(cause))
	sentry.CaptureException(fmt.Errorf("notification %s (%s): %w", n.ID, n.Kind, cause))
	return nil
}
