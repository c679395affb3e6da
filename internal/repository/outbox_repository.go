package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/segmentio/ksuid"

	"github.com/iliyamo/shastra-reservations/internal/model"
)

// OutboxRepo persists notifications that still have to be e-mailed.  Rows
// are written in the same transaction as the business change that caused
// them, then picked up by the relay.
type OutboxRepo struct {
	db *sqlx.DB
}

func NewOutboxRepo(db *sqlx.DB) *OutboxRepo { return &OutboxRepo{db: db} }

const outboxColumns = `id, kind, recipient, payload, status, attempts, last_error, next_attempt_at, created_at, updated_at`

// Enqueue stores n as a pending notification due at now.  q may be the
// database or an open transaction.  An empty ID is filled with a KSUID so
// rows sort by creation.
func (r *OutboxRepo) Enqueue(ctx context.Context, q sqlx.ExtContext, n *model.Notification, now time.Time) error {
	if n.ID == "" {
		n.ID = ksuid.New().String()
	}
	body, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	n.PayloadJSON = string(body)
	n.Status = model.NotificationPending
	n.Attempts = 0
	n.NextAttemptAt = now
	n.CreatedAt = now
	n.UpdatedAt = now

	const ins = `INSERT INTO notification_outbox (` + outboxColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = q.ExecContext(ctx, q.Rebind(ins),
		n.ID, n.Kind, n.Recipient, n.PayloadJSON, n.Status, n.Attempts, n.LastError,
		n.NextAttemptAt, n.CreatedAt, n.UpdatedAt,
	)
	return err
}

// Get loads a single outbox row.
func (r *OutboxRepo) Get(ctx context.Context, id string) (model.Notification, error) {
	var n model.Notification
	q := `SELECT ` + outboxColumns + ` FROM notification_outbox WHERE id = ?`
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(q), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, ErrNotFound
		}
		return model.Notification{}, err
	}
	if err := decodePayload(&n); err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

// ListDue returns pending rows whose next attempt is at or before now, oldest
// first.
func (r *OutboxRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + outboxColumns + ` FROM notification_outbox
		WHERE status = ? AND next_attempt_at <= ?
		ORDER BY next_attempt_at, id
		LIMIT ?`
	rows := make([]model.Notification, 0, limit)
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), model.NotificationPending, now, limit); err != nil {
		return nil, err
	}
	for i := range rows {
		if err := decodePayload(&rows[i]); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// MarkPublished flags a pending row as handed to the broker.  It reports
// false when the row was no longer pending.
func (r *OutboxRepo) MarkPublished(ctx context.Context, id string, now time.Time) (bool, error) {
	return r.transition(ctx, id, model.NotificationPending, model.NotificationPublished, nil, nil, nil, now)
}

// MarkSent records a successful delivery.
func (r *OutboxRepo) MarkSent(ctx context.Context, id string, now time.Time) (bool, error) {
	return r.transition(ctx, id, model.NotificationPublished, model.NotificationSent, nil, nil, nil, now)
}

// Reschedule puts a row back to pending with an incremented attempt count
// and a new due time.  fromStatus is the status the caller observed.
func (r *OutboxRepo) Reschedule(ctx context.Context, id string, fromStatus model.NotificationStatus, attempts int, lastErr string, next time.Time, now time.Time) (bool, error) {
	return r.transition(ctx, id, fromStatus, model.NotificationPending, &attempts, &lastErr, &next, now)
}

// MarkFailed gives up on a row after its last attempt.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id string, fromStatus model.NotificationStatus, attempts int, lastErr string, now time.Time) (bool, error) {
	return r.transition(ctx, id, fromStatus, model.NotificationFailed, &attempts, &lastErr, nil, now)
}

// RequeueStale returns published rows last touched before cutoff to
// pending so they are relayed again.  It reports how many rows moved.
func (r *OutboxRepo) RequeueStale(ctx context.Context, cutoff, now time.Time) (int64, error) {
	const q = `UPDATE notification_outbox SET status = ?, next_attempt_at = ?, updated_at = ?
		WHERE status = ? AND updated_at < ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		model.NotificationPending, now, now, model.NotificationPublished, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// transition is a compare-and-set on status so a row is never moved twice by
// racing relay and worker processes.
func (r *OutboxRepo) transition(ctx context.Context, id string, from, to model.NotificationStatus, attempts *int, lastErr *string, next *time.Time, now time.Time) (bool, error) {
	set := `status = ?, updated_at = ?`
	args := []any{to, now}
	if attempts != nil {
		set += `, attempts = ?`
		args = append(args, *attempts)
	}
	if lastErr != nil {
		set += `, last_error = ?`
		args = append(args, *lastErr)
	}
	if next != nil {
		set += `, next_attempt_at = ?`
		args = append(args, *next)
	}
	args = append(args, id, from)
	q := `UPDATE notification_outbox SET ` + set + ` WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func decodePayload(n *model.Notification) error {
	if n.PayloadJSON == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(n.PayloadJSON), &n.Payload); err != nil {
		return fmt.Errorf("decode outbox payload %s: %w", n.ID, err)
	}
	return nil
}
