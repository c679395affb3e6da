package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/shastra-reservations/internal/database"
	"github.com/iliyamo/shastra-reservations/internal/model"
)

// MaxListedReservations caps ListByEmail.
const MaxListedReservations = 10

// ReservationRepo stores table bookings.  All timestamps are UTC.
type ReservationRepo struct {
	db *sqlx.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sqlx.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, account_id, name, email, phone, booking_date, booking_time, guests,
	special_request, status, request_token, created_at, updated_at`

// CreateTx inserts a reservation within the scope of an existing
// transaction.  The caller must commit or roll back.  Reusing a request
// token returns ErrRequestTokenExists; the transaction is then unusable on
// PostgreSQL and must be rolled back.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, res *model.Reservation) error {
	res.Email = NormalizeEmail(res.Email)
	const q = `INSERT INTO reservations (` + reservationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, tx.Rebind(q),
		res.ID, res.AccountID, res.Name, res.Email, res.Phone, res.Date, res.Time, res.Guests,
		res.SpecialRequest, res.Status, res.RequestToken, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrRequestTokenExists
		}
		return err
	}
	return nil
}

// GetByRequestToken returns the reservation created with the given
// idempotency token.
func (r *ReservationRepo) GetByRequestToken(ctx context.Context, token string) (model.Reservation, error) {
	var res model.Reservation
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE request_token = ? LIMIT 1`
	err := r.db.GetContext(ctx, &res, r.db.Rebind(q), token)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrNotFound
	}
	return res, err
}

// ListByEmail returns up to limit reservations for the email ordered by
// creation time, newest first.  A limit outside 1..MaxListedReservations is
// clamped.  An email with no bookings yields an empty, non-nil slice.
func (r *ReservationRepo) ListByEmail(ctx context.Context, email string, limit int) ([]model.Reservation, error) {
	if limit <= 0 || limit > MaxListedReservations {
		limit = MaxListedReservations
	}
	q := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE email = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`
	out := make([]model.Reservation, 0, limit)
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), NormalizeEmail(email), limit); err != nil {
		return nil, err
	}
	return out, nil
}
