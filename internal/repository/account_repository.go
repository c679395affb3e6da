package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/shastra-reservations/internal/database"
	"github.com/iliyamo/shastra-reservations/internal/model"
)

type AccountRepo struct{ db *sqlx.DB }

func NewAccountRepo(db *sqlx.DB) *AccountRepo { return &AccountRepo{db: db} }

// NormalizeEmail trims and lower-cases an address so lookups and the unique
// index agree on one spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateTx inserts the account inside tx.  Uniqueness of the email is left
// to the database index; a violation comes back as ErrEmailExists.
func (r *AccountRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, a *model.Account) error {
	a.Email = NormalizeEmail(a.Email)
	const q = `INSERT INTO accounts (id, name, email, phone, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, tx.Rebind(q), a.ID, a.Name, a.Email, a.Phone, a.CreatedAt)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	var a model.Account
	const q = `SELECT id, name, email, phone, created_at FROM accounts WHERE email = ? LIMIT 1`
	err := r.db.GetContext(ctx, &a, r.db.Rebind(q), NormalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

// CountByEmail returns how many accounts carry the given email.  The unique
// index keeps this at zero or one.
func (r *AccountRepo) CountByEmail(ctx context.Context, email string) (int, error) {
	var n int
	const q = `SELECT COUNT(*) FROM accounts WHERE email = ?`
	err := r.db.GetContext(ctx, &n, r.db.Rebind(q), NormalizeEmail(email))
	return n, err
}
