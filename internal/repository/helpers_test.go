package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/shastra-reservations/internal/database/dbtest"
	"github.com/iliyamo/shastra-reservations/internal/model"
)

func createTestDB(t *testing.T) *sqlx.DB { return dbtest.Open(t) }

var baseTime = time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)

func insertAccount(t *testing.T, db *sqlx.DB, id, email string) model.Account {
	t.Helper()
	a := model.Account{ID: id, Name: "Arjun", Email: email, Phone: "9000000000", CreatedAt: baseTime}
	tx, err := db.Beginx()
	if err != nil {
		t.Fatalf("Beginx() failed: %v", err)
	}
	if err := NewAccountRepo(db).CreateTx(context.Background(), tx, &a); err != nil {
		_ = tx.Rollback()
		t.Fatalf("CreateTx() failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}
	return a
}

func insertReservation(t *testing.T, db *sqlx.DB, res model.Reservation) error {
	t.Helper()
	tx, err := db.Beginx()
	if err != nil {
		t.Fatalf("Beginx() failed: %v", err)
	}
	if err := NewReservationRepo(db).CreateTx(context.Background(), tx, &res); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertAccountValue(id, email string) model.Account {
	return model.Account{ID: id, Name: "Arjun", Email: email, Phone: "9000000000", CreatedAt: baseTime}
}
