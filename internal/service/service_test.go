package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/iliyamo/shastra-reservations/internal/database/dbtest"
	"github.com/iliyamo/shastra-reservations/internal/model"
	"github.com/iliyamo/shastra-reservations/internal/repository"
)

type fixture struct {
	db           *sqlx.DB
	clock        *clockwork.FakeClock
	outbox       *repository.OutboxRepo
	accounts     *AccountService
	reservations *ReservationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)

	clock := clockwork.NewFakeClockAt(time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC))
	accRepo := repository.NewAccountRepo(db)
	outbox := repository.NewOutboxRepo(db)
	log := zap.NewNop()
	return &fixture{
		db:           db,
		clock:        clock,
		outbox:       outbox,
		accounts:     NewAccountService(db, accRepo, outbox, clock, log),
		reservations: NewReservationService(db, accRepo, repository.NewReservationRepo(db), outbox, clock, log),
	}
}

func (f *fixture) pendingKinds(t *testing.T) []model.NotificationKind {
	t.Helper()
	due, err := f.outbox.ListDue(context.Background(), f.clock.Now().UTC(), 100)
	if err != nil {
		t.Fatalf("ListDue() failed: %v", err)
	}
	kinds := make([]model.NotificationKind, 0, len(due))
	for _, n := range due {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func (f *fixture) signup(t *testing.T, name, email, phone string) model.Account {
	t.Helper()
	acc, err := f.accounts.Signup(context.Background(), SignupInput{Name: name, Email: email, Phone: phone})
	if err != nil {
		t.Fatalf("Signup(%s) failed: %v", email, err)
	}
	return acc
}
