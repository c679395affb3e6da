package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/iliyamo/shastra-reservations/internal/model"
	"github.com/iliyamo/shastra-reservations/internal/repository"
)

// CreateReservationInput is the payload of a booking request.  Date, time
// and guests are only checked for presence.
type CreateReservationInput struct {
	Email          string `json:"email" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	Date           string `json:"date" validate:"required"`
	Time           string `json:"time" validate:"required"`
	Guests         string `json:"guests" validate:"required"`
	SpecialRequest string `json:"specialRequest"`
	RequestToken   string `json:"requestToken"`
}

// ReservationService creates and lists bookings.
type ReservationService struct {
	db           *sqlx.DB
	accounts     *repository.AccountRepo
	reservations *repository.ReservationRepo
	outbox       *repository.OutboxRepo
	clock        clockwork.Clock
	log          *zap.Logger
}

func NewReservationService(db *sqlx.DB, accounts *repository.AccountRepo, reservations *repository.ReservationRepo, outbox *repository.OutboxRepo, clock clockwork.Clock, log *zap.Logger) *ReservationService {
	return &ReservationService{db: db, accounts: accounts, reservations: reservations, outbox: outbox, clock: clock, log: log}
}

// Create books a table for an existing account.  The reservation is stored
// as confirmed and the confirmation e-mail is queued in the same
// transaction.
//
// When in.RequestToken matches an earlier booking of the same email, that
// booking is returned with replayed set and nothing new is written.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (res model.Reservation, replayed bool, err error) {
	in.Email = repository.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Guests = strings.TrimSpace(in.Guests)
	in.RequestToken = strings.TrimSpace(in.RequestToken)
	if err := validateInput(in); err != nil {
		return model.Reservation{}, false, err
	}

	acc, err := s.accounts.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Reservation{}, false, ErrNotFound
		}
		return model.Reservation{}, false, &DependencyError{Op: "create reservation", Err: err}
	}

	if in.RequestToken != "" {
		prev, found, err := s.replay(ctx, in)
		if err != nil || found {
			return prev, found, err
		}
	}

	now := s.clock.Now().UTC()
	res = model.Reservation{
		ID:             uuid.NewString(),
		AccountID:      acc.ID,
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		Date:           in.Date,
		Time:           in.Time,
		Guests:         in.Guests,
		SpecialRequest: in.SpecialRequest,
		Status:         model.StatusConfirmed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.RequestToken != "" {
		token := in.RequestToken
		res.RequestToken = &token
	}

	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.reservations.CreateTx(ctx, tx, &res); err != nil {
			return err
		}
		return s.outbox.Enqueue(ctx, tx, &model.Notification{
			Kind:      model.KindReservationConfirmation,
			Recipient: res.Email,
			Payload: model.NotificationPayload{
				Name:           res.Name,
				Date:           res.Date,
				Time:           res.Time,
				Guests:         res.Guests,
				SpecialRequest: res.SpecialRequest,
			},
		}, now)
	})
	if errors.Is(err, repository.ErrRequestTokenExists) {
		// Lost a race with a concurrent submission carrying the same token.
		prev, found, rerr := s.replay(ctx, in)
		if rerr != nil || found {
			return prev, found, rerr
		}
	}
	if err != nil {
		return model.Reservation{}, false, &DependencyError{Op: "create reservation", Err: err}
	}
	s.log.Info("reservation created",
		zap.String("reservation_id", res.ID),
		zap.String("account_id", acc.ID),
		zap.String("date", res.Date),
		zap.String("time", res.Time),
	)
	return res, false, nil
}

// replay resolves an already used request token.  found is false when the
// token has not been seen.  A token is only replayed for the same email,
// date, time and party size; anything else is ErrIdempotencyConflict.
func (s *ReservationService) replay(ctx context.Context, in CreateReservationInput) (model.Reservation, bool, error) {
	prev, err := s.reservations.GetByRequestToken(ctx, in.RequestToken)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return model.Reservation{}, false, nil
	case err != nil:
		return model.Reservation{}, false, &DependencyError{Op: "create reservation", Err: err}
	case prev.Email != in.Email, prev.Date != in.Date, prev.Time != in.Time, prev.Guests != in.Guests:
		return model.Reservation{}, false, ErrIdempotencyConflict
	}
	s.log.Info("reservation replayed", zap.String("reservation_id", prev.ID))
	return prev, true, nil
}

// List returns the newest reservations for email, at most
// repository.MaxListedReservations of them.  Unknown emails yield an empty
// list.
func (s *ReservationService) List(ctx context.Context, email string) ([]model.Reservation, error) {
	out, err := s.reservations.ListByEmail(ctx, email, repository.MaxListedReservations)
	if err != nil {
		return nil, &DependencyError{Op: "list reservations", Err: err}
	}
	return out, nil
}
