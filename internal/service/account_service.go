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

// SignupInput is the payload of a signup request.
type SignupInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// LoginInput is the payload of a login request.  Phone is compared as
// given, so it is not trimmed.
type LoginInput struct {
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// AccountService handles signup and login.
type AccountService struct {
	db       *sqlx.DB
	accounts *repository.AccountRepo
	outbox   *repository.OutboxRepo
	clock    clockwork.Clock
	log      *zap.Logger
}

func NewAccountService(db *sqlx.DB, accounts *repository.AccountRepo, outbox *repository.OutboxRepo, clock clockwork.Clock, log *zap.Logger) *AccountService {
	return &AccountService{db: db, accounts: accounts, outbox: outbox, clock: clock, log: log}
}

// Signup creates an account and queues the welcome e-mail in the same
// transaction.  A second signup for the same email fails with ErrConflict;
// the unique index decides, so concurrent attempts cannot both succeed.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (model.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = repository.NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateInput(in); err != nil {
		return model.Account{}, err
	}

	now := s.clock.Now().UTC()
	acc := model.Account{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
	}
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.accounts.CreateTx(ctx, tx, &acc); err != nil {
			return err
		}
		return s.outbox.Enqueue(ctx, tx, &model.Notification{
			Kind:      model.KindWelcome,
			Recipient: acc.Email,
			Payload:   model.NotificationPayload{Name: acc.Name},
		}, now)
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.Account{}, ErrConflict
		}
		return model.Account{}, &DependencyError{Op: "signup", Err: err}
	}
	s.log.Info("account created", zap.String("account_id", acc.ID))
	return acc, nil
}

// Login looks the account up by email and compares the phone exactly.  On
// success a welcome back e-mail is queued; failing to queue it is logged
// and does not fail the login.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (model.Account, error) {
	in.Email = repository.NormalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return model.Account{}, err
	}

	acc, err := s.accounts.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, &DependencyError{Op: "login", Err: err}
	}
	if acc.Phone != in.Phone {
		return model.Account{}, ErrUnauthorized
	}

	n := &model.Notification{
		Kind:      model.KindWelcomeBack,
		Recipient: acc.Email,
		Payload:   model.NotificationPayload{Name: acc.Name},
	}
	if err := s.outbox.Enqueue(ctx, s.db, n, s.clock.Now().UTC()); err != nil {
		s.log.Warn("queue welcome back e-mail", zap.String("account_id", acc.ID), zap.Error(err))
	}
	return acc, nil
}
