package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Tables:
//   accounts             one row per guest, unique on email
//   reservations         bookings; request_token unique when present
//   notification_outbox  e-mails waiting for the relay/worker

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id         CHAR(36)     NOT NULL PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		email      VARCHAR(255) NOT NULL,
		phone      VARCHAR(64)  NOT NULL,
		created_at DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_accounts_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id              CHAR(36)     NOT NULL PRIMARY KEY,
		account_id      CHAR(36)     NOT NULL,
		name            VARCHAR(255) NOT NULL,
		email           VARCHAR(255) NOT NULL,
		phone           VARCHAR(64)  NOT NULL,
		booking_date    VARCHAR(32)  NOT NULL,
		booking_time    VARCHAR(32)  NOT NULL,
		guests          VARCHAR(16)  NOT NULL,
		special_request TEXT         NOT NULL,
		status          VARCHAR(16)  NOT NULL DEFAULT 'confirmed',
		request_token   VARCHAR(128) NULL,
		created_at      DATETIME(6)  NOT NULL,
		updated_at      DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_reservations_request_token (request_token),
		KEY idx_reservations_email_date (email, booking_date),
		KEY idx_reservations_email_created (email, created_at),
		KEY idx_reservations_account (account_id),
		CONSTRAINT fk_reservations_account FOREIGN KEY (account_id) REFERENCES accounts (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS notification_outbox (
		id              CHAR(27)     NOT NULL PRIMARY KEY,
		kind            VARCHAR(32)  NOT NULL,
		recipient       VARCHAR(255) NOT NULL,
		payload         TEXT         NOT NULL,
		status          VARCHAR(16)  NOT NULL,
		attempts        INT          NOT NULL DEFAULT 0,
		last_error      TEXT         NULL,
		next_attempt_at DATETIME(6)  NOT NULL,
		created_at      DATETIME(6)  NOT NULL,
		updated_at      DATETIME(6)  NOT NULL,
		KEY idx_outbox_due (status, next_attempt_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id         CHAR(36)     PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		email      VARCHAR(255) NOT NULL,
		phone      VARCHAR(64)  NOT NULL,
		created_at TIMESTAMPTZ  NOT NULL,
		CONSTRAINT uq_accounts_email UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id              CHAR(36)     PRIMARY KEY,
		account_id      CHAR(36)     NOT NULL REFERENCES accounts (id),
		name            VARCHAR(255) NOT NULL,
		email           VARCHAR(255) NOT NULL,
		phone           VARCHAR(64)  NOT NULL,
		booking_date    VARCHAR(32)  NOT NULL,
		booking_time    VARCHAR(32)  NOT NULL,
		guests          VARCHAR(16)  NOT NULL,
		special_request TEXT         NOT NULL,
		status          VARCHAR(16)  NOT NULL DEFAULT 'confirmed',
		request_token   VARCHAR(128) NULL,
		created_at      TIMESTAMPTZ  NOT NULL,
		updated_at      TIMESTAMPTZ  NOT NULL,
		CONSTRAINT uq_reservations_request_token UNIQUE (request_token)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_email_date ON reservations (email, booking_date)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_email_created ON reservations (email, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_account ON reservations (account_id)`,
	`CREATE TABLE IF NOT EXISTS notification_outbox (
		id              CHAR(27)     PRIMARY KEY,
		kind            VARCHAR(32)  NOT NULL,
		recipient       VARCHAR(255) NOT NULL,
		payload         TEXT         NOT NULL,
		status          VARCHAR(16)  NOT NULL,
		attempts        INTEGER      NOT NULL DEFAULT 0,
		last_error      TEXT         NULL,
		next_attempt_at TIMESTAMPTZ  NOT NULL,
		created_at      TIMESTAMPTZ  NOT NULL,
		updated_at      TIMESTAMPTZ  NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_due ON notification_outbox (status, next_attempt_at)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id         TEXT     PRIMARY KEY,
		name       TEXT     NOT NULL,
		email      TEXT     NOT NULL UNIQUE,
		phone      TEXT     NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id              TEXT     PRIMARY KEY,
		account_id      TEXT     NOT NULL REFERENCES accounts (id),
		name            TEXT     NOT NULL,
		email           TEXT     NOT NULL,
		phone           TEXT     NOT NULL,
		booking_date    TEXT     NOT NULL,
		booking_time    TEXT     NOT NULL,
		guests          TEXT     NOT NULL,
		special_request TEXT     NOT NULL DEFAULT '',
		status          TEXT     NOT NULL DEFAULT 'confirmed',
		request_token   TEXT     NULL UNIQUE,
		created_at      DATETIME NOT NULL,
		updated_at      DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_email_date ON reservations (email, booking_date)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_email_created ON reservations (email, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_account ON reservations (account_id)`,
	`CREATE TABLE IF NOT EXISTS notification_outbox (
		id              TEXT     PRIMARY KEY,
		kind            TEXT     NOT NULL,
		recipient       TEXT     NOT NULL,
		payload         TEXT     NOT NULL,
		status          TEXT     NOT NULL,
		attempts        INTEGER  NOT NULL DEFAULT 0,
		last_error      TEXT     NULL,
		next_attempt_at DATETIME NOT NULL,
		created_at      DATETIME NOT NULL,
		updated_at      DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_due ON notification_outbox (status, next_attempt_at)`,
}

// Migrate creates the schema for the connection's driver.  Every statement
// is idempotent so Migrate can run on each start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var stmts []string
	switch db.DriverName() {
	case "mysql":
		stmts = mysqlSchema
	case "postgres":
		stmts = postgresSchema
	case "sqlite3":
		stmts = sqliteSchema
	default:
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
