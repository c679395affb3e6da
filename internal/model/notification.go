package model

import "time"

// NotificationKind selects the e-mail template and subject.
type NotificationKind string

const (
	KindWelcome                 NotificationKind = "welcome"
	KindWelcomeBack             NotificationKind = "welcome_back"
	KindReservationConfirmation NotificationKind = "reservation_confirmation"
)

// NotificationStatus tracks an outbox row through relay and delivery.
//
//	pending   -> published (relay handed it to the broker)
//	published -> sent      (worker delivered it)
//	published -> pending   (delivery failed, retry scheduled)
//	published -> failed    (delivery failed, attempts exhausted)
type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationPublished NotificationStatus = "published"
	NotificationSent      NotificationStatus = "sent"
	NotificationFailed    NotificationStatus = "failed"
)

// NotificationPayload carries the template data.  Reservation fields are
// empty for welcome e-mails.
type NotificationPayload struct {
	Name           string `json:"name"`
	Date           string `json:"date,omitempty"`
	Time           string `json:"time,omitempty"`
	Guests         string `json:"guests,omitempty"`
	SpecialRequest string `json:"specialRequest,omitempty"`
}

// Notification is a row of the notification outbox.
type Notification struct {
	ID            string              `db:"id"`
	Kind          NotificationKind    `db:"kind"`
	Recipient     string              `db:"recipient"`
	Payload       NotificationPayload `db:"-"`
	PayloadJSON   string              `db:"payload"`
	Status        NotificationStatus  `db:"status"`
	Attempts      int                 `db:"attempts"`
	LastError     *string             `db:"last_error"`
	NextAttemptAt time.Time           `db:"next_attempt_at"`
	CreatedAt     time.Time           `db:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at"`
}
