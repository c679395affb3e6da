package model

import "time"

// ReservationStatus enumerates the states a reservation can be in.  Only
// StatusConfirmed is ever written; the others exist so stored data from
// manual back-office edits still decodes.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

// LargeGroupGuests is the party-size marker offered beyond ten guests.
const LargeGroupGuests = "10+"

// Reservation records a table booking.  Name, Email and Phone are copies of
// the contact details supplied at booking time and may drift from the
// owning Account.  Date, Time and Guests are stored as the text the guest
// entered.
type Reservation struct {
	ID             string            `db:"id" json:"id"`
	AccountID      string            `db:"account_id" json:"userId"`
	Name           string            `db:"name" json:"name"`
	Email          string            `db:"email" json:"email"`
	Phone          string            `db:"phone" json:"phone"`
	Date           string            `db:"booking_date" json:"date"`
	Time           string            `db:"booking_time" json:"time"`
	Guests         string            `db:"guests" json:"guests"`
	SpecialRequest string            `db:"special_request" json:"specialRequest"`
	Status         ReservationStatus `db:"status" json:"status"`
	RequestToken   *string           `db:"request_token" json:"-"`
	CreatedAt      time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updatedAt"`
}

// ReservationSummary is returned by the create endpoint.
type ReservationSummary struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Guests string `json:"guests"`
}

func (r Reservation) Summary() ReservationSummary {
	return ReservationSummary{ID: r.ID, Date: r.Date, Time: r.Time, Guests: r.Guests}
}
