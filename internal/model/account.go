package model

import "time"

// Account is a registered guest.  Email is the natural key: it is stored
// trimmed and lower-cased and is unique across accounts.  Accounts are only
// ever created (by signup); nothing updates or deletes them.
type Account struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// PublicAccount is the subset of an Account returned by the auth endpoints.
type PublicAccount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Public strips the account down to the fields clients see.
func (a Account) Public() PublicAccount {
	return PublicAccount{ID: a.ID, Name: a.Name, Email: a.Email, Phone: a.Phone}
}
