// Package flow is the guest-facing reservation flow: sign up or log in,
// fill the booking form, see the confirmation.  It holds the view state and
// drives an API; rendering is left to the caller.
package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultGuests is the party size preselected on the booking form.
const DefaultGuests = "2"

var (
	// ErrBusy is returned when a submit is attempted while another is in
	// flight.
	ErrBusy = errors.New("flow: a request is already in flight")
	// ErrInvalidTransition is returned when an action does not apply to the
	// current view.
	ErrInvalidTransition = errors.New("flow: action not allowed in current view")
)

// Account is the signed-in guest.
type Account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Booking is the payload of a reservation request.
type Booking struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Guests         string `json:"guests"`
	SpecialRequest string `json:"specialRequest,omitempty"`
	RequestToken   string `json:"requestToken,omitempty"`
}

// Confirmation summarises a created reservation.
type Confirmation struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Guests string `json:"guests"`
}

// API is the server the flow talks to.
type API interface {
	Signup(ctx context.Context, name, email, phone string) (Account, error)
	Login(ctx context.Context, email, phone string) (Account, error)
	CreateReservation(ctx context.Context, b Booking) (Confirmation, error)
}

// AuthFields are the inputs of the AUTH view.  Name is only used on signup.
type AuthFields struct {
	Name  string
	Email string
	Phone string
}

// FormFields are the inputs of the FORM view.
type FormFields struct {
	Date           string
	Time           string
	Guests         string
	SpecialRequest string
}

// Flow is one open reservation dialog.  Every Open returns a fresh value;
// nothing carries over from a closed flow.
type Flow struct {
	api      API
	newToken func() string

	mu           sync.Mutex
	view         View
	busy         bool
	mode         AuthMode
	account      *Account
	auth         AuthFields
	form         FormFields
	token        string
	confirmation *Confirmation
	email        string
	err          error
}

// Open starts a flow.  With an account the guest goes straight to the
// booking form, otherwise to the AUTH view in login mode.
func Open(api API, acc *Account) *Flow {
	f := &Flow{
		api:      api,
		newToken: uuid.NewString,
		view:     ViewAuth,
		mode:     ModeLogin,
		form:     FormFields{Guests: DefaultGuests},
	}
	if acc != nil {
		a := *acc
		f.account = &a
		f.view = ViewForm
	}
	return f
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

func (f *Flow) Mode() AuthMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// SetAuthMode switches between login and signup.  The view does not change.
func (f *Flow) SetAuthMode(m AuthMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = m
}

func (f *Flow) SetAuthFields(a AuthFields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = a
}

// SetForm replaces the booking inputs.  An empty Guests falls back to
// DefaultGuests.  Changing any field makes the next submit a new booking
// with a new request token.
func (f *Flow) SetForm(form FormFields) {
	if form.Guests == "" {
		form.Guests = DefaultGuests
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if form != f.form {
		f.token = ""
	}
	f.form = form
}

func (f *Flow) Form() FormFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Account returns the signed-in guest, or nil.
func (f *Flow) Account() *Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.account == nil {
		return nil
	}
	a := *f.account
	return &a
}

// Confirmation returns the booking summary once the flow reached SUCCESS.
func (f *Flow) Confirmation() *Confirmation {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confirmation == nil {
		return nil
	}
	c := *f.confirmation
	return &c
}

// Err returns the error of the last failed submit, cleared by the next one.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Busy reports whether a submit is in flight.
func (f *Flow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// SuccessMessage is the text shown on the SUCCESS view.
func (f *Flow) SuccessMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view != ViewSuccess || f.confirmation == nil {
		return ""
	}
	return fmt.Sprintf("We have sent a confirmation to %s. See you on %s at %s.",
		f.email, f.confirmation.Date, f.confirmation.Time)
}

// SubmitAuth logs in or signs up with the AUTH fields.  On success the
// account is stored and the flow moves to FORM; on failure it stays in AUTH
// and the error is returned.
func (f *Flow) SubmitAuth(ctx context.Context) error {
	f.mu.Lock()
	if err := f.begin(ViewAuth); err != nil {
		f.mu.Unlock()
		return err
	}
	mode, fields := f.mode, f.auth
	f.mu.Unlock()

	var (
		acc Account
		err error
	)
	if mode == ModeSignup {
		acc, err = f.api.Signup(ctx, fields.Name, fields.Email, fields.Phone)
	} else {
		acc, err = f.api.Login(ctx, fields.Email, fields.Phone)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if err != nil {
		return f.fail(EvAuthFailed, err)
	}
	if f.apply(EvAuthSucceeded) {
		f.account = &acc
	}
	return nil
}

// SubmitBooking sends the booking form.  The held account supplies the
// contact details, falling back to the AUTH fields.  A request token is
// attached and kept across failed attempts of the same form so a retried
// submit cannot book twice; it is replaced after a success or a form change.
func (f *Flow) SubmitBooking(ctx context.Context) error {
	f.mu.Lock()
	if err := f.begin(ViewForm); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.token == "" {
		f.token = f.newToken()
	}
	b := Booking{
		Email:          f.auth.Email,
		Name:           f.auth.Name,
		Phone:          f.auth.Phone,
		Date:           f.form.Date,
		Time:           f.form.Time,
		Guests:         f.form.Guests,
		SpecialRequest: strings.TrimSpace(f.form.SpecialRequest),
		RequestToken:   f.token,
	}
	if f.account != nil {
		b.Email, b.Name, b.Phone = f.account.Email, f.account.Name, f.account.Phone
	}
	f.mu.Unlock()

	conf, err := f.api.CreateReservation(ctx, b)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if err != nil {
		return f.fail(EvBookingFailed, err)
	}
	if f.apply(EvBookingSucceeded) {
		f.confirmation = &conf
		f.email = b.Email
		f.token = ""
	}
	return nil
}

// Close discards the flow.  Any state it held is gone; call Open again to
// start over.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.apply(EvClose) {
		return
	}
	f.account = nil
	f.auth = AuthFields{}
	f.form = FormFields{}
	f.confirmation = nil
	f.token = ""
	f.err = nil
}

// begin marks the flow busy if it is idle in the expected view.  Callers
// hold f.mu.
func (f *Flow) begin(want View) error {
	if f.busy {
		return ErrBusy
	}
	if f.view != want {
		return ErrInvalidTransition
	}
	f.busy = true
	f.err = nil
	return nil
}

// fail records err and applies the failure edge.  Callers hold f.mu.
func (f *Flow) fail(ev Event, err error) error {
	f.apply(ev)
	f.err = err
	return err
}

// apply moves along the transition table.  It reports false, leaving the
// view alone, when the event does not apply (e.g. the flow was closed while
// a request was in flight).  Callers hold f.mu.
func (f *Flow) apply(ev Event) bool {
	tr, ok := TransitionFor(f.view, ev)
	if !ok {
		return false
	}
	f.view = tr.To
	return true
}
