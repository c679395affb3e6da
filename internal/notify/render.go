// Package notify renders and sends the guest e-mails.
package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iliyamo/shastra-reservations/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Subjects per notification kind.
const (
	SubjectWelcome                 = "🎉 Welcome to Shastra Veg Restaurant!"
	SubjectWelcomeBack             = "👋 Welcome Back to Shastra!"
	SubjectReservationConfirmation = "✅ Table Reservation Confirmed - Shastra Veg Restaurant"
)

// Message is a rendered e-mail ready to be sent.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Renderer turns notifications into HTML e-mails.  The footer year is taken
// from the clock.
type Renderer struct {
	tmpl  *template.Template
	clock clockwork.Clock
}

func NewRenderer(clock clockwork.Clock) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, clock: clock}, nil
}

type welcomeData struct {
	Name      string
	IsNewUser bool
	Year      int
}

type reservationData struct {
	Name           string
	Date           string
	Time           string
	Guests         string
	SpecialRequest string
	Year           int
}

// Welcome renders the greeting sent after signup (isNewUser) or login.
func (r *Renderer) Welcome(name string, isNewUser bool) (string, error) {
	return r.execute("welcome.html", welcomeData{Name: name, IsNewUser: isNewUser, Year: r.clock.Now().Year()})
}

// ReservationConfirmation renders the booking confirmation.
func (r *Renderer) ReservationConfirmation(p model.NotificationPayload) (string, error) {
	return r.execute("reservation.html", reservationData{
		Name:           p.Name,
		Date:           FormatDate(p.Date),
		Time:           p.Time,
		Guests:         GuestsLabel(p.Guests),
		SpecialRequest: p.SpecialRequest,
		Year:           r.clock.Now().Year(),
	})
}

// Render builds the complete message for an outbox row.
func (r *Renderer) Render(n model.Notification) (Message, error) {
	var (
		html    string
		subject string
		err     error
	)
	switch n.Kind {
	case model.KindWelcome:
		subject = SubjectWelcome
		html, err = r.Welcome(n.Payload.Name, true)
	case model.KindWelcomeBack:
		subject = SubjectWelcomeBack
		html, err = r.Welcome(n.Payload.Name, false)
	case model.KindReservationConfirmation:
		subject = SubjectReservationConfirmation
		html, err = r.ReservationConfirmation(n.Payload)
	default:
		return Message{}, fmt.Errorf("unknown notification kind %q", n.Kind)
	}
	if err != nil {
		return Message{}, err
	}
	return Message{To: n.Recipient, Subject: subject, HTML: html}, nil
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// FormatDate renders a YYYY-MM-DD date as "Monday, 1 December 2025".
// Anything else is returned unchanged.
func FormatDate(s string) string {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return d.Format("Monday, 2 January 2006")
}

// GuestsLabel appends the noun for the party size: "1 Person", otherwise
// "N People".
func GuestsLabel(guests string) string {
	if guests == "1" {
		return guests + " Person"
	}
	return guests + " People"
}
