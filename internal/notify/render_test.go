package notify

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/shastra-reservations/internal/model"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(clockwork.NewFakeClockAt(time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	return r
}

func TestRenderer_Golden(t *testing.T) {
	r := newTestRenderer(t)
	g := goldie.New(t)

	tests := []struct {
		golden string
		n      model.Notification
	}{
		{"welcome_new", model.Notification{Kind: model.KindWelcome, Payload: model.NotificationPayload{Name: "Arjun"}}},
		{"welcome_back", model.Notification{Kind: model.KindWelcomeBack, Payload: model.NotificationPayload{Name: "Arjun"}}},
		{"reservation_special_request", model.Notification{Kind: model.KindReservationConfirmation, Payload: model.NotificationPayload{
			Name: "Arjun", Date: "2025-12-01", Time: "19:30", Guests: "4", SpecialRequest: "Window seat please",
		}}},
		{"reservation_single_guest", model.Notification{Kind: model.KindReservationConfirmation, Payload: model.NotificationPayload{
			Name: "Meera", Date: "next friday", Time: "12:00", Guests: "1",
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.golden, func(t *testing.T) {
			msg, err := r.Render(tt.n)
			require.NoError(t, err)
			g.Assert(t, tt.golden, []byte(msg.HTML))
		})
	}
}

func TestRenderer_Subjects(t *testing.T) {
	r := newTestRenderer(t)
	tests := map[model.NotificationKind]string{
		model.KindWelcome:                 "🎉 Welcome to Shastra Veg Restaurant!",
		model.KindWelcomeBack:             "👋 Welcome Back to Shastra!",
		model.KindReservationConfirmation: "✅ Table Reservation Confirmed - Shastra Veg Restaurant",
	}
	for kind, want := range tests {
		msg, err := r.Render(model.Notification{Kind: kind, Recipient: "arjun@x.com", Payload: model.NotificationPayload{Name: "Arjun"}})
		require.NoError(t, err)
		assert.Equal(t, want, msg.Subject)
		assert.Equal(t, "arjun@x.com", msg.To)
	}
}

func TestRenderer_UnknownKind(t *testing.T) {
	_, err := newTestRenderer(t).Render(model.Notification{Kind: "sms"})
	assert.Error(t, err)
}

func TestRenderer_EscapesGuestInput(t *testing.T) {
	html, err := newTestRenderer(t).ReservationConfirmation(model.NotificationPayload{
		Name: "<b>Arjun</b>", Date: "2025-12-01", Time: "19:30", Guests: "2",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "&lt;b&gt;Arjun&lt;/b&gt;")
	assert.NotContains(t, html, "Special Request")
}

func TestGuestsLabel(t *testing.T) {
	tests := map[string]string{
		"1":   "1 Person",
		"2":   "2 People",
		"10":  "10 People",
		"10+": "10+ People",
	}
	for in, want := range tests {
		assert.Equal(t, want, GuestsLabel(in), in)
	}
}

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"2025-12-01": "Monday, 1 December 2025",
		"2026-01-26": "Monday, 26 January 2026",
		"tomorrow":   "tomorrow",
		"2025-13-01": "2025-13-01",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatDate(in), in)
	}
}
