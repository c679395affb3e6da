package flow

// View is the screen the reservation flow is showing.
type View string

const (
	ViewAuth    View = "AUTH"
	ViewForm    View = "FORM"
	ViewSuccess View = "SUCCESS"
	// ViewClosed is not a screen.  It marks a Flow after Close so late
	// results of in-flight calls are dropped; the guest only ever sees a
	// fresh Flow from Open.
	ViewClosed View = "CLOSED"
)

// AuthMode selects which call SubmitAuth makes.
type AuthMode string

const (
	ModeLogin  AuthMode = "LOGIN"
	ModeSignup AuthMode = "SIGNUP"
)

// Event is something that moves the flow between views.
type Event string

const (
	EvAuthSucceeded    Event = "auth_succeeded"
	EvAuthFailed       Event = "auth_failed"
	EvBookingSucceeded Event = "booking_succeeded"
	EvBookingFailed    Event = "booking_failed"
	EvClose            Event = "close"
)

// Transition is a single allowed edge of the view state machine.
type Transition struct {
	From  View
	Event Event
	To    View
}

var transitionsTable = []Transition{
	// Authentication
	{From: ViewAuth, Event: EvAuthSucceeded, To: ViewForm},
	{From: ViewAuth, Event: EvAuthFailed, To: ViewAuth},

	// Booking
	{From: ViewForm, Event: EvBookingSucceeded, To: ViewSuccess},
	{From: ViewForm, Event: EvBookingFailed, To: ViewForm},

	// Close discards the flow from anywhere.
	{From: ViewAuth, Event: EvClose, To: ViewClosed},
	{From: ViewForm, Event: EvClose, To: ViewClosed},
	{From: ViewSuccess, Event: EvClose, To: ViewClosed},
}

// TransitionFor returns the allowed transition for a view and event.
func TransitionFor(from View, ev Event) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}
