package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/shastra-reservations/internal/model"
)

func booking(email string) CreateReservationInput {
	return CreateReservationInput{
		Email: email, Name: "Arjun", Phone: "9000000000",
		Date: "2025-12-01", Time: "19:30", Guests: "4",
	}
}

func TestCreateReservation_AppearsNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Arjun", "arjun@x.com", "9000000000")
	ctx := context.Background()

	first, replayed, err := f.reservations.Create(ctx, booking("arjun@x.com"))
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, model.StatusConfirmed, first.Status)

	f.clock.Advance(time.Minute)
	in := booking("ARJUN@x.com")
	in.Guests = model.LargeGroupGuests
	second, _, err := f.reservations.Create(ctx, in)
	require.NoError(t, err)

	list, err := f.reservations.List(ctx, "arjun@x.com")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "10+", list[0].Guests)
	assert.Equal(t, "", list[0].SpecialRequest)

	assert.ElementsMatch(t, []model.NotificationKind{
		model.KindWelcome, model.KindReservationConfirmation, model.KindReservationConfirmation,
	}, f.pendingKinds(t))
}

func TestCreateReservation_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.reservations.Create(context.Background(), booking("ghost@x.com"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReservation_MissingFields(t *testing.T) {
	f := newFixture(t)
	in := booking("arjun@x.com")
	in.Date, in.Guests = "", ""

	_, _, err := f.reservations.Create(context.Background(), in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "date", verr.Fields[0].Field)
	assert.Equal(t, "Reservation date is required", verr.Fields[0].Message)
	assert.Equal(t, "guests", verr.Fields[1].Field)
}

func TestCreateReservation_PastDatesAccepted(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Arjun", "arjun@x.com", "9000000000")
	in := booking("arjun@x.com")
	in.Date = "1999-01-01"

	_, _, err := f.reservations.Create(context.Background(), in)
	assert.NoError(t, err)
}

func TestCreateReservation_RequestTokenReplays(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Arjun", "arjun@x.com", "9000000000")
	f.signup(t, "Meera", "meera@x.com", "9111111111")
	ctx := context.Background()

	in := booking("arjun@x.com")
	in.RequestToken = "tok-1"
	first, replayed, err := f.reservations.Create(ctx, in)
	require.NoError(t, err)
	assert.False(t, replayed)

	again, replayed, err := f.reservations.Create(ctx, in)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, again.ID)

	other := booking("meera@x.com")
	other.RequestToken = "tok-1"
	_, _, err = f.reservations.Create(ctx, other)
	assert.ErrorIs(t, err, ErrIdempotencyConflict)

	list, err := f.reservations.List(ctx, "arjun@x.com")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	confirmations := 0
	for _, k := range f.pendingKinds(t) {
		if k == model.KindReservationConfirmation {
			confirmations++
		}
	}
	assert.Equal(t, 1, confirmations, "a replay must not queue a second confirmation")
}

func TestCreateReservation_RequestTokenWithChangedDetails(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Arjun", "arjun@x.com", "9000000000")
	ctx := context.Background()

	in := booking("arjun@x.com")
	in.RequestToken = "tok-1"
	_, _, err := f.reservations.Create(ctx, in)
	require.NoError(t, err)

	tests := []struct {
		name   string
		change func(*CreateReservationInput)
	}{
		{"date", func(in *CreateReservationInput) { in.Date = "2025-12-02" }},
		{"time", func(in *CreateReservationInput) { in.Time = "20:00" }},
		{"guests", func(in *CreateReservationInput) { in.Guests = "6" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := in
			tt.change(&changed)
			_, replayed, err := f.reservations.Create(ctx, changed)
			assert.ErrorIs(t, err, ErrIdempotencyConflict)
			assert.False(t, replayed)
		})
	}

	padded := in
	padded.Date = " " + in.Date + " "
	_, replayed, err := f.reservations.Create(ctx, padded)
	require.NoError(t, err)
	assert.True(t, replayed)

	list, err := f.reservations.List(ctx, "arjun@x.com")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestListReservations_CapAndEmpty(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Arjun", "arjun@x.com", "9000000000")
	ctx := context.Background()

	var last model.Reservation
	for i := 0; i < 12; i++ {
		in := booking("arjun@x.com")
		in.Time = fmt.Sprintf("%02d:00", 10+i)
		res, _, err := f.reservations.Create(ctx, in)
		require.NoError(t, err)
		last = res
		f.clock.Advance(time.Second)
	}

	list, err := f.reservations.List(ctx, "arjun@x.com")
	require.NoError(t, err)
	require.Len(t, list, 10)
	assert.Equal(t, last.ID, list[0].ID)

	empty, err := f.reservations.List(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
