package domain

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"rentshare-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerID  = int32(10)
	renterID = int32(20)
	otherID  = int32(30)
)

var (
	owner    = Actor{ID: ownerID, Role: RoleOwner}
	renter   = Actor{ID: renterID, Role: RoleRenter}
	stranger = Actor{ID: otherID, Role: RoleRenter}
)

func day(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func fixture(status BookingStatus) (Booking, Item) {
	b := Booking{
		ID:              1,
		ItemID:          2,
		RenterID:        renterID,
		StartDate:       day(1),
		EndDate:         day(5),
		TotalPriceCents: 40000,
		Status:          status,
	}
	item := Item{ID: 2, OwnerID: ownerID, PricePerDayCents: 10000, Available: true}
	return b, item
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus("  Pending Payment ")
	assert.NoError(t, err)
	assert.Equal(t, BookingStatusPendingPayment, s)

	_, err = ParseBookingStatus("completed")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestPlanTransition_Table(t *testing.T) {
	reason := TransitionPayload{CancellationReason: "plans changed"}
	now := day(1).Add(-48 * time.Hour)

	tests := []struct {
		name          string
		from          BookingStatus
		to            BookingStatus
		actor         Actor
		payload       TransitionPayload
		itemAvailable bool
		wantKind      apperr.Kind
		wantOK        bool
		wantAvailable *bool
	}{
		{"Owner confirms pending", BookingStatusPending, BookingStatusConfirmed, owner, TransitionPayload{}, true, 0, true, availability(false)},
		{"Renter cannot confirm pending", BookingStatusPending, BookingStatusConfirmed, renter, TransitionPayload{}, true, apperr.KindForbidden, false, nil},
		{"Confirm requires available item", BookingStatusPending, BookingStatusConfirmed, owner, TransitionPayload{}, false, apperr.KindValidation, false, nil},
		{"Owner requests payment", BookingStatusConfirmed, BookingStatusPendingPayment, owner, TransitionPayload{}, true, 0, true, nil},
		{"Renter cannot request payment", BookingStatusConfirmed, BookingStatusPendingPayment, renter, TransitionPayload{}, true, apperr.KindForbidden, false, nil},
		{"Renter reverts to confirmed", BookingStatusPendingPayment, BookingStatusConfirmed, renter, TransitionPayload{}, true, 0, true, nil},
		{"Owner reverts to confirmed", BookingStatusPendingPayment, BookingStatusConfirmed, owner, TransitionPayload{}, true, 0, true, nil},
		{"Paid needs payment reference", BookingStatusPendingPayment, BookingStatusPaid, renter, TransitionPayload{}, true, apperr.KindValidation, false, nil},
		{"Paid through payment flow", BookingStatusPendingPayment, BookingStatusPaid, renter, TransitionPayload{PaymentReference: "txn_1"}, true, 0, true, nil},
		{"Owner cannot mark paid", BookingStatusPendingPayment, BookingStatusPaid, owner, TransitionPayload{PaymentReference: "txn_1"}, true, apperr.KindForbidden, false, nil},
		{"Renter cancels pending", BookingStatusPending, BookingStatusCancelled, renter, reason, true, 0, true, nil},
		{"Owner cancels confirmed releases item", BookingStatusConfirmed, BookingStatusCancelled, owner, reason, false, 0, true, availability(true)},
		{"Renter cancels pending payment releases item", BookingStatusPendingPayment, BookingStatusCancelled, renter, reason, false, 0, true, availability(true)},
		{"Cancel requires reason", BookingStatusConfirmed, BookingStatusCancelled, renter, TransitionPayload{CancellationReason: "  "}, true, apperr.KindValidation, false, nil},
		{"Stranger cannot cancel", BookingStatusPending, BookingStatusCancelled, stranger, reason, true, apperr.KindForbidden, false, nil},
		{"Pending cannot skip to paid", BookingStatusPending, BookingStatusPaid, renter, TransitionPayload{PaymentReference: "txn_1"}, true, apperr.KindInvalidTransition, false, nil},
		{"Confirmed back to pending", BookingStatusConfirmed, BookingStatusPending, owner, TransitionPayload{}, true, apperr.KindInvalidTransition, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, item := fixture(tt.from)
			item.Available = tt.itemAvailable

			out, err := PlanTransition(b, item, tt.actor, tt.to, tt.payload, now)
			if !tt.wantOK {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.from, out.From)
			assert.Equal(t, tt.to, out.Booking.Status)
			assert.Equal(t, now, out.Booking.UpdatedOn)
			assert.Equal(t, tt.wantAvailable, out.ItemAvailable)
		})
	}
}

func TestPlanTransition_TerminalStates(t *testing.T) {
	reason := TransitionPayload{CancellationReason: "x", PaymentReference: "txn"}
	for _, from := range []BookingStatus{BookingStatusPaid, BookingStatusCancelled} {
		for _, to := range []BookingStatus{BookingStatusPending, BookingStatusConfirmed, BookingStatusPendingPayment, BookingStatusPaid, BookingStatusCancelled} {
			for _, actor := range []Actor{owner, renter} {
				b, item := fixture(from)
				_, err := PlanTransition(b, item, actor, to, reason, time.Now())
				assert.True(t, errors.Is(err, apperr.ErrInvalidTransition), "%s -> %s by %s", from, to, actor.Role)
			}
		}
	}
}

func TestPlanTransition_ErrorPrecedence(t *testing.T) {
	t.Run("Invalid pair wins over wrong actor", func(t *testing.T) {
		b, item := fixture(BookingStatusCancelled)
		_, err := PlanTransition(b, item, stranger, BookingStatusConfirmed, TransitionPayload{}, time.Now())
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	})

	t.Run("Wrong actor wins over missing reason", func(t *testing.T) {
		b, item := fixture(BookingStatusPending)
		_, err := PlanTransition(b, item, stranger, BookingStatusCancelled, TransitionPayload{}, time.Now())
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})
}

func TestPlanTransition_RoleMustMatchRelationship(t *testing.T) {
	// An owner-role account that happens to be the renter of record is not
	// the renter party.
	b, item := fixture(BookingStatusPendingPayment)
	_, err := PlanTransition(b, item, Actor{ID: renterID, Role: RoleOwner}, BookingStatusPaid, TransitionPayload{PaymentReference: "txn"}, time.Now())
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestPlanTransition_Cancellation(t *testing.T) {
	b, item := fixture(BookingStatusConfirmed)
	out, err := PlanTransition(b, item, owner, BookingStatusCancelled, TransitionPayload{CancellationReason: "  broken  "}, time.Now())
	require.NoError(t, err)

	require.NotNil(t, out.Booking.CancelledBy)
	assert.Equal(t, ownerID, *out.Booking.CancelledBy)
	assert.Equal(t, "broken", out.Booking.CancellationReason)

	// inputs are untouched
	assert.Equal(t, BookingStatusConfirmed, b.Status)
	assert.Nil(t, b.CancelledBy)
}

func TestPlanTransition_PreservesPrice(t *testing.T) {
	b, item := fixture(BookingStatusPending)
	item.PricePerDayCents = 99999
	out, err := PlanTransition(b, item, owner, BookingStatusConfirmed, TransitionPayload{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(40000), out.Booking.TotalPriceCents)
}

func TestPlanTransition_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	actors := []Actor{owner, renter, stranger}
	targets := []BookingStatus{BookingStatusPending, BookingStatusConfirmed, BookingStatusPendingPayment, BookingStatusPaid, BookingStatusCancelled}

	for run := 0; run < 200; run++ {
		b, item := fixture(BookingStatusPending)
		for step := 0; step < 12; step++ {
			actor := actors[rng.Intn(len(actors))]
			to := targets[rng.Intn(len(targets))]
			var p TransitionPayload
			if rng.Intn(2) == 0 {
				p.CancellationReason = "no longer needed"
			}
			if rng.Intn(2) == 0 {
				p.PaymentReference = "txn"
			}

			out, err := PlanTransition(b, item, actor, to, p, time.Now())
			if err != nil {
				continue
			}
			if out.ItemAvailable != nil {
				item.Available = *out.ItemAvailable
			}
			b = out.Booking

			assert.Equal(t, b.Status == BookingStatusCancelled, b.CancellationReason != "", "run %d step %d", run, step)
			assert.Equal(t, b.Status == BookingStatusCancelled, b.CancelledBy != nil, "run %d step %d", run, step)
			switch {
			case out.From == BookingStatusPending && b.Status == BookingStatusConfirmed:
				assert.False(t, item.Available)
			case (out.From == BookingStatusConfirmed || out.From == BookingStatusPendingPayment) && b.Status == BookingStatusCancelled:
				assert.True(t, item.Available)
			}
		}
	}
}

func TestNextStatuses(t *testing.T) {
	b, item := fixture(BookingStatusPending)
	assert.Equal(t, []BookingStatus{BookingStatusConfirmed, BookingStatusCancelled}, NextStatuses(&b, &item, owner))
	assert.Equal(t, []BookingStatus{BookingStatusCancelled}, NextStatuses(&b, &item, renter))
	assert.Empty(t, NextStatuses(&b, &item, stranger))

	b.Status = BookingStatusPendingPayment
	assert.Equal(t, []BookingStatus{BookingStatusConfirmed, BookingStatusPaid, BookingStatusCancelled}, NextStatuses(&b, &item, renter))

	b.Status = BookingStatusPaid
	assert.Empty(t, NextStatuses(&b, &item, renter))
}

func TestFindConflict(t *testing.T) {
	existing := []Booking{
		{ID: 1, StartDate: day(1), EndDate: day(5), Status: BookingStatusConfirmed},
		{ID: 2, StartDate: day(10), EndDate: day(12), Status: BookingStatusCancelled},
		{ID: 3, StartDate: day(20), EndDate: day(22), Status: BookingStatusPaid},
	}

	t.Run("Overlapping range conflicts", func(t *testing.T) {
		c := FindConflict(existing, day(4), day(8))
		require.NotNil(t, c)
		assert.Equal(t, int32(1), c.ID)
	})

	t.Run("Disjoint range is free", func(t *testing.T) {
		assert.Nil(t, FindConflict(existing, day(6), day(9)))
	})

	t.Run("Touching endpoint conflicts", func(t *testing.T) {
		assert.NotNil(t, FindConflict(existing, day(5), day(7)))
	})

	t.Run("Cancelled and paid bookings do not block", func(t *testing.T) {
		assert.Nil(t, FindConflict(existing, day(10), day(12)))
		assert.Nil(t, FindConflict(existing, day(21), day(23)))
	})
}

func TestValidateBookingWindow(t *testing.T) {
	now := day(1)

	assert.NoError(t, ValidateBookingWindow(day(2), day(3), now))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(ValidateBookingWindow(time.Time{}, day(3), now)))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(ValidateBookingWindow(now, day(3), now)))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(ValidateBookingWindow(day(3), day(3), now)))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(ValidateBookingWindow(day(4), day(3), now)))
}
