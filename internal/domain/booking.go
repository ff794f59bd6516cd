package domain

import (
	"strings"
	"time"

	"rentshare-backend/internal/apperr"
)

type BookingStatus string

const (
	BookingStatusPending        BookingStatus = "pending"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusPendingPayment BookingStatus = "pending payment"
	BookingStatusPaid           BookingStatus = "paid"
	BookingStatusCancelled      BookingStatus = "cancelled"
)

// ActiveBookingStatuses are the statuses that hold an item's dates.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusPendingPayment,
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusPendingPayment,
		BookingStatusPaid, BookingStatusCancelled:
		return status, nil
	}
	return "", apperr.Validation("unknown booking status %q", s)
}

// IsActive reports whether a booking in this status blocks its dates.
func (s BookingStatus) IsActive() bool {
	for _, a := range ActiveBookingStatuses {
		if s == a {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusPaid || s == BookingStatusCancelled
}

type Booking struct {
	ID                 int32         `json:"id"`
	ItemID             int32         `json:"item_id"`
	RenterID           int32         `json:"renter_id"`
	StartDate          time.Time     `json:"start_date"`
	EndDate            time.Time     `json:"end_date"`
	TotalPriceCents    int64         `json:"total_price_cents"`
	Status             BookingStatus `json:"status"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CancelledBy        *int32        `json:"cancelled_by,omitempty"`
	CreatedOn          time.Time     `json:"created_on"`
	UpdatedOn          time.Time     `json:"updated_on"`
}

// Overlaps uses closed intervals: touching endpoints overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return !b.StartDate.After(end) && !b.EndDate.Before(start)
}

// FindConflict returns the first active booking whose dates intersect
// [start, end], or nil.
func FindConflict(existing []Booking, start, end time.Time) *Booking {
	for i := range existing {
		if existing[i].Status.IsActive() && existing[i].Overlaps(start, end) {
			return &existing[i]
		}
	}
	return nil
}

// ValidateBookingWindow checks a requested range against the request time.
func ValidateBookingWindow(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperr.Validation("start date and end date are required")
	}
	if !start.After(now) {
		return apperr.Validation("start date must be in the future")
	}
	if !end.After(start) {
		return apperr.Validation("end date must be after start date")
	}
	return nil
}

// BookingFilter narrows booking listings. Zero values are ignored.
type BookingFilter struct {
	RenterID     int32
	OwnerID      int32
	ItemID       int32
	Statuses     []BookingStatus
	StartsBefore time.Time
}

// Matches applies the filter to a booking whose item is owned by itemOwnerID.
func (f BookingFilter) Matches(b *Booking, itemOwnerID int32) bool {
	if f.RenterID != 0 && b.RenterID != f.RenterID {
		return false
	}
	if f.OwnerID != 0 && itemOwnerID != f.OwnerID {
		return false
	}
	if f.ItemID != 0 && b.ItemID != f.ItemID {
		return false
	}
	if !f.StartsBefore.IsZero() && !b.StartDate.Before(f.StartsBefore) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

type Party string

const (
	PartyOwner  Party = "owner"
	PartyRenter Party = "renter"
)

// PartiesOf resolves which sides of the booking the actor stands on. The
// account role has to agree with the relationship.
func PartiesOf(b *Booking, item *Item, actor Actor) []Party {
	var parties []Party
	if actor.ID == item.OwnerID && actor.Role == RoleOwner {
		parties = append(parties, PartyOwner)
	}
	if actor.ID == b.RenterID && actor.Role == RoleRenter {
		parties = append(parties, PartyRenter)
	}
	return parties
}

// TransitionPayload carries the fields some transitions require.
type TransitionPayload struct {
	CancellationReason string `json:"cancellation_reason,omitempty"`
	// PaymentReference is only set by the payment flow after the provider
	// accepted the charge.
	PaymentReference string `json:"-"`
}

type statusPair struct {
	from BookingStatus
	to   BookingStatus
}

type transitionRule struct {
	parties []Party
	check   func(b *Booking, item *Item, p TransitionPayload) error
	// apply mutates the booking and returns the new item availability, if any.
	apply func(b *Booking, actor Actor, p TransitionPayload) *bool
}

func (r transitionRule) allows(parties []Party) bool {
	for _, want := range r.parties {
		for _, got := range parties {
			if want == got {
				return true
			}
		}
	}
	return false
}

func availability(v bool) *bool { return &v }

var (
	ownerOnly     = []Party{PartyOwner}
	renterOnly    = []Party{PartyRenter}
	ownerOrRenter = []Party{PartyOwner, PartyRenter}
)

func requireReason(_ *Booking, _ *Item, p TransitionPayload) error {
	if strings.TrimSpace(p.CancellationReason) == "" {
		return apperr.Validation("cancellation reason is required")
	}
	return nil
}

func cancelKeepingAvailability(b *Booking, actor Actor, p TransitionPayload) *bool {
	setCancelled(b, actor, p)
	return nil
}

func cancelReleasingItem(b *Booking, actor Actor, p TransitionPayload) *bool {
	setCancelled(b, actor, p)
	return availability(true)
}

func setCancelled(b *Booking, actor Actor, p TransitionPayload) {
	by := actor.ID
	b.CancelledBy = &by
	b.CancellationReason = strings.TrimSpace(p.CancellationReason)
}

// transitionTable is the single source of truth for the booking lifecycle.
var transitionTable = map[statusPair]transitionRule{
	{BookingStatusPending, BookingStatusConfirmed}: {
		parties: ownerOnly,
		check: func(_ *Booking, item *Item, _ TransitionPayload) error {
			if !item.Available {
				return apperr.Validation("item is not available")
			}
			return nil
		},
		apply: func(*Booking, Actor, TransitionPayload) *bool { return availability(false) },
	},
	{BookingStatusConfirmed, BookingStatusPendingPayment}: {
		parties: ownerOnly,
	},
	{BookingStatusPendingPayment, BookingStatusConfirmed}: {
		parties: ownerOrRenter,
	},
	{BookingStatusPendingPayment, BookingStatusPaid}: {
		parties: renterOnly,
		check: func(_ *Booking, _ *Item, p TransitionPayload) error {
			if p.PaymentReference == "" {
				return apperr.Validation("bookings are marked paid through the payment endpoint")
			}
			return nil
		},
	},
	{BookingStatusPending, BookingStatusCancelled}: {
		parties: ownerOrRenter,
		check:   requireReason,
		apply:   cancelKeepingAvailability,
	},
	{BookingStatusConfirmed, BookingStatusCancelled}: {
		parties: ownerOrRenter,
		check:   requireReason,
		apply:   cancelReleasingItem,
	},
	{BookingStatusPendingPayment, BookingStatusCancelled}: {
		parties: ownerOrRenter,
		check:   requireReason,
		apply:   cancelReleasingItem,
	},
}

// TransitionOutcome is the result of a planned transition. ItemAvailable is
// nil when the item's availability is untouched.
type TransitionOutcome struct {
	From          BookingStatus
	Booking       Booking
	ItemAvailable *bool
}

// AuthorizeTransition checks the pair and the actor without payload or
// precondition checks.
func AuthorizeTransition(b *Booking, item *Item, actor Actor, to BookingStatus) error {
	_, err := authorize(b, item, actor, to)
	return err
}

func authorize(b *Booking, item *Item, actor Actor, to BookingStatus) (transitionRule, error) {
	rule, ok := transitionTable[statusPair{b.Status, to}]
	if !ok {
		return transitionRule{}, apperr.InvalidTransition("cannot change status from %s to %s", b.Status, to)
	}
	if !rule.allows(PartiesOf(b, item, actor)) {
		return transitionRule{}, apperr.Forbidden("not allowed to change status from %s to %s", b.Status, to)
	}
	return rule, nil
}

// PlanTransition validates a requested status change and returns the
// updated booking together with its item side effect. The inputs are not
// modified.
func PlanTransition(b Booking, item Item, actor Actor, to BookingStatus, p TransitionPayload, now time.Time) (TransitionOutcome, error) {
	rule, err := authorize(&b, &item, actor, to)
	if err != nil {
		return TransitionOutcome{}, err
	}
	if rule.check != nil {
		if err := rule.check(&b, &item, p); err != nil {
			return TransitionOutcome{}, err
		}
	}

	out := TransitionOutcome{From: b.Status}
	next := b
	if rule.apply != nil {
		out.ItemAvailable = rule.apply(&next, actor, p)
	}
	next.Status = to
	next.UpdatedOn = now
	out.Booking = next
	return out, nil
}

// NextStatuses lists the statuses the actor may currently move the booking to.
func NextStatuses(b *Booking, item *Item, actor Actor) []BookingStatus {
	parties := PartiesOf(b, item, actor)
	var next []BookingStatus
	for _, to := range []BookingStatus{
		BookingStatusConfirmed,
		BookingStatusPendingPayment,
		BookingStatusPaid,
		BookingStatusCancelled,
	} {
		if rule, ok := transitionTable[statusPair{b.Status, to}]; ok && rule.allows(parties) {
			next = append(next, to)
		}
	}
	return next
}
