package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/lock"
	"rentshare-backend/internal/payment"
	"rentshare-backend/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []BookingChange
}

func (n *recordingNotifier) BookingChanged(_ context.Context, change BookingChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

func (n *recordingNotifier) statuses() []domain.BookingStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.BookingStatus
	for _, c := range n.changes {
		out = append(out, c.Booking.Status)
	}
	return out
}

type stubProvider struct {
	charge func(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error)
	calls  int
}

func (p *stubProvider) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	p.calls++
	return p.charge(ctx, req)
}

func approvingProvider() *stubProvider {
	return &stubProvider{charge: func(context.Context, payment.ChargeRequest) (*payment.ChargeResult, error) {
		return &payment.ChargeResult{TransactionID: "txn_test", ProviderStatus: "approved"}, nil
	}}
}

type fixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	provider *stubProvider
	locker   *lock.LocalLocker
	bookings *bookingService
	items    *itemService
	reviews  *reviewService

	owner    domain.Actor
	renter   domain.Actor
	stranger domain.Actor
	item     *domain.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store:    memory.NewStore(),
		notifier: &recordingNotifier{},
		provider: approvingProvider(),
		locker:   lock.NewLocalLocker(),
	}

	f.bookings = NewBookingService(f.store, f.provider, f.locker, f.notifier, BookingConfig{
		Currency:          "USD",
		PaymentTimeout:    time.Second,
		StaleRequestGrace: 24 * time.Hour,
	}).(*bookingService)
	f.bookings.now = func() time.Time { return fixedNow }
	f.items = NewItemService(f.store).(*itemService)
	f.items.now = func() time.Time { return fixedNow }
	f.reviews = NewReviewService(f.store).(*reviewService)
	f.reviews.now = func() time.Time { return fixedNow }

	users := f.store.Repos().Users
	mk := func(name string, role domain.Role) domain.Actor {
		u := &domain.User{Name: name, Email: name + "@example.com", Role: role}
		require.NoError(t, users.Create(ctx, u))
		return domain.Actor{ID: u.ID, Role: role}
	}
	f.owner = mk("olivia", domain.RoleOwner)
	f.renter = mk("ravi", domain.RoleRenter)
	f.stranger = mk("sam", domain.RoleRenter)

	item, err := f.items.CreateItem(ctx, f.owner, &domain.Item{
		Title:            "Cargo bike",
		Location:         "Lisbon",
		Category:         domain.ItemCategoryVehicles,
		PricePerDayCents: 2500,
	})
	require.NoError(t, err)
	f.item = item
	return f
}

func (f *fixture) book(t *testing.T, renter domain.Actor, start, end time.Time) *domain.Booking {
	t.Helper()
	b, err := f.bookings.CreateBooking(context.Background(), renter, CreateBookingRequest{
		ItemID:    f.item.ID,
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) move(t *testing.T, actor domain.Actor, id int32, to domain.BookingStatus) *domain.Booking {
	t.Helper()
	b, err := f.bookings.RequestTransition(context.Background(), actor, id, to, domain.TransitionPayload{})
	require.NoError(t, err)
	return b
}

func (f *fixture) itemAvailable(t *testing.T) bool {
	t.Helper()
	it, err := f.store.Repos().Items.GetByID(context.Background(), f.item.ID)
	require.NoError(t, err)
	return it.Available
}
