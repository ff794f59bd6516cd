package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentshare-backend/internal/apperr"
	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItem(t *testing.T, s *Store) *domain.Item {
	t.Helper()
	ctx := context.Background()
	owner := &domain.User{Name: "Olive", Email: "olive@example.com", Role: domain.RoleOwner}
	require.NoError(t, s.Repos().Users.Create(ctx, owner))
	item := &domain.Item{OwnerID: owner.ID, Title: "Kayak", Location: "Austin", PricePerDayCents: 2500, Available: true, Category: domain.ItemCategoryEquipment}
	require.NoError(t, s.Repos().Items.Create(ctx, item))
	return item
}

func TestStore_WithTxRollsBack(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	item := seedItem(t, s)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(repos repository.Repos) error {
		if err := repos.Items.SetAvailability(ctx, item.ID, false); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Repos().Items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Available)
}

func TestStore_WithTxCommits(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	item := seedItem(t, s)

	err := s.WithTx(ctx, func(repos repository.Repos) error {
		b := &domain.Booking{ItemID: item.ID, RenterID: 99, StartDate: time.Now(), EndDate: time.Now().Add(time.Hour), Status: domain.BookingStatusPending}
		if err := repos.Bookings.Create(ctx, b); err != nil {
			return err
		}
		return repos.Items.SetAvailability(ctx, item.ID, false)
	})
	require.NoError(t, err)

	got, _ := s.Repos().Items.GetByID(ctx, item.ID)
	assert.False(t, got.Available)
	bookings, err := s.Repos().Bookings.List(ctx, domain.BookingFilter{OwnerID: item.OwnerID})
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestBookingRepository_FindOverlapping(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	item := seedItem(t, s)
	d := func(day int) time.Time { return time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Repos().Bookings.Create(ctx, &domain.Booking{ItemID: item.ID, RenterID: 5, StartDate: d(1), EndDate: d(5), Status: domain.BookingStatusConfirmed}))
	require.NoError(t, s.Repos().Bookings.Create(ctx, &domain.Booking{ItemID: item.ID, RenterID: 5, StartDate: d(10), EndDate: d(12), Status: domain.BookingStatusCancelled}))

	conflict, err := s.Repos().Bookings.FindOverlapping(ctx, item.ID, d(4), d(8))
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, d(1), conflict.StartDate)

	conflict, err = s.Repos().Bookings.FindOverlapping(ctx, item.ID, d(6), d(11))
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestBookingRepository_ReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	item := seedItem(t, s)

	b := &domain.Booking{ItemID: item.ID, RenterID: 5, StartDate: time.Now(), EndDate: time.Now().Add(time.Hour), Status: domain.BookingStatusPending}
	require.NoError(t, s.Repos().Bookings.Create(ctx, b))

	got, err := s.Repos().Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	got.Status = domain.BookingStatusPaid

	again, _ := s.Repos().Bookings.GetByID(ctx, b.ID)
	assert.Equal(t, domain.BookingStatusPending, again.Status)
}

func TestItemRepository_ListAndDelete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	item := seedItem(t, s)
	require.NoError(t, s.Repos().Items.Create(ctx, &domain.Item{OwnerID: item.OwnerID, Title: "Ladder", Location: "Dallas", PricePerDayCents: 900, Category: domain.ItemCategoryTools}))

	items, total, err := s.Repos().Items.List(ctx, domain.ItemFilter{Query: "kay"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), total)
	assert.Equal(t, "Kayak", items[0].Title)

	items, total, err = s.Repos().Items.List(ctx, domain.ItemFilter{AvailableOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int32(1), total)
	assert.Len(t, items, 1)

	require.NoError(t, s.Repos().Bookings.Create(ctx, &domain.Booking{ItemID: item.ID, RenterID: 5, StartDate: time.Now(), EndDate: time.Now().Add(time.Hour), Status: domain.BookingStatusPaid}))
	require.NoError(t, s.Repos().Items.Delete(ctx, item.ID))

	_, err = s.Repos().Items.GetByID(ctx, item.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	bookings, _ := s.Repos().Bookings.List(ctx, domain.BookingFilter{ItemID: item.ID})
	assert.Empty(t, bookings)
}

func TestReviewRepository_Uniqueness(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Repos().Reviews.Create(ctx, &domain.Review{ReviewerID: 1, RevieweeID: 2, ItemID: 3, Rating: 5}))
	err := s.Repos().Reviews.Create(ctx, &domain.Review{ReviewerID: 1, RevieweeID: 2, ItemID: 3, Rating: 4})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	exists, err := s.Repos().Reviews.ExistsForItem(ctx, 1, 3)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.Repos().Reviews.ExistsForReviewee(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, exists)

	ratings, _ := s.Repos().Reviews.RatingsForUser(ctx, 2)
	assert.Equal(t, []int32{5}, ratings)
}
