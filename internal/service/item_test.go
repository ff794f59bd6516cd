package service

import (
	"context"
	"testing"

	"rentshare-backend/internal/apperr"
	"rentshare-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemService_CreateItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.True(t, f.item.Available)
	assert.Equal(t, f.owner.ID, f.item.OwnerID)

	_, err := f.items.CreateItem(ctx, f.renter, &domain.Item{Title: "Tent", Location: "Porto", PricePerDayCents: 900})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.items.CreateItem(ctx, f.owner, &domain.Item{Title: "Tent", Location: "Porto"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	tent, err := f.items.CreateItem(ctx, f.owner, &domain.Item{Title: "Tent", Location: "Porto", PricePerDayCents: 900, Available: false})
	require.NoError(t, err)
	assert.True(t, tent.Available)
	assert.Equal(t, domain.ItemCategoryOthers, tent.Category)
}

func TestItemService_UpdateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner edits fields", func(t *testing.T) {
		f := newFixture(t)
		title := "Electric cargo bike"
		price := int64(3000)
		got, err := f.items.UpdateItem(ctx, f.owner, f.item.ID, domain.ItemPatch{Title: &title, PricePerDayCents: &price})
		require.NoError(t, err)
		assert.Equal(t, title, got.Title)
		assert.Equal(t, price, got.PricePerDayCents)
	})

	t.Run("Only the owner", func(t *testing.T) {
		f := newFixture(t)
		title := "Mine now"
		_, err := f.items.UpdateItem(ctx, f.renter, f.item.ID, domain.ItemPatch{Title: &title})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("Availability locked by active bookings", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, f.renter, day(10), day(12))
		off := false
		_, err := f.items.UpdateItem(ctx, f.owner, f.item.ID, domain.ItemPatch{Available: &off})
		assert.ErrorIs(t, err, apperr.ErrValidation)

		_, err = f.bookings.RequestTransition(ctx, f.renter, b.ID, domain.BookingStatusCancelled,
			domain.TransitionPayload{CancellationReason: "sick"})
		require.NoError(t, err)

		got, err := f.items.UpdateItem(ctx, f.owner, f.item.ID, domain.ItemPatch{Available: &off})
		require.NoError(t, err)
		assert.False(t, got.Available)
	})

	t.Run("Invalid price", func(t *testing.T) {
		f := newFixture(t)
		zero := int64(0)
		_, err := f.items.UpdateItem(ctx, f.owner, f.item.ID, domain.ItemPatch{PricePerDayCents: &zero})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestItemService_DeleteItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.book(t, f.renter, day(10), day(12))

	assert.ErrorIs(t, f.items.DeleteItem(ctx, f.renter, f.item.ID), apperr.ErrForbidden)
	assert.ErrorIs(t, f.items.DeleteItem(ctx, f.owner, f.item.ID), apperr.ErrValidation)

	require.NoError(t, f.bookings.DeleteBooking(ctx, f.renter, b.ID))
	require.NoError(t, f.items.DeleteItem(ctx, f.owner, f.item.ID))

	_, err := f.items.GetItem(ctx, f.item.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestItemService_ListAndQuote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	items, total, err := f.items.ListItems(ctx, domain.ItemFilter{Category: domain.ItemCategoryVehicles})
	require.NoError(t, err)
	assert.Equal(t, int32(1), total)
	assert.Len(t, items, 1)

	_, _, err = f.items.ListItems(ctx, domain.ItemFilter{Category: "boats"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	quote, err := f.items.QuotePrice(ctx, f.item.ID, day(10), day(13))
	require.NoError(t, err)
	assert.Equal(t, int64(3), quote.Days)
	assert.Equal(t, int64(7500), quote.TotalCents)
	assert.Equal(t, "75.00", quote.Total)

	_, err = f.items.QuotePrice(ctx, f.item.ID, day(13), day(10))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
