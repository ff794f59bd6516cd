package service

import (
	"context"
	"testing"

	"rentshare-backend/internal/apperr"
	"rentshare-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewService_ItemReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Pending bookings are not enough.
	b := f.book(t, f.renter, day(10), day(12))
	_, err := f.reviews.CreateReview(ctx, f.renter, CreateReviewRequest{ItemID: f.item.ID, Rating: 5})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	f.move(t, f.owner, b.ID, domain.BookingStatusConfirmed)
	review, err := f.reviews.CreateReview(ctx, f.renter, CreateReviewRequest{ItemID: f.item.ID, Rating: 4, Comment: " solid "})
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, review.RevieweeID)
	assert.Equal(t, "solid", review.Comment)

	_, err = f.reviews.CreateReview(ctx, f.renter, CreateReviewRequest{ItemID: f.item.ID, Rating: 2})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	item, err := f.items.GetItem(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, item.AverageRating)
	assert.Equal(t, int32(1), item.ReviewCount)

	owner, err := f.store.Repos().Users.GetByID(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, owner.AverageRating)
}

func TestReviewService_RenterReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.book(t, f.renter, day(10), day(12))
	f.move(t, f.owner, b.ID, domain.BookingStatusConfirmed)

	_, err := f.reviews.CreateReview(ctx, f.owner, CreateReviewRequest{RevieweeID: f.stranger.ID, Rating: 3})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	review, err := f.reviews.CreateReview(ctx, f.owner, CreateReviewRequest{RevieweeID: f.renter.ID, Rating: 5})
	require.NoError(t, err)
	assert.Zero(t, review.ItemID)

	_, err = f.reviews.CreateReview(ctx, f.owner, CreateReviewRequest{RevieweeID: f.renter.ID, Rating: 1})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	reviews, err := f.reviews.ListReviews(ctx, domain.ReviewFilter{RevieweeID: f.renter.ID})
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestReviewService_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := []struct {
		name string
		req  CreateReviewRequest
	}{
		{"Neither target", CreateReviewRequest{Rating: 3}},
		{"Both targets", CreateReviewRequest{ItemID: f.item.ID, RevieweeID: f.owner.ID, Rating: 3}},
		{"Rating too low", CreateReviewRequest{ItemID: f.item.ID, Rating: 0}},
		{"Rating too high", CreateReviewRequest{ItemID: f.item.ID, Rating: 6}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.reviews.CreateReview(ctx, f.renter, tc.req)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestReviewService_RecomputeAllRatings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.book(t, f.renter, day(10), day(12))
	f.move(t, f.owner, b.ID, domain.BookingStatusConfirmed)
	_, err := f.reviews.CreateReview(ctx, f.renter, CreateReviewRequest{ItemID: f.item.ID, Rating: 3})
	require.NoError(t, err)

	require.NoError(t, f.store.Repos().Items.UpdateRating(ctx, f.item.ID, domain.RatingSummary{}))

	n, err := f.reviews.RecomputeAllRatings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n) // one item and three users

	item, err := f.items.GetItem(ctx, f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, item.AverageRating)
	assert.Equal(t, int32(1), item.ReviewCount)
}
