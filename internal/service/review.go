package service

import (
	"context"
	"strings"
	"time"

	"rentshare-backend/internal/apperr"
	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository"
)

type reviewService struct {
	store repository.Store
	now   func() time.Time
}

func NewReviewService(store repository.Store) ReviewService {
	return &reviewService{store: store, now: time.Now}
}

func (s *reviewService) CreateReview(ctx context.Context, actor domain.Actor, req CreateReviewRequest) (*domain.Review, error) {
	logger.EnterMethod("reviewService.CreateReview", "reviewerID", actor.ID, "itemID", req.ItemID, "revieweeID", req.RevieweeID)

	if (req.ItemID == 0) == (req.RevieweeID == 0) {
		return nil, apperr.Validation("exactly one of item_id and reviewee_id must be set")
	}
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		return nil, apperr.Validation("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}

	repos := s.store.Repos()
	review := &domain.Review{
		ReviewerID: actor.ID,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
		CreatedOn:  s.now(),
	}

	var err error
	if req.ItemID != 0 {
		err = s.checkItemReview(ctx, repos, actor, req.ItemID, review)
	} else {
		err = s.checkRenterReview(ctx, repos, actor, req.RevieweeID, review)
	}
	if err == nil {
		err = repos.Reviews.Create(ctx, review)
	}
	if err != nil {
		logger.ExitMethodWithError("reviewService.CreateReview", err, "reviewerID", actor.ID)
		return nil, err
	}

	if review.ItemID != 0 {
		s.refreshItemRating(ctx, repos, review.ItemID)
	}
	s.refreshUserRating(ctx, repos, review.RevieweeID)

	logger.ExitMethod("reviewService.CreateReview", "reviewID", review.ID)
	return review, nil
}

// checkItemReview covers a renter reviewing an item they booked. The item's
// owner becomes the reviewee.
func (s *reviewService) checkItemReview(ctx context.Context, repos repository.Repos, actor domain.Actor, itemID int32, review *domain.Review) error {
	if actor.Role != domain.RoleRenter {
		return apperr.Forbidden("only renters can review items")
	}
	item, err := repos.Items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	booked, err := repos.Bookings.List(ctx, domain.BookingFilter{
		RenterID: actor.ID,
		ItemID:   itemID,
		Statuses: reviewableStatuses,
	})
	if err != nil {
		return err
	}
	if len(booked) == 0 {
		return apperr.Forbidden("you can only review items you have booked")
	}
	exists, err := repos.Reviews.ExistsForItem(ctx, actor.ID, itemID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict("you have already reviewed this item")
	}

	review.ItemID = item.ID
	review.RevieweeID = item.OwnerID
	return nil
}

// checkRenterReview covers an owner reviewing someone who booked one of
// their items.
func (s *reviewService) checkRenterReview(ctx context.Context, repos repository.Repos, actor domain.Actor, revieweeID int32, review *domain.Review) error {
	if actor.Role != domain.RoleOwner {
		return apperr.Forbidden("only owners can review renters")
	}
	if revieweeID == actor.ID {
		return apperr.Validation("you cannot review yourself")
	}
	if _, err := repos.Users.GetByID(ctx, revieweeID); err != nil {
		return err
	}
	booked, err := repos.Bookings.List(ctx, domain.BookingFilter{
		RenterID: revieweeID,
		OwnerID:  actor.ID,
		Statuses: reviewableStatuses,
	})
	if err != nil {
		return err
	}
	if len(booked) == 0 {
		return apperr.Forbidden("you can only review renters who booked your items")
	}
	exists, err := repos.Reviews.ExistsForReviewee(ctx, actor.ID, revieweeID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict("you have already reviewed this renter")
	}

	review.RevieweeID = revieweeID
	return nil
}

func (s *reviewService) ListReviews(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	return s.store.Repos().Reviews.List(ctx, filter)
}

// RecomputeAllRatings rewrites every item and user aggregate from the
// stored reviews. It returns the number of aggregates written.
func (s *reviewService) RecomputeAllRatings(ctx context.Context) (int, error) {
	logger.EnterMethod("reviewService.RecomputeAllRatings")
	repos := s.store.Repos()

	itemIDs, err := repos.Items.ListIDs(ctx)
	if err != nil {
		logger.ExitMethodWithError("reviewService.RecomputeAllRatings", err)
		return 0, err
	}
	userIDs, err := repos.Users.ListIDs(ctx)
	if err != nil {
		logger.ExitMethodWithError("reviewService.RecomputeAllRatings", err)
		return 0, err
	}

	updated := 0
	for _, id := range itemIDs {
		if s.refreshItemRating(ctx, repos, id) {
			updated++
		}
	}
	for _, id := range userIDs {
		if s.refreshUserRating(ctx, repos, id) {
			updated++
		}
	}

	logger.ExitMethod("reviewService.RecomputeAllRatings", "items", len(itemIDs), "users", len(userIDs), "updated", updated)
	return updated, nil
}

func (s *reviewService) refreshItemRating(ctx context.Context, repos repository.Repos, itemID int32) bool {
	ratings, err := repos.Reviews.RatingsForItem(ctx, itemID)
	if err == nil {
		err = repos.Items.UpdateRating(ctx, itemID, domain.SummarizeRatings(ratings))
	}
	if err != nil {
		logger.WarnContext(ctx, "Failed to refresh item rating", "itemID", itemID, "error", err)
		return false
	}
	return true
}

func (s *reviewService) refreshUserRating(ctx context.Context, repos repository.Repos, userID int32) bool {
	ratings, err := repos.Reviews.RatingsForUser(ctx, userID)
	if err == nil {
		err = repos.Users.UpdateRating(ctx, userID, domain.SummarizeRatings(ratings))
	}
	if err != nil {
		logger.WarnContext(ctx, "Failed to refresh user rating", "userID", userID, "error", err)
		return false
	}
	return true
}
