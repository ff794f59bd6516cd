package service

import (
	"context"
	"time"

	"rentshare-backend/internal/apperr"
	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository"
	"rentshare-backend/internal/utils"
)

type itemService struct {
	store repository.Store
	now   func() time.Time
}

func NewItemService(store repository.Store) ItemService {
	return &itemService{store: store, now: time.Now}
}

func (s *itemService) CreateItem(ctx context.Context, actor domain.Actor, item *domain.Item) (*domain.Item, error) {
	logger.EnterMethod("itemService.CreateItem", "ownerID", actor.ID)
	if actor.Role != domain.RoleOwner {
		return nil, apperr.Forbidden("only owners can list items")
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	item.ID = 0
	item.OwnerID = actor.ID
	item.Available = true
	item.AverageRating = 0
	item.ReviewCount = 0
	item.CreatedOn = s.now()
	item.UpdatedOn = item.CreatedOn
	if err := s.store.Repos().Items.Create(ctx, item); err != nil {
		logger.ExitMethodWithError("itemService.CreateItem", err, "ownerID", actor.ID)
		return nil, err
	}
	logger.ExitMethod("itemService.CreateItem", "itemID", item.ID)
	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, id int32) (*domain.Item, error) {
	return s.store.Repos().Items.GetByID(ctx, id)
}

func (s *itemService) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, int32, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, 0, apperr.Validation("unknown category %q", filter.Category)
	}
	filter.Normalize()
	return s.store.Repos().Items.List(ctx, filter)
}

func (s *itemService) UpdateItem(ctx context.Context, actor domain.Actor, id int32, patch domain.ItemPatch) (*domain.Item, error) {
	logger.EnterMethod("itemService.UpdateItem", "itemID", id, "actorID", actor.ID)

	var updated *domain.Item
	err := s.store.WithTx(ctx, func(repos repository.Repos) error {
		item, err := repos.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item.OwnerID != actor.ID || actor.Role != domain.RoleOwner {
			return apperr.Forbidden("only the owner can edit this item")
		}

		if patch.Available != nil && *patch.Available != item.Available {
			active, err := hasActiveBookings(ctx, repos, id)
			if err != nil {
				return err
			}
			if active {
				return apperr.Validation("availability cannot change while the item has active bookings")
			}
		}

		item.Apply(patch)
		if err := item.Validate(); err != nil {
			return err
		}
		item.UpdatedOn = s.now()
		if err := repos.Items.Update(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("itemService.UpdateItem", err, "itemID", id)
		return nil, err
	}
	logger.ExitMethod("itemService.UpdateItem", "itemID", id)
	return updated, nil
}

func (s *itemService) DeleteItem(ctx context.Context, actor domain.Actor, id int32) error {
	return s.store.WithTx(ctx, func(repos repository.Repos) error {
		item, err := repos.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item.OwnerID != actor.ID || actor.Role != domain.RoleOwner {
			return apperr.Forbidden("only the owner can delete this item")
		}
		active, err := hasActiveBookings(ctx, repos, id)
		if err != nil {
			return err
		}
		if active {
			return apperr.Validation("item has active bookings")
		}
		return repos.Items.Delete(ctx, id)
	})
}

func (s *itemService) QuotePrice(ctx context.Context, itemID int32, start, end time.Time) (*utils.PriceBreakdown, error) {
	item, err := s.store.Repos().Items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, apperr.Validation("end date must be after start date")
	}
	quote, err := utils.Quote(item.PricePerDayCents, start, end)
	if err != nil {
		return nil, apperr.Validation("cannot price booking: %v", err)
	}
	return &quote, nil
}

func hasActiveBookings(ctx context.Context, repos repository.Repos, itemID int32) (bool, error) {
	active, err := repos.Bookings.List(ctx, domain.BookingFilter{
		ItemID:   itemID,
		Statuses: domain.ActiveBookingStatuses,
	})
	if err != nil {
		return false, err
	}
	return len(active) > 0, nil
}
