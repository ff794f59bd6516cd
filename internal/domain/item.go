package domain

import (
	"strings"
	"time"

	"rentshare-backend/internal/apperr"
)

type ItemCategory string

const (
	ItemCategoryApartment ItemCategory = "apartment"
	ItemCategoryEquipment ItemCategory = "equipment"
	ItemCategoryFurniture ItemCategory = "furniture"
	ItemCategoryVehicles  ItemCategory = "vehicles"
	ItemCategorySpace     ItemCategory = "space"
	ItemCategoryTools     ItemCategory = "tools"
	ItemCategoryOthers    ItemCategory = "others"
)

var itemCategories = map[ItemCategory]bool{
	ItemCategoryApartment: true,
	ItemCategoryEquipment: true,
	ItemCategoryFurniture: true,
	ItemCategoryVehicles:  true,
	ItemCategorySpace:     true,
	ItemCategoryTools:     true,
	ItemCategoryOthers:    true,
}

func (c ItemCategory) IsValid() bool { return itemCategories[c] }

type Item struct {
	ID               int32        `json:"id"`
	OwnerID          int32        `json:"owner_id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	PricePerDayCents int64        `json:"price_per_day_cents"`
	Available        bool         `json:"available"`
	ImageURL         string       `json:"image_url"`
	Category         ItemCategory `json:"category"`
	Location         string       `json:"location"`
	AverageRating    float64      `json:"average_rating"`
	ReviewCount      int32        `json:"review_count"`
	CreatedOn        time.Time    `json:"created_on"`
	UpdatedOn        time.Time    `json:"updated_on"`
}

// Validate checks the owner-editable fields.
func (i *Item) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return apperr.Validation("title is required")
	}
	if strings.TrimSpace(i.Location) == "" {
		return apperr.Validation("location is required")
	}
	if i.PricePerDayCents <= 0 {
		return apperr.Validation("price per day must be positive")
	}
	if i.Category == "" {
		i.Category = ItemCategoryOthers
	}
	if !i.Category.IsValid() {
		return apperr.Validation("unknown category %q", i.Category)
	}
	return nil
}

// ItemPatch is a partial owner edit. Nil fields are left untouched.
type ItemPatch struct {
	Title            *string       `json:"title,omitempty"`
	Description      *string       `json:"description,omitempty"`
	PricePerDayCents *int64        `json:"price_per_day_cents,omitempty"`
	ImageURL         *string       `json:"image_url,omitempty"`
	Category         *ItemCategory `json:"category,omitempty"`
	Location         *string       `json:"location,omitempty"`
	Available        *bool         `json:"available,omitempty"`
}

func (i *Item) Apply(p ItemPatch) {
	if p.Title != nil {
		i.Title = *p.Title
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.PricePerDayCents != nil {
		i.PricePerDayCents = *p.PricePerDayCents
	}
	if p.ImageURL != nil {
		i.ImageURL = *p.ImageURL
	}
	if p.Category != nil {
		i.Category = *p.Category
	}
	if p.Location != nil {
		i.Location = *p.Location
	}
	if p.Available != nil {
		i.Available = *p.Available
	}
}

type ItemFilter struct {
	OwnerID       int32
	Category      ItemCategory
	Location      string
	Query         string
	AvailableOnly bool
	Page          int32
	PageSize      int32
}

// Normalize clamps paging to sane bounds.
func (f *ItemFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}
