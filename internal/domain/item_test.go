package domain

import (
	"testing"

	"rentshare-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestItem_Validate(t *testing.T) {
	valid := func() Item {
		return Item{Title: "Drill", Location: "Austin", PricePerDayCents: 500}
	}

	t.Run("Defaults category", func(t *testing.T) {
		i := valid()
		assert.NoError(t, i.Validate())
		assert.Equal(t, ItemCategoryOthers, i.Category)
	})

	t.Run("Missing title", func(t *testing.T) {
		i := valid()
		i.Title = " "
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(i.Validate()))
	})

	t.Run("Non-positive price", func(t *testing.T) {
		i := valid()
		i.PricePerDayCents = 0
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(i.Validate()))
	})

	t.Run("Unknown category", func(t *testing.T) {
		i := valid()
		i.Category = "boats"
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(i.Validate()))
	})
}

func TestItem_Apply(t *testing.T) {
	i := Item{Title: "Drill", PricePerDayCents: 500, Available: true}
	title := "Hammer drill"
	avail := false
	i.Apply(ItemPatch{Title: &title, Available: &avail})
	assert.Equal(t, "Hammer drill", i.Title)
	assert.Equal(t, int64(500), i.PricePerDayCents)
	assert.False(t, i.Available)
}

func TestItemFilter_Normalize(t *testing.T) {
	f := ItemFilter{Page: 0, PageSize: 500}
	f.Normalize()
	assert.Equal(t, int32(1), f.Page)
	assert.Equal(t, int32(20), f.PageSize)
}

func TestSummarizeRatings(t *testing.T) {
	assert.Equal(t, RatingSummary{}, SummarizeRatings(nil))
	assert.Equal(t, RatingSummary{Average: 4.3, Count: 3}, SummarizeRatings([]int32{4, 4, 5}))
	assert.Equal(t, RatingSummary{Average: 3.5, Count: 2}, SummarizeRatings([]int32{3, 4}))
}

func TestCardLast4(t *testing.T) {
	assert.Equal(t, "4242", CardLast4("4242424242424242"))
	assert.Equal(t, "XXXX", CardLast4("42"))
}
