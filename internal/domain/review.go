package domain

import (
	"math"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID         int32     `json:"id"`
	ReviewerID int32     `json:"reviewer_id"`
	RevieweeID int32     `json:"reviewee_id"`
	ItemID     int32     `json:"item_id"`
	Rating     int32     `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedOn  time.Time `json:"created_on"`
}

type ReviewFilter struct {
	ItemID     int32
	RevieweeID int32
}

// RatingSummary is the derived aggregate stored on items and users.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int32   `json:"count"`
}

// SummarizeRatings returns the running average rounded to one decimal.
func SummarizeRatings(ratings []int32) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{}
	}
	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}
	avg := float64(sum) / float64(len(ratings))
	return RatingSummary{
		Average: math.Round(avg*10) / 10,
		Count:   int32(len(ratings)),
	}
}
