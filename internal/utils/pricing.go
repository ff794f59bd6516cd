package utils

import (
	"fmt"
	"math"
	"time"
)

// Day is the billing unit. Ranges are measured as elapsed time, so a DST
// shift never adds or removes a billable day.
const Day = 24 * time.Hour

// BillableDays returns the number of whole days in [start, end], rounding
// any fractional day up and never going below one.
func BillableDays(start, end time.Time) int64 {
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return 1
	}
	days := int64(elapsed / Day)
	if elapsed%Day != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// ComputePrice returns max(1, ceil(days)) * pricePerDay in cents.
func ComputePrice(pricePerDayCents int64, start, end time.Time) (int64, error) {
	if pricePerDayCents <= 0 {
		return 0, fmt.Errorf("price per day must be positive, got %d", pricePerDayCents)
	}
	days := BillableDays(start, end)
	if days > math.MaxInt64/pricePerDayCents {
		return 0, fmt.Errorf("price overflow for %d days at %d cents", days, pricePerDayCents)
	}
	return days * pricePerDayCents, nil
}

// PriceBreakdown is the quote shown to a renter before booking.
type PriceBreakdown struct {
	Days             int64  `json:"days"`
	PricePerDayCents int64  `json:"price_per_day_cents"`
	TotalCents       int64  `json:"total_cents"`
	Total            string `json:"total"`
}

func Quote(pricePerDayCents int64, start, end time.Time) (PriceBreakdown, error) {
	total, err := ComputePrice(pricePerDayCents, start, end)
	if err != nil {
		return PriceBreakdown{}, err
	}
	return PriceBreakdown{
		Days:             BillableDays(start, end),
		PricePerDayCents: pricePerDayCents,
		TotalCents:       total,
		Total:            FormatCents(total),
	}, nil
}

// FormatCents renders an amount with two decimals, e.g. 12345 -> "123.45".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ParseDateTime accepts RFC 3339 timestamps and plain yyyy-mm-dd dates
// (midnight UTC).
func ParseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04", s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd or RFC 3339", s)
	}
	return t, nil
}
