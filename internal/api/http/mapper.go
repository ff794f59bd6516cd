package http

import (
	"time"

	"rentshare-backend/internal/apperr"
	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/service"
	"rentshare-backend/internal/utils"
)

type itemResponse struct {
	domain.Item
	PricePerDay string `json:"price_per_day"`
}

func mapItem(i *domain.Item) itemResponse {
	return itemResponse{Item: *i, PricePerDay: utils.FormatCents(i.PricePerDayCents)}
}

func mapItems(items []domain.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for i := range items {
		out = append(out, mapItem(&items[i]))
	}
	return out
}

type bookingResponse struct {
	domain.Booking
	TotalPrice string `json:"total_price"`
}

func mapBooking(b *domain.Booking) bookingResponse {
	return bookingResponse{Booking: *b, TotalPrice: utils.FormatCents(b.TotalPriceCents)}
}

func mapBookings(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, mapBooking(&bookings[i]))
	}
	return out
}

type bookingDetailsResponse struct {
	bookingResponse
	Item         itemResponse           `json:"item"`
	NextStatuses []domain.BookingStatus `json:"next_statuses"`
	Payments     []paymentResponse      `json:"payments"`
}

func mapBookingDetails(d *service.BookingDetails) bookingDetailsResponse {
	next := d.NextStatuses
	if next == nil {
		next = []domain.BookingStatus{}
	}
	payments := make([]paymentResponse, 0, len(d.Payments))
	for i := range d.Payments {
		payments = append(payments, mapPayment(&d.Payments[i]))
	}
	return bookingDetailsResponse{
		bookingResponse: mapBooking(&d.Booking),
		Item:            mapItem(&d.Item),
		NextStatuses:    next,
		Payments:        payments,
	}
}

type paymentResponse struct {
	domain.Payment
	Amount string `json:"amount"`
}

func mapPayment(p *domain.Payment) paymentResponse {
	return paymentResponse{Payment: *p, Amount: utils.FormatCents(p.AmountCents)}
}

type quoteResponse struct {
	utils.PriceBreakdown
	Available    bool       `json:"available"`
	BlockedFrom  *time.Time `json:"blocked_from,omitempty"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}

func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apperr.Validation("%s is required", field)
	}
	t, err := utils.ParseDateTime(raw)
	if err != nil {
		return time.Time{}, apperr.Validation("%s: %v", field, err)
	}
	return t, nil
}
