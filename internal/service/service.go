package service

import (
	"context"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/utils"
)

type UserService interface {
	GetUser(ctx context.Context, id int32) (*domain.User, error)
}

type ItemService interface {
	CreateItem(ctx context.Context, actor domain.Actor, item *domain.Item) (*domain.Item, error)
	GetItem(ctx context.Context, id int32) (*domain.Item, error)
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, int32, error)
	UpdateItem(ctx context.Context, actor domain.Actor, id int32, patch domain.ItemPatch) (*domain.Item, error)
	DeleteItem(ctx context.Context, actor domain.Actor, id int32) error
	QuotePrice(ctx context.Context, itemID int32, start, end time.Time) (*utils.PriceBreakdown, error)
}

type CreateBookingRequest struct {
	ItemID    int32
	StartDate time.Time
	EndDate   time.Time
}

type ListBookingsRequest struct {
	// As is "renter" or "owner". Empty means the actor's own role.
	As     string
	Status string
}

type PayBookingRequest struct {
	BookingID  int32
	Method     domain.PaymentMethod
	CardNumber string
}

// BookingDetails is a booking as seen by one of its parties.
type BookingDetails struct {
	domain.Booking
	Item         domain.Item            `json:"item"`
	NextStatuses []domain.BookingStatus `json:"next_statuses"`
	Payments     []domain.Payment       `json:"payments,omitempty"`
}

type BookingService interface {
	CreateBooking(ctx context.Context, actor domain.Actor, req CreateBookingRequest) (*domain.Booking, error)
	// CheckOverlap returns the first active booking of the item that
	// intersects [start, end], or nil.
	CheckOverlap(ctx context.Context, itemID int32, start, end time.Time) (*domain.Booking, error)
	RequestTransition(ctx context.Context, actor domain.Actor, bookingID int32, to domain.BookingStatus, payload domain.TransitionPayload) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, actor domain.Actor, bookingID int32) error
	GetBooking(ctx context.Context, actor domain.Actor, bookingID int32) (*BookingDetails, error)
	ListBookings(ctx context.Context, actor domain.Actor, req ListBookingsRequest) ([]domain.Booking, error)
	PayBooking(ctx context.Context, actor domain.Actor, req PayBookingRequest) (*domain.Booking, *domain.Payment, error)
	ExpireStaleRequests(ctx context.Context, now time.Time) (int, error)
}

type CreateReviewRequest struct {
	ItemID     int32
	RevieweeID int32
	Rating     int32
	Comment    string
}

type ReviewService interface {
	CreateReview(ctx context.Context, actor domain.Actor, req CreateReviewRequest) (*domain.Review, error)
	ListReviews(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error)
	RecomputeAllRatings(ctx context.Context) (int, error)
}

type EmailService interface {
	SendBookingUpdate(ctx context.Context, toEmail, toName, subject, body string) error
}

// BookingChange describes a committed booking change.
type BookingChange struct {
	From    domain.BookingStatus
	Booking domain.Booking
	Item    domain.Item
	Actor   domain.Actor
}

// Notifier fans a committed booking change out to e-mail and events. It
// never fails the caller.
type Notifier interface {
	BookingChanged(ctx context.Context, change BookingChange)
}
