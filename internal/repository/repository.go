package repository

import (
	"context"
	"time"

	"rentshare-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListIDs(ctx context.Context) ([]int32, error)
	UpdateRating(ctx context.Context, id int32, summary domain.RatingSummary) error
}

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id int32) (*domain.Item, error)
	// GetForUpdate reads the item and, inside a transaction, row-locks it
	// until commit.
	GetForUpdate(ctx context.Context, id int32) (*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	SetAvailability(ctx context.Context, id int32, available bool) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, int32, error)
	ListIDs(ctx context.Context) ([]int32, error)
	UpdateRating(ctx context.Context, id int32, summary domain.RatingSummary) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	GetForUpdate(ctx context.Context, id int32) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, id int32) error
	// FindOverlapping returns the first booking of the item in an active
	// status whose closed interval intersects [start, end], or nil.
	FindOverlapping(ctx context.Context, itemID int32, start, end time.Time) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	ExistsForItem(ctx context.Context, reviewerID, itemID int32) (bool, error)
	ExistsForReviewee(ctx context.Context, reviewerID, revieweeID int32) (bool, error)
	List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error)
	RatingsForItem(ctx context.Context, itemID int32) ([]int32, error)
	RatingsForUser(ctx context.Context, userID int32) ([]int32, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByBooking(ctx context.Context, bookingID int32) ([]domain.Payment, error)
}

// Repos groups the repositories bound to one connection or transaction.
type Repos struct {
	Users    UserRepository
	Items    ItemRepository
	Bookings BookingRepository
	Reviews  ReviewRepository
	Payments PaymentRepository
}

// Store hands out repositories and runs units of work atomically. fn's
// writes are committed only when it returns nil.
type Store interface {
	Repos() Repos
	WithTx(ctx context.Context, fn func(repos Repos) error) error
	Ping(ctx context.Context) error
	Close() error
}
