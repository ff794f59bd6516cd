package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentshare-backend/internal/apperr"
	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/lock"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/payment"
	"rentshare-backend/internal/repository"
	"rentshare-backend/internal/utils"

	"github.com/google/uuid"
)

const staleRequestReason = "request expired before the owner responded"

// reviewableStatuses are the booking statuses that let the parties review
// each other.
var reviewableStatuses = []domain.BookingStatus{
	domain.BookingStatusConfirmed,
	domain.BookingStatusPendingPayment,
	domain.BookingStatusPaid,
}

type BookingConfig struct {
	Currency          string
	PaymentTimeout    time.Duration
	StaleRequestGrace time.Duration
}

type bookingService struct {
	store    repository.Store
	provider payment.Provider
	locker   lock.Locker
	notifier Notifier
	cfg      BookingConfig
	now      func() time.Time
}

func NewBookingService(
	store repository.Store,
	provider payment.Provider,
	locker lock.Locker,
	notifier Notifier,
	cfg BookingConfig,
) BookingService {
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.PaymentTimeout == 0 {
		cfg.PaymentTimeout = 10 * time.Second
	}
	return &bookingService{
		store:    store,
		provider: provider,
		locker:   locker,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor domain.Actor, req CreateBookingRequest) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CreateBooking", "renterID", actor.ID, "itemID", req.ItemID)

	if actor.Role != domain.RoleRenter {
		return nil, apperr.Forbidden("only renters can book items")
	}
	now := s.now()
	if err := domain.ValidateBookingWindow(req.StartDate, req.EndDate, now); err != nil {
		return nil, err
	}

	var booking *domain.Booking
	var item *domain.Item
	err := s.store.WithTx(ctx, func(repos repository.Repos) error {
		var err error
		// Locking the item row serialises concurrent requests for it.
		item, err = repos.Items.GetForUpdate(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if item.OwnerID == actor.ID {
			return apperr.Validation("you cannot book your own item")
		}

		conflict, err := repos.Bookings.FindOverlapping(ctx, item.ID, req.StartDate, req.EndDate)
		if err != nil {
			return err
		}
		if conflict != nil {
			return apperr.Conflict("item is already booked from %s to %s",
				conflict.StartDate.Format(time.DateOnly), conflict.EndDate.Format(time.DateOnly))
		}

		total, err := utils.ComputePrice(item.PricePerDayCents, req.StartDate, req.EndDate)
		if err != nil {
			return apperr.Validation("cannot price booking: %v", err)
		}

		booking = &domain.Booking{
			ItemID:          item.ID,
			RenterID:        actor.ID,
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			TotalPriceCents: total,
			Status:          domain.BookingStatusPending,
			CreatedOn:       now,
		}
		return repos.Bookings.Create(ctx, booking)
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "renterID", actor.ID, "itemID", req.ItemID)
		return nil, err
	}

	s.notifier.BookingChanged(ctx, BookingChange{Booking: *booking, Item: *item, Actor: actor})
	logger.ExitMethod("bookingService.CreateBooking", "bookingID", booking.ID, "totalCents", booking.TotalPriceCents)
	return booking, nil
}

func (s *bookingService) CheckOverlap(ctx context.Context, itemID int32, start, end time.Time) (*domain.Booking, error) {
	if _, err := s.store.Repos().Items.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.store.Repos().Bookings.FindOverlapping(ctx, itemID, start, end)
}

func (s *bookingService) RequestTransition(ctx context.Context, actor domain.Actor, bookingID int32, to domain.BookingStatus, payload domain.TransitionPayload) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.RequestTransition", "bookingID", bookingID, "actorID", actor.ID, "to", to)

	to, err := domain.ParseBookingStatus(string(to))
	if err != nil {
		return nil, err
	}
	// Payment references are only minted by PayBooking.
	payload.PaymentReference = ""

	change, err := s.transition(ctx, actor, bookingID, to, payload, nil)
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestTransition", err, "bookingID", bookingID, "to", to)
		return nil, err
	}

	s.notifier.BookingChanged(ctx, *change)
	logger.ExitMethod("bookingService.RequestTransition", "bookingID", bookingID, "from", change.From, "to", to)
	return &change.Booking, nil
}

// transition runs one read-modify-write of a booking and its item in a single
// transaction. extra runs in the same transaction after the writes.
func (s *bookingService) transition(
	ctx context.Context,
	actor domain.Actor,
	bookingID int32,
	to domain.BookingStatus,
	payload domain.TransitionPayload,
	extra func(repos repository.Repos, b *domain.Booking) error,
) (*BookingChange, error) {
	var change BookingChange
	err := s.store.WithTx(ctx, func(repos repository.Repos) error {
		b, err := repos.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		item, err := repos.Items.GetForUpdate(ctx, b.ItemID)
		if err != nil {
			return err
		}

		out, err := domain.PlanTransition(*b, *item, actor, to, payload, s.now())
		if err != nil {
			return err
		}
		if err := repos.Bookings.Update(ctx, &out.Booking); err != nil {
			return err
		}
		if out.ItemAvailable != nil {
			if err := repos.Items.SetAvailability(ctx, item.ID, *out.ItemAvailable); err != nil {
				return err
			}
			item.Available = *out.ItemAvailable
		}
		if extra != nil {
			if err := extra(repos, &out.Booking); err != nil {
				return err
			}
		}

		change = BookingChange{From: out.From, Booking: out.Booking, Item: *item, Actor: actor}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, actor domain.Actor, bookingID int32) error {
	return s.store.WithTx(ctx, func(repos repository.Repos) error {
		b, err := repos.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.RenterID != actor.ID || actor.Role != domain.RoleRenter {
			return apperr.Forbidden("only the renter can delete a booking")
		}
		if b.Status != domain.BookingStatusPending {
			return apperr.Validation("only pending bookings can be deleted, this one is %s", b.Status)
		}
		return repos.Bookings.Delete(ctx, bookingID)
	})
}

func (s *bookingService) GetBooking(ctx context.Context, actor domain.Actor, bookingID int32) (*BookingDetails, error) {
	repos := s.store.Repos()
	b, err := repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	item, err := repos.Items.GetByID(ctx, b.ItemID)
	if err != nil {
		return nil, err
	}
	if len(domain.PartiesOf(b, item, actor)) == 0 {
		return nil, apperr.Forbidden("not a party to this booking")
	}

	payments, err := repos.Payments.ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return &BookingDetails{
		Booking:      *b,
		Item:         *item,
		NextStatuses: domain.NextStatuses(b, item, actor),
		Payments:     payments,
	}, nil
}

func (s *bookingService) ListBookings(ctx context.Context, actor domain.Actor, req ListBookingsRequest) ([]domain.Booking, error) {
	as := domain.Role(strings.ToLower(req.As))
	if as == "" {
		as = actor.Role
	}
	if !as.IsValid() {
		return nil, apperr.Validation("as must be renter or owner")
	}
	if as != actor.Role {
		return nil, apperr.Forbidden("cannot list bookings as %s", as)
	}

	var filter domain.BookingFilter
	if as == domain.RoleOwner {
		filter.OwnerID = actor.ID
	} else {
		filter.RenterID = actor.ID
	}
	if req.Status != "" {
		status, err := domain.ParseBookingStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Statuses = []domain.BookingStatus{status}
	}
	return s.store.Repos().Bookings.List(ctx, filter)
}

func (s *bookingService) PayBooking(ctx context.Context, actor domain.Actor, req PayBookingRequest) (*domain.Booking, *domain.Payment, error) {
	logger.EnterMethod("bookingService.PayBooking", "bookingID", req.BookingID, "renterID", actor.ID)

	if req.Method == "" {
		req.Method = domain.PaymentMethodCard
	}
	if !req.Method.IsValid() {
		return nil, nil, apperr.Validation("unsupported payment method %q", req.Method)
	}
	if req.Method == domain.PaymentMethodCard && strings.TrimSpace(req.CardNumber) == "" {
		return nil, nil, apperr.Validation("card number is required")
	}

	repos := s.store.Repos()
	b, err := repos.Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, nil, err
	}
	item, err := repos.Items.GetByID(ctx, b.ItemID)
	if err != nil {
		return nil, nil, err
	}
	if err := domain.AuthorizeTransition(b, item, actor, domain.BookingStatusPaid); err != nil {
		return nil, nil, err
	}

	unlock, err := s.locker.TryLock(ctx, fmt.Sprintf("booking:%d:payment", b.ID))
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return nil, nil, apperr.Conflict("a payment for this booking is already in progress")
		}
		return nil, nil, apperr.Internal(err, "could not start payment")
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to release payment lock", "bookingID", b.ID, "error", err)
		}
	}()

	var payerEmail string
	if renter, err := repos.Users.GetByID(ctx, actor.ID); err == nil {
		payerEmail = renter.Email
	}

	chargeCtx, cancel := context.WithTimeout(ctx, s.cfg.PaymentTimeout)
	res, err := s.provider.Charge(chargeCtx, payment.ChargeRequest{
		BookingID:   b.ID,
		AmountCents: b.TotalPriceCents,
		Currency:    s.cfg.Currency,
		Method:      req.Method,
		CardNumber:  req.CardNumber,
		Description: item.Title,
		PayerEmail:  payerEmail,
	})
	cancel()
	if err != nil {
		s.recordFailedPayment(ctx, b, req, err)
		logger.ExitMethodWithError("bookingService.PayBooking", err, "bookingID", b.ID)
		switch {
		case errors.Is(err, payment.ErrDeclined):
			return nil, nil, apperr.ExternalFailure(err, "payment was declined")
		case errors.Is(err, context.DeadlineExceeded):
			return nil, nil, apperr.ExternalFailure(err, "payment provider timed out")
		default:
			return nil, nil, apperr.ExternalFailure(err, "payment provider error")
		}
	}

	pay := &domain.Payment{
		ID:             "pay_" + uuid.NewString(),
		BookingID:      b.ID,
		RenterID:       b.RenterID,
		ItemID:         b.ItemID,
		AmountCents:    b.TotalPriceCents,
		Currency:       s.cfg.Currency,
		Method:         req.Method,
		CardLast4:      domain.CardLast4(req.CardNumber),
		Status:         domain.PaymentStatusCompleted,
		TransactionID:  res.TransactionID,
		ProviderStatus: res.ProviderStatus,
		ProcessedOn:    s.now(),
	}
	change, err := s.transition(ctx, actor, b.ID, domain.BookingStatusPaid,
		domain.TransitionPayload{PaymentReference: res.TransactionID},
		func(repos repository.Repos, _ *domain.Booking) error {
			return repos.Payments.Create(ctx, pay)
		})
	if err != nil {
		// The provider has taken the money but the booking did not move.
		logger.ErrorContext(ctx, "Charged payment could not be recorded", "bookingID", b.ID, "transactionID", res.TransactionID, "error", err)
		return nil, nil, err
	}

	s.notifier.BookingChanged(ctx, *change)
	logger.ExitMethod("bookingService.PayBooking", "bookingID", b.ID, "paymentID", pay.ID)
	return &change.Booking, pay, nil
}

func (s *bookingService) recordFailedPayment(ctx context.Context, b *domain.Booking, req PayBookingRequest, cause error) {
	failed := &domain.Payment{
		ID:            "pay_" + uuid.NewString(),
		BookingID:     b.ID,
		RenterID:      b.RenterID,
		ItemID:        b.ItemID,
		AmountCents:   b.TotalPriceCents,
		Currency:      s.cfg.Currency,
		Method:        req.Method,
		CardLast4:     domain.CardLast4(req.CardNumber),
		Status:        domain.PaymentStatusFailed,
		FailureReason: cause.Error(),
		ProcessedOn:   s.now(),
	}
	if err := s.store.Repos().Payments.Create(context.WithoutCancel(ctx), failed); err != nil {
		logger.WarnContext(ctx, "Failed to record failed payment", "bookingID", b.ID, "error", err)
	}
}

// ExpireStaleRequests cancels pending requests whose start date passed
// more than the configured grace ago. The cancellation is made on the
// owner's behalf.
func (s *bookingService) ExpireStaleRequests(ctx context.Context, now time.Time) (int, error) {
	logger.EnterMethod("bookingService.ExpireStaleRequests")
	repos := s.store.Repos()
	stale, err := repos.Bookings.List(ctx, domain.BookingFilter{
		Statuses:     []domain.BookingStatus{domain.BookingStatusPending},
		StartsBefore: now.Add(-s.cfg.StaleRequestGrace),
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.ExpireStaleRequests", err)
		return 0, err
	}

	expired := 0
	for _, b := range stale {
		item, err := repos.Items.GetByID(ctx, b.ItemID)
		if err != nil {
			logger.Error("Failed to load item for stale booking", "bookingID", b.ID, "error", err)
			continue
		}
		owner := domain.Actor{ID: item.OwnerID, Role: domain.RoleOwner}
		_, err = s.RequestTransition(ctx, owner, b.ID, domain.BookingStatusCancelled, domain.TransitionPayload{CancellationReason: staleRequestReason})
		if err != nil {
			logger.Error("Failed to expire stale booking", "bookingID", b.ID, "error", err)
			continue
		}
		expired++
	}

	logger.ExitMethod("bookingService.ExpireStaleRequests", "candidates", len(stale), "expired", expired)
	return expired, nil
}
