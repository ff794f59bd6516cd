package service

import (
	"context"
	"fmt"
	"strconv"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/events"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository"
	"rentshare-backend/internal/utils"
)

type notificationService struct {
	userRepo  repository.UserRepository
	emailSvc  EmailService
	publisher events.Publisher
}

func NewNotificationService(userRepo repository.UserRepository, emailSvc EmailService, publisher events.Publisher) Notifier {
	return &notificationService{userRepo: userRepo, emailSvc: emailSvc, publisher: publisher}
}

func (s *notificationService) BookingChanged(ctx context.Context, change BookingChange) {
	b := change.Booking
	evt, err := events.NewEvent(events.TypeFor(b.Status), events.BookingChanged{
		BookingID:          b.ID,
		ItemID:             b.ItemID,
		RenterID:           b.RenterID,
		OwnerID:            change.Item.OwnerID,
		From:               change.From,
		Status:             b.Status,
		TotalPriceCents:    b.TotalPriceCents,
		CancellationReason: b.CancellationReason,
		ActorID:            change.Actor.ID,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, strconv.Itoa(int(b.ID)), evt)
	}
	if err != nil {
		logger.WarnContext(ctx, "Failed to publish booking event", "bookingID", b.ID, "status", b.Status, "error", err)
	}

	// The party who did not cause the change hears about it.
	recipientID := change.Item.OwnerID
	if change.Actor.ID == change.Item.OwnerID {
		recipientID = b.RenterID
	}
	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		logger.WarnContext(ctx, "Failed to load notification recipient", "userID", recipientID, "error", err)
		return
	}

	subject, body := bookingEmail(change)
	if err := s.emailSvc.SendBookingUpdate(ctx, recipient.Email, recipient.Name, subject, body); err != nil {
		logger.WarnContext(ctx, "Failed to send booking email", "bookingID", b.ID, "to", recipient.Email, "error", err)
	}
}

func bookingEmail(change BookingChange) (string, string) {
	b := change.Booking
	title := change.Item.Title
	dates := fmt.Sprintf("%s to %s", b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"))

	switch b.Status {
	case domain.BookingStatusPending:
		return fmt.Sprintf("New booking request: %s", title),
			fmt.Sprintf("You have a new booking request for %s from %s (total %s).", title, dates, utils.FormatCents(b.TotalPriceCents))
	case domain.BookingStatusConfirmed:
		return fmt.Sprintf("Booking confirmed: %s", title),
			fmt.Sprintf("Your booking of %s from %s is confirmed.", title, dates)
	case domain.BookingStatusPendingPayment:
		return fmt.Sprintf("Payment requested: %s", title),
			fmt.Sprintf("Please pay %s for your booking of %s from %s.", utils.FormatCents(b.TotalPriceCents), title, dates)
	case domain.BookingStatusPaid:
		return fmt.Sprintf("Booking paid: %s", title),
			fmt.Sprintf("The booking of %s from %s has been paid (%s).", title, dates, utils.FormatCents(b.TotalPriceCents))
	case domain.BookingStatusCancelled:
		return fmt.Sprintf("Booking cancelled: %s", title),
			fmt.Sprintf("The booking of %s from %s was cancelled.\n\nReason: %s", title, dates, b.CancellationReason)
	}
	return fmt.Sprintf("Booking update: %s", title), fmt.Sprintf("The booking of %s is now %s.", title, b.Status)
}
