package payment

import (
	"context"
	"strings"
	"time"

	"rentshare-backend/internal/logger"

	"github.com/google/uuid"
)

// DeclinedTestCard is always declined by the simulated provider.
const DeclinedTestCard = "4000000000000002"

// SimulatedProvider approves every charge after a fixed delay, except for
// DeclinedTestCard. It never fails at random.
type SimulatedProvider struct {
	delay time.Duration
}

func NewSimulatedProvider(delay time.Duration) *SimulatedProvider {
	return &SimulatedProvider{delay: delay}
}

func (p *SimulatedProvider) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	logger.ExternalServiceCall("simulated-payment", "Charge", "bookingID", req.BookingID, "amountCents", req.AmountCents)

	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			logger.ExternalServiceResult("simulated-payment", "Charge", ctx.Err(), "bookingID", req.BookingID)
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if strings.ReplaceAll(req.CardNumber, " ", "") == DeclinedTestCard {
		logger.ExternalServiceResult("simulated-payment", "Charge", ErrDeclined, "bookingID", req.BookingID)
		return nil, ErrDeclined
	}

	res := &ChargeResult{
		TransactionID:  "txn_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		ProviderStatus: "approved",
	}
	logger.ExternalServiceResult("simulated-payment", "Charge", nil, "bookingID", req.BookingID, "transactionID", res.TransactionID)
	return res, nil
}
