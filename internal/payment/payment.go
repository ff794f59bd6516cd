// Package payment charges renters through a payment provider.
package payment

import (
	"context"
	"errors"

	"rentshare-backend/internal/domain"
)

// ErrDeclined is returned when the provider refused the charge.
var ErrDeclined = errors.New("payment declined")

type ChargeRequest struct {
	BookingID   int32
	AmountCents int64
	Currency    string
	Method      domain.PaymentMethod
	CardNumber  string
	Description string
	PayerEmail  string
}

type ChargeResult struct {
	TransactionID  string
	ProviderStatus string
}

type Provider interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
