package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPaypal PaymentMethod = "paypal"
	PaymentMethodWallet PaymentMethod = "wallet"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodPaypal, PaymentMethodWallet:
		return true
	}
	return false
}

type Payment struct {
	ID             string        `json:"id"`
	BookingID      int32         `json:"booking_id"`
	RenterID       int32         `json:"renter_id"`
	ItemID         int32         `json:"item_id"`
	AmountCents    int64         `json:"amount_cents"`
	Currency       string        `json:"currency"`
	Method         PaymentMethod `json:"payment_method"`
	CardLast4      string        `json:"card_last4"`
	Status         PaymentStatus `json:"status"`
	TransactionID  string        `json:"transaction_id"`
	ProviderStatus string        `json:"provider_status"`
	FailureReason  string        `json:"failure_reason,omitempty"`
	ProcessedOn    time.Time     `json:"processed_on"`
}

// CardLast4 masks a card number down to its last four digits.
func CardLast4(cardNumber string) string {
	if len(cardNumber) < 4 {
		return "XXXX"
	}
	return cardNumber[len(cardNumber)-4:]
}
