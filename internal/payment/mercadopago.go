package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"rentshare-backend/internal/logger"

	"github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing mercadopago access token")

// paymentCreator is the part of the SDK payment client used here.
type paymentCreator interface {
	Create(ctx context.Context, request mppayment.Request) (*mppayment.Response, error)
}

type MercadoPagoProvider struct {
	client paymentCreator
}

func NewMercadoPagoProvider(accessToken string) (*MercadoPagoProvider, error) {
	if accessToken == "" {
		return nil, ErrMissingMercadoPagoAccessToken
	}
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed creating mercadopago config: %w", err)
	}
	return &MercadoPagoProvider{client: mppayment.NewClient(cfg)}, nil
}

func (p *MercadoPagoProvider) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	request := mppayment.Request{
		TransactionAmount: float64(req.AmountCents) / 100,
		Description:       req.Description,
		ExternalReference: strconv.Itoa(int(req.BookingID)),
		PaymentMethodID:   string(req.Method),
		Installments:      1,
		Payer: &mppayment.PayerRequest{
			Email: req.PayerEmail,
		},
	}

	logger.ExternalServiceCall("mercadopago", "payment.Create", "bookingID", req.BookingID)
	resp, err := p.client.Create(ctx, request)
	logger.ExternalServiceResult("mercadopago", "payment.Create", err, "bookingID", req.BookingID)
	if err != nil {
		return nil, err
	}

	switch resp.Status {
	case "approved", "authorized":
		return &ChargeResult{
			TransactionID:  strconv.Itoa(resp.ID),
			ProviderStatus: resp.Status,
		}, nil
	default:
		return nil, fmt.Errorf("%w: status %s (%s)", ErrDeclined, resp.Status, resp.StatusDetail)
	}
}
