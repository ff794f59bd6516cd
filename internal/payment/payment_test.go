package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rentshare-backend/internal/domain"

	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSimulatedProvider_Charge(t *testing.T) {
	ctx := context.Background()
	p := NewSimulatedProvider(0)

	t.Run("Approved", func(t *testing.T) {
		res, err := p.Charge(ctx, ChargeRequest{BookingID: 1, AmountCents: 1000, CardNumber: "4242 4242 4242 4242"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(res.TransactionID, "txn_"))
		assert.Equal(t, "approved", res.ProviderStatus)
	})

	t.Run("Declined test card", func(t *testing.T) {
		_, err := p.Charge(ctx, ChargeRequest{BookingID: 1, AmountCents: 1000, CardNumber: DeclinedTestCard})
		assert.ErrorIs(t, err, ErrDeclined)
	})
}

func TestSimulatedProvider_RespectsContext(t *testing.T) {
	p := NewSimulatedProvider(time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Charge(ctx, ChargeRequest{BookingID: 1, AmountCents: 1000})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

type mockCreator struct {
	mock.Mock
}

func (m *mockCreator) Create(ctx context.Context, request mppayment.Request) (*mppayment.Response, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mppayment.Response), args.Error(1)
}

func TestMercadoPagoProvider_Charge(t *testing.T) {
	ctx := context.Background()
	req := ChargeRequest{BookingID: 12, AmountCents: 12550, Currency: "USD", Method: domain.PaymentMethodCard, PayerEmail: "r@example.com"}

	t.Run("Approved", func(t *testing.T) {
		creator := new(mockCreator)
		p := &MercadoPagoProvider{client: creator}
		creator.On("Create", ctx, mock.MatchedBy(func(r mppayment.Request) bool {
			return r.TransactionAmount == 125.5 && r.ExternalReference == "12" && r.Payer.Email == "r@example.com"
		})).Return(&mppayment.Response{ID: 991, Status: "approved"}, nil)

		res, err := p.Charge(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "991", res.TransactionID)
		creator.AssertExpectations(t)
	})

	t.Run("Rejected", func(t *testing.T) {
		creator := new(mockCreator)
		p := &MercadoPagoProvider{client: creator}
		creator.On("Create", ctx, mock.Anything).Return(&mppayment.Response{ID: 992, Status: "rejected", StatusDetail: "cc_rejected_insufficient_amount"}, nil)

		_, err := p.Charge(ctx, req)
		assert.ErrorIs(t, err, ErrDeclined)
		assert.Contains(t, err.Error(), "cc_rejected_insufficient_amount")
	})

	t.Run("Transport error", func(t *testing.T) {
		creator := new(mockCreator)
		p := &MercadoPagoProvider{client: creator}
		creator.On("Create", ctx, mock.Anything).Return(nil, errors.New("timeout"))

		_, err := p.Charge(ctx, req)
		assert.EqualError(t, err, "timeout")
	})
}

func TestNewMercadoPagoProvider_RequiresToken(t *testing.T) {
	_, err := NewMercadoPagoProvider("")
	assert.ErrorIs(t, err, ErrMissingMercadoPagoAccessToken)
}
