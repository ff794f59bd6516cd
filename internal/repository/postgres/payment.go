package postgres

import (
	"context"

	"rentshare-backend/internal/domain"
)

type paymentRepository struct {
	db dbtx
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (id, booking_id, renter_id, item_id, amount_cents, currency, payment_method, card_last4, status, transaction_id, provider_status, failure_reason, processed_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.BookingID, p.RenterID, p.ItemID, p.AmountCents, p.Currency, p.Method, p.CardLast4, p.Status, p.TransactionID, p.ProviderStatus, p.FailureReason, p.ProcessedOn)
	return err
}

func (r *paymentRepository) ListByBooking(ctx context.Context, bookingID int32) ([]domain.Payment, error) {
	query := `SELECT id, booking_id, renter_id, item_id, amount_cents, currency, payment_method, card_last4, status, transaction_id, provider_status, failure_reason, processed_on
	          FROM payments WHERE booking_id = $1 ORDER BY processed_on DESC`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.BookingID, &p.RenterID, &p.ItemID, &p.AmountCents, &p.Currency, &p.Method, &p.CardLast4, &p.Status, &p.TransactionID, &p.ProviderStatus, &p.FailureReason, &p.ProcessedOn); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
