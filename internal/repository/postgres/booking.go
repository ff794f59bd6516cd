package postgres

import (
	"context"
	"fmt"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"

	"github.com/lib/pq"
)

type bookingRepository struct {
	db dbtx
}

const bookingColumns = `b.id, b.item_id, b.renter_id, b.start_date, b.end_date, b.total_price_cents, b.status, b.cancellation_reason, b.cancelled_by, b.created_on, b.updated_on`

func scanBooking(row rowScanner, b *domain.Booking) error {
	return row.Scan(&b.ID, &b.ItemID, &b.RenterID, &b.StartDate, &b.EndDate, &b.TotalPriceCents, &b.Status, &b.CancellationReason, &b.CancelledBy, &b.CreatedOn, &b.UpdatedOn)
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (item_id, renter_id, start_date, end_date, total_price_cents, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if b.CreatedOn.IsZero() {
		b.CreatedOn = time.Now()
	}
	b.UpdatedOn = b.CreatedOn
	return r.db.QueryRowContext(ctx, query, b.ItemID, b.RenterID, b.StartDate, b.EndDate, b.TotalPriceCents, b.Status, b.CreatedOn, b.UpdatedOn).Scan(&b.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	b := &domain.Booking{}
	if err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1`, id), b); err != nil {
		return nil, notFound(err, "booking", id)
	}
	return b, nil
}

func (r *bookingRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Booking, error) {
	b := &domain.Booking{}
	if err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1 FOR UPDATE`, id), b); err != nil {
		return nil, notFound(err, "booking", id)
	}
	return b, nil
}

// Update writes the mutable lifecycle fields. Dates and price never change
// after creation.
func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET status=$1, cancellation_reason=$2, cancelled_by=$3, updated_on=$4 WHERE id=$5`
	if b.UpdatedOn.IsZero() {
		b.UpdatedOn = time.Now()
	}
	res, err := r.db.ExecContext(ctx, query, b.Status, b.CancellationReason, b.CancelledBy, b.UpdatedOn, b.ID)
	if err != nil {
		return err
	}
	return checkAffected(res, "booking", b.ID)
}

func (r *bookingRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res, "booking", id)
}

func (r *bookingRepository) FindOverlapping(ctx context.Context, itemID int32, start, end time.Time) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b
	          WHERE b.item_id = $1 AND b.status = ANY($2) AND b.start_date <= $4 AND b.end_date >= $3
	          ORDER BY b.start_date LIMIT 1`
	logger.DatabaseCall("SELECT", "bookings overlap", "itemID", itemID)
	rows, err := r.db.QueryContext(ctx, query, itemID, pq.Array(statusStrings(domain.ActiveBookingStatuses)), start, end)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "itemID", itemID)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	b := &domain.Booking{}
	if err := scanBooking(rows, b); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", 1, nil, "itemID", itemID, "conflictID", b.ID)
	return b, nil
}

func (r *bookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	sql := `SELECT ` + bookingColumns + ` FROM bookings b JOIN items i ON i.id = b.item_id WHERE 1=1`

	var args []interface{}
	argIdx := 1
	if f.RenterID != 0 {
		sql += fmt.Sprintf(" AND b.renter_id = $%d", argIdx)
		args = append(args, f.RenterID)
		argIdx++
	}
	if f.OwnerID != 0 {
		sql += fmt.Sprintf(" AND i.owner_id = $%d", argIdx)
		args = append(args, f.OwnerID)
		argIdx++
	}
	if f.ItemID != 0 {
		sql += fmt.Sprintf(" AND b.item_id = $%d", argIdx)
		args = append(args, f.ItemID)
		argIdx++
	}
	if len(f.Statuses) > 0 {
		sql += fmt.Sprintf(" AND b.status = ANY($%d)", argIdx)
		args = append(args, pq.Array(statusStrings(f.Statuses)))
		argIdx++
	}
	if !f.StartsBefore.IsZero() {
		sql += fmt.Sprintf(" AND b.start_date < $%d", argIdx)
		args = append(args, f.StartsBefore)
	}
	sql += " ORDER BY b.created_on DESC"

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
