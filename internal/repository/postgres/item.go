package postgres

import (
	"context"
	"fmt"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
)

type itemRepository struct {
	db dbtx
}

const itemColumns = `id, owner_id, title, description, price_per_day_cents, available, image_url, category, location, average_rating, review_count, created_on, updated_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner, it *domain.Item) error {
	return row.Scan(&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.PricePerDayCents, &it.Available, &it.ImageURL, &it.Category, &it.Location, &it.AverageRating, &it.ReviewCount, &it.CreatedOn, &it.UpdatedOn)
}

func (r *itemRepository) Create(ctx context.Context, it *domain.Item) error {
	query := `INSERT INTO items (owner_id, title, description, price_per_day_cents, available, image_url, category, location, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	now := time.Now()
	it.CreatedOn = now
	it.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query, it.OwnerID, it.Title, it.Description, it.PricePerDayCents, it.Available, it.ImageURL, it.Category, it.Location, it.CreatedOn, it.UpdatedOn).Scan(&it.ID)
}

func (r *itemRepository) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	it := &domain.Item{}
	if err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id), it); err != nil {
		return nil, notFound(err, "item", id)
	}
	return it, nil
}

func (r *itemRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Item, error) {
	it := &domain.Item{}
	if err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id), it); err != nil {
		return nil, notFound(err, "item", id)
	}
	return it, nil
}

func (r *itemRepository) Update(ctx context.Context, it *domain.Item) error {
	query := `UPDATE items SET title=$1, description=$2, price_per_day_cents=$3, available=$4, image_url=$5, category=$6, location=$7, updated_on=$8 WHERE id=$9`
	it.UpdatedOn = time.Now()
	res, err := r.db.ExecContext(ctx, query, it.Title, it.Description, it.PricePerDayCents, it.Available, it.ImageURL, it.Category, it.Location, it.UpdatedOn, it.ID)
	if err != nil {
		return err
	}
	return checkAffected(res, "item", it.ID)
}

func (r *itemRepository) SetAvailability(ctx context.Context, id int32, available bool) error {
	logger.DatabaseCall("UPDATE", "items.available", "itemID", id, "available", available)
	res, err := r.db.ExecContext(ctx, `UPDATE items SET available=$1, updated_on=$2 WHERE id=$3`, available, time.Now(), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "itemID", id)
		return err
	}
	return checkAffected(res, "item", id)
}

func (r *itemRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res, "item", id)
}

func (r *itemRepository) List(ctx context.Context, f domain.ItemFilter) ([]domain.Item, int32, error) {
	f.Normalize()
	offset := (f.Page - 1) * f.PageSize
	sql := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`

	var args []interface{}
	argIdx := 1
	if f.OwnerID != 0 {
		sql += fmt.Sprintf(" AND owner_id = $%d", argIdx)
		args = append(args, f.OwnerID)
		argIdx++
	}
	if f.Category != "" {
		sql += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, f.Category)
		argIdx++
	}
	if f.Location != "" {
		sql += fmt.Sprintf(" AND location ILIKE $%d", argIdx)
		args = append(args, "%"+f.Location+"%")
		argIdx++
	}
	if f.Query != "" {
		sql += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+f.Query+"%")
		argIdx++
	}
	if f.AvailableOnly {
		sql += " AND available = TRUE"
	}

	var count int32
	countSql := "SELECT count(*) FROM (" + sql + ") as sub"
	if err := r.db.QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	sql += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, f.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := scanItem(rows, &it); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, count, rows.Err()
}

func (r *itemRepository) ListIDs(ctx context.Context) ([]int32, error) {
	return listIDs(ctx, r.db, `SELECT id FROM items ORDER BY id`)
}

func (r *itemRepository) UpdateRating(ctx context.Context, id int32, summary domain.RatingSummary) error {
	res, err := r.db.ExecContext(ctx, `UPDATE items SET average_rating = $1, review_count = $2 WHERE id = $3`, summary.Average, summary.Count, id)
	if err != nil {
		return err
	}
	return checkAffected(res, "item", id)
}
