package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentshare-backend/internal/domain"
)

type reviewRepository struct {
	db dbtx
}

func nullableID(id int32) sql.NullInt32 {
	return sql.NullInt32{Int32: id, Valid: id != 0}
}

func (r *reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `INSERT INTO reviews (reviewer_id, reviewee_id, item_id, rating, comment, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	rv.CreatedOn = time.Now()
	err := r.db.QueryRowContext(ctx, query, rv.ReviewerID, rv.RevieweeID, nullableID(rv.ItemID), rv.Rating, rv.Comment, rv.CreatedOn).Scan(&rv.ID)
	return conflictOnDuplicate(err, "review already submitted")
}

func (r *reviewRepository) ExistsForItem(ctx context.Context, reviewerID, itemID int32) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM reviews WHERE reviewer_id = $1 AND item_id = $2)`, reviewerID, itemID).Scan(&exists)
	return exists, err
}

func (r *reviewRepository) ExistsForReviewee(ctx context.Context, reviewerID, revieweeID int32) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM reviews WHERE reviewer_id = $1 AND reviewee_id = $2 AND item_id IS NULL)`, reviewerID, revieweeID).Scan(&exists)
	return exists, err
}

func (r *reviewRepository) List(ctx context.Context, f domain.ReviewFilter) ([]domain.Review, error) {
	query := `SELECT id, reviewer_id, reviewee_id, COALESCE(item_id, 0), rating, comment, created_on FROM reviews WHERE 1=1`
	var args []interface{}
	argIdx := 1
	if f.ItemID != 0 {
		query += fmt.Sprintf(" AND item_id = $%d", argIdx)
		args = append(args, f.ItemID)
		argIdx++
	}
	if f.RevieweeID != 0 {
		query += fmt.Sprintf(" AND reviewee_id = $%d", argIdx)
		args = append(args, f.RevieweeID)
	}
	query += " ORDER BY created_on DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.ReviewerID, &rv.RevieweeID, &rv.ItemID, &rv.Rating, &rv.Comment, &rv.CreatedOn); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *reviewRepository) RatingsForItem(ctx context.Context, itemID int32) ([]int32, error) {
	return r.ratings(ctx, `SELECT rating FROM reviews WHERE item_id = $1`, itemID)
}

func (r *reviewRepository) RatingsForUser(ctx context.Context, userID int32) ([]int32, error) {
	return r.ratings(ctx, `SELECT rating FROM reviews WHERE reviewee_id = $1`, userID)
}

func (r *reviewRepository) ratings(ctx context.Context, query string, id int32) ([]int32, error) {
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []int32
	for rows.Next() {
		var v int32
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		ratings = append(ratings, v)
	}
	return ratings, rows.Err()
}
