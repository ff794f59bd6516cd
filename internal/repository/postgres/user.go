package postgres

import (
	"context"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
)

type userRepository struct {
	db dbtx
}

const userColumns = `id, name, email, role, average_rating, review_count, created_on`

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (name, email, role, created_on) VALUES ($1, $2, $3, $4) RETURNING id`
	u.CreatedOn = time.Now()
	err := r.db.QueryRowContext(ctx, query, u.Name, u.Email, u.Role, u.CreatedOn).Scan(&u.ID)
	return conflictOnDuplicate(err, "email %s is already registered", u.Email)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.AverageRating, &u.ReviewCount, &u.CreatedOn)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.AverageRating, &u.ReviewCount, &u.CreatedOn)
	if err != nil {
		return nil, notFound(err, "user", email)
	}
	return u, nil
}

func (r *userRepository) ListIDs(ctx context.Context) ([]int32, error) {
	return listIDs(ctx, r.db, `SELECT id FROM users ORDER BY id`)
}

func (r *userRepository) UpdateRating(ctx context.Context, id int32, summary domain.RatingSummary) error {
	logger.DatabaseCall("UPDATE", "users.average_rating", "userID", id)
	res, err := r.db.ExecContext(ctx, `UPDATE users SET average_rating = $1, review_count = $2 WHERE id = $3`, summary.Average, summary.Count, id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "userID", id)
		return err
	}
	return checkAffected(res, "user", id)
}

func listIDs(ctx context.Context, db dbtx, query string) ([]int32, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
