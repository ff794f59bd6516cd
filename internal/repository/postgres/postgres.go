package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rentshare-backend/internal/apperr"
	"rentshare-backend/internal/repository"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// dbtx is satisfied by both *sql.DB and *sql.Tx so every repository can run
// standalone or inside a unit of work.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db    *sql.DB
	repos repository.Repos
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repos: newRepos(db)}
}

func newRepos(q dbtx) repository.Repos {
	return repository.Repos{
		Users:    &userRepository{db: q},
		Items:    &itemRepository{db: q},
		Bookings: &bookingRepository{db: q},
		Reviews:  &reviewRepository{db: q},
		Payments: &paymentRepository{db: q},
	}
}

func (s *Store) Repos() repository.Repos { return s.repos }

// WithTx runs fn in a single database transaction. Row locks taken through
// GetForUpdate are held until fn returns.
func (s *Store) WithTx(ctx context.Context, fn func(repos repository.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

// notFound maps sql.ErrNoRows to a NotFound error naming the record.
func notFound(err error, what string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("%s %v not found", what, id)
	}
	return err
}

// checkAffected reports NotFound when an update or delete matched no row.
func checkAffected(res sql.Result, what string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("%s %v not found", what, id)
	}
	return nil
}

// conflictOnDuplicate turns a unique constraint violation into a Conflict.
func conflictOnDuplicate(err error, format string, args ...any) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperr.Conflict(format, args...)
	}
	return err
}
