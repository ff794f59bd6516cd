// Package memory is an in-process Store for local development and tests.
// A transaction works on a copy of the data that replaces the shared state
// only when the unit of work succeeds, and transactions are serialised.
package memory

import (
	"context"
	"sync"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/repository"
)

type state struct {
	users    map[int32]domain.User
	items    map[int32]domain.Item
	bookings map[int32]domain.Booking
	reviews  []domain.Review
	payments []domain.Payment
	seq      map[string]int32
}

func newState() *state {
	return &state{
		users:    make(map[int32]domain.User),
		items:    make(map[int32]domain.Item),
		bookings: make(map[int32]domain.Booking),
		seq:      make(map[string]int32),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:    make(map[int32]domain.User, len(s.users)),
		items:    make(map[int32]domain.Item, len(s.items)),
		bookings: make(map[int32]domain.Booking, len(s.bookings)),
		reviews:  append([]domain.Review(nil), s.reviews...),
		payments: append([]domain.Payment(nil), s.payments...),
		seq:      make(map[string]int32, len(s.seq)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = copyBooking(v)
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	return c
}

func (s *state) next(table string) int32 {
	s.seq[table]++
	return s.seq[table]
}

func copyBooking(b domain.Booking) domain.Booking {
	if b.CancelledBy != nil {
		by := *b.CancelledBy
		b.CancelledBy = &by
	}
	return b
}

// conn runs fn against the state it is bound to.
type conn interface {
	do(fn func(st *state) error) error
}

type sharedConn struct{ s *Store }

func (c sharedConn) do(fn func(st *state) error) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return fn(c.s.st)
}

type txConn struct{ st *state }

func (c txConn) do(fn func(st *state) error) error { return fn(c.st) }

type Store struct {
	mu    sync.Mutex
	st    *state
	repos repository.Repos
}

func NewStore() *Store {
	s := &Store{st: newState()}
	s.repos = newRepos(sharedConn{s: s})
	return s
}

func newRepos(c conn) repository.Repos {
	return repository.Repos{
		Users:    &userRepository{c: c},
		Items:    &itemRepository{c: c},
		Bookings: &bookingRepository{c: c},
		Reviews:  &reviewRepository{c: c},
		Payments: &paymentRepository{c: c},
	}
}

// Repos returns repositories that each lock the store per call. They must
// not be used from inside a WithTx callback.
func (s *Store) Repos() repository.Repos { return s.repos }

func (s *Store) WithTx(ctx context.Context, fn func(repos repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.st.clone()
	if err := fn(newRepos(txConn{st: work})); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}
