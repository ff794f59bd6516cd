package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"rentshare-backend/internal/apperr"
	"rentshare-backend/internal/domain"
)

type userRepository struct{ c conn }

func (r *userRepository) Create(_ context.Context, u *domain.User) error {
	return r.c.do(func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return apperr.Conflict("email %s already registered", u.Email)
			}
		}
		u.ID = st.next("users")
		stamp(&u.CreatedOn)
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepository) GetByID(_ context.Context, id int32) (*domain.User, error) {
	var out domain.User
	err := r.c.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperr.NotFound("user %d not found", id)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := r.c.do(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				found := u
				out = &found
				return nil
			}
		}
		return apperr.NotFound("user %s not found", email)
	})
	return out, err
}

func (r *userRepository) ListIDs(_ context.Context) ([]int32, error) {
	var ids []int32
	err := r.c.do(func(st *state) error {
		for id := range st.users {
			ids = append(ids, id)
		}
		return nil
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, err
}

func (r *userRepository) UpdateRating(_ context.Context, id int32, summary domain.RatingSummary) error {
	return r.c.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperr.NotFound("user %d not found", id)
		}
		u.AverageRating = summary.Average
		u.ReviewCount = summary.Count
		st.users[id] = u
		return nil
	})
}

type itemRepository struct{ c conn }

func (r *itemRepository) Create(_ context.Context, it *domain.Item) error {
	return r.c.do(func(st *state) error {
		it.ID = st.next("items")
		now := time.Now()
		it.CreatedOn = now
		it.UpdatedOn = now
		st.items[it.ID] = *it
		return nil
	})
}

func (r *itemRepository) GetByID(_ context.Context, id int32) (*domain.Item, error) {
	var out domain.Item
	err := r.c.do(func(st *state) error {
		it, ok := st.items[id]
		if !ok {
			return apperr.NotFound("item %d not found", id)
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate needs no row lock here: transactions already run one at a time.
func (r *itemRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *itemRepository) Update(_ context.Context, it *domain.Item) error {
	return r.c.do(func(st *state) error {
		existing, ok := st.items[it.ID]
		if !ok {
			return apperr.NotFound("item %d not found", it.ID)
		}
		it.OwnerID = existing.OwnerID
		it.CreatedOn = existing.CreatedOn
		it.AverageRating = existing.AverageRating
		it.ReviewCount = existing.ReviewCount
		it.UpdatedOn = time.Now()
		st.items[it.ID] = *it
		return nil
	})
}

func (r *itemRepository) SetAvailability(_ context.Context, id int32, available bool) error {
	return r.c.do(func(st *state) error {
		it, ok := st.items[id]
		if !ok {
			return apperr.NotFound("item %d not found", id)
		}
		it.Available = available
		it.UpdatedOn = time.Now()
		st.items[id] = it
		return nil
	})
}

// Delete removes the item together with its bookings and payments.
func (r *itemRepository) Delete(_ context.Context, id int32) error {
	return r.c.do(func(st *state) error {
		if _, ok := st.items[id]; !ok {
			return apperr.NotFound("item %d not found", id)
		}
		delete(st.items, id)
		for bid, b := range st.bookings {
			if b.ItemID == id {
				delete(st.bookings, bid)
			}
		}
		kept := st.payments[:0]
		for _, p := range st.payments {
			if p.ItemID != id {
				kept = append(kept, p)
			}
		}
		st.payments = kept
		for i := range st.reviews {
			if st.reviews[i].ItemID == id {
				st.reviews[i].ItemID = 0
			}
		}
		return nil
	})
}

func (r *itemRepository) List(_ context.Context, f domain.ItemFilter) ([]domain.Item, int32, error) {
	f.Normalize()
	var matched []domain.Item
	err := r.c.do(func(st *state) error {
		for _, it := range st.items {
			if itemMatches(&it, f) {
				matched = append(matched, it)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedOn.Equal(matched[j].CreatedOn) {
			return matched[i].CreatedOn.After(matched[j].CreatedOn)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int32(len(matched))
	from := (f.Page - 1) * f.PageSize
	if from >= total {
		return nil, total, nil
	}
	to := from + f.PageSize
	if to > total {
		to = total
	}
	return matched[from:to], total, nil
}

func itemMatches(it *domain.Item, f domain.ItemFilter) bool {
	if f.OwnerID != 0 && it.OwnerID != f.OwnerID {
		return false
	}
	if f.Category != "" && it.Category != f.Category {
		return false
	}
	if f.Location != "" && !containsFold(it.Location, f.Location) {
		return false
	}
	if f.Query != "" && !containsFold(it.Title, f.Query) && !containsFold(it.Description, f.Query) {
		return false
	}
	if f.AvailableOnly && !it.Available {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (r *itemRepository) ListIDs(_ context.Context) ([]int32, error) {
	var ids []int32
	err := r.c.do(func(st *state) error {
		for id := range st.items {
			ids = append(ids, id)
		}
		return nil
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, err
}

func (r *itemRepository) UpdateRating(_ context.Context, id int32, summary domain.RatingSummary) error {
	return r.c.do(func(st *state) error {
		it, ok := st.items[id]
		if !ok {
			return apperr.NotFound("item %d not found", id)
		}
		it.AverageRating = summary.Average
		it.ReviewCount = summary.Count
		st.items[id] = it
		return nil
	})
}

type bookingRepository struct{ c conn }

func (r *bookingRepository) Create(_ context.Context, b *domain.Booking) error {
	return r.c.do(func(st *state) error {
		b.ID = st.next("bookings")
		stamp(&b.CreatedOn)
		b.UpdatedOn = b.CreatedOn
		st.bookings[b.ID] = copyBooking(*b)
		return nil
	})
}

func (r *bookingRepository) GetByID(_ context.Context, id int32) (*domain.Booking, error) {
	var out domain.Booking
	err := r.c.do(func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return apperr.NotFound("booking %d not found", id)
		}
		out = copyBooking(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *bookingRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *bookingRepository) Update(_ context.Context, b *domain.Booking) error {
	return r.c.do(func(st *state) error {
		existing, ok := st.bookings[b.ID]
		if !ok {
			return apperr.NotFound("booking %d not found", b.ID)
		}
		existing.Status = b.Status
		existing.CancellationReason = b.CancellationReason
		existing.CancelledBy = b.CancelledBy
		stamp(&b.UpdatedOn)
		existing.UpdatedOn = b.UpdatedOn
		st.bookings[b.ID] = copyBooking(existing)
		return nil
	})
}

func (r *bookingRepository) Delete(_ context.Context, id int32) error {
	return r.c.do(func(st *state) error {
		if _, ok := st.bookings[id]; !ok {
			return apperr.NotFound("booking %d not found", id)
		}
		delete(st.bookings, id)
		return nil
	})
}

func (r *bookingRepository) FindOverlapping(_ context.Context, itemID int32, start, end time.Time) (*domain.Booking, error) {
	var found *domain.Booking
	err := r.c.do(func(st *state) error {
		var candidates []domain.Booking
		for _, b := range st.bookings {
			if b.ItemID == itemID {
				candidates = append(candidates, copyBooking(b))
			}
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].StartDate.Before(candidates[j].StartDate) })
		found = domain.FindConflict(candidates, start, end)
		return nil
	})
	return found, err
}

func (r *bookingRepository) List(_ context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.c.do(func(st *state) error {
		for _, b := range st.bookings {
			owner := st.items[b.ItemID].OwnerID
			if f.Matches(&b, owner) {
				out = append(out, copyBooking(b))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedOn.Equal(out[j].CreatedOn) {
			return out[i].CreatedOn.After(out[j].CreatedOn)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

type reviewRepository struct{ c conn }

func (r *reviewRepository) Create(_ context.Context, rv *domain.Review) error {
	return r.c.do(func(st *state) error {
		for _, existing := range st.reviews {
			if existing.ReviewerID != rv.ReviewerID {
				continue
			}
			if rv.ItemID != 0 && existing.ItemID == rv.ItemID {
				return apperr.Conflict("item already reviewed")
			}
			if rv.ItemID == 0 && existing.ItemID == 0 && existing.RevieweeID == rv.RevieweeID {
				return apperr.Conflict("user already reviewed")
			}
		}
		rv.ID = st.next("reviews")
		rv.CreatedOn = time.Now()
		st.reviews = append(st.reviews, *rv)
		return nil
	})
}

func (r *reviewRepository) ExistsForItem(_ context.Context, reviewerID, itemID int32) (bool, error) {
	var exists bool
	err := r.c.do(func(st *state) error {
		for _, rv := range st.reviews {
			if rv.ReviewerID == reviewerID && rv.ItemID == itemID {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r *reviewRepository) ExistsForReviewee(_ context.Context, reviewerID, revieweeID int32) (bool, error) {
	var exists bool
	err := r.c.do(func(st *state) error {
		for _, rv := range st.reviews {
			if rv.ReviewerID == reviewerID && rv.RevieweeID == revieweeID && rv.ItemID == 0 {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r *reviewRepository) List(_ context.Context, f domain.ReviewFilter) ([]domain.Review, error) {
	var out []domain.Review
	err := r.c.do(func(st *state) error {
		for _, rv := range st.reviews {
			if f.ItemID != 0 && rv.ItemID != f.ItemID {
				continue
			}
			if f.RevieweeID != 0 && rv.RevieweeID != f.RevieweeID {
				continue
			}
			out = append(out, rv)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

func (r *reviewRepository) RatingsForItem(_ context.Context, itemID int32) ([]int32, error) {
	var ratings []int32
	err := r.c.do(func(st *state) error {
		for _, rv := range st.reviews {
			if rv.ItemID == itemID {
				ratings = append(ratings, rv.Rating)
			}
		}
		return nil
	})
	return ratings, err
}

func (r *reviewRepository) RatingsForUser(_ context.Context, userID int32) ([]int32, error) {
	var ratings []int32
	err := r.c.do(func(st *state) error {
		for _, rv := range st.reviews {
			if rv.RevieweeID == userID {
				ratings = append(ratings, rv.Rating)
			}
		}
		return nil
	})
	return ratings, err
}

type paymentRepository struct{ c conn }

func (r *paymentRepository) Create(_ context.Context, p *domain.Payment) error {
	return r.c.do(func(st *state) error {
		for _, existing := range st.payments {
			if existing.ID == p.ID {
				return apperr.Conflict("payment %s already recorded", p.ID)
			}
		}
		stamp(&p.ProcessedOn)
		st.payments = append(st.payments, *p)
		return nil
	})
}

func (r *paymentRepository) ListByBooking(_ context.Context, bookingID int32) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.c.do(func(st *state) error {
		for _, p := range st.payments {
			if p.BookingID == bookingID {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProcessedOn.After(out[j].ProcessedOn) })
	return out, err
}
