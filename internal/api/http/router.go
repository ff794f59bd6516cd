package http

import (
	"context"
	"net/http"
	"time"

	"rentshare-backend/internal/security"

	"github.com/gorilla/mux"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Items    *ItemHandler
	Bookings *BookingHandler
	Reviews  *ReviewHandler
	Users    *UserHandler
}

// NewRouter wires the /api/v1 routes and the middleware chain.
func NewRouter(h Handlers, tm security.TokenManager, health Pinger) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID, AccessLog, Recover, NewAuthMiddleware(tm).Handler)

	r.HandleFunc("/healthz", healthHandler(health)).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/items", h.Items.ListItems).Methods(http.MethodGet)
	api.HandleFunc("/items", h.Items.CreateItem).Methods(http.MethodPost)
	api.HandleFunc("/items/{id}", h.Items.GetItem).Methods(http.MethodGet)
	api.HandleFunc("/items/{id}", h.Items.UpdateItem).Methods(http.MethodPatch)
	api.HandleFunc("/items/{id}", h.Items.DeleteItem).Methods(http.MethodDelete)
	api.HandleFunc("/items/{id}/quote", h.Items.QuotePrice).Methods(http.MethodGet)

	api.HandleFunc("/bookings", h.Bookings.ListBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings", h.Bookings.CreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}", h.Bookings.GetBooking).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}", h.Bookings.UpdateBooking).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{id}", h.Bookings.DeleteBooking).Methods(http.MethodDelete)
	api.HandleFunc("/bookings/{id}/payments", h.Bookings.PayBooking).Methods(http.MethodPost)

	api.HandleFunc("/reviews", h.Reviews.ListReviews).Methods(http.MethodGet)
	api.HandleFunc("/reviews", h.Reviews.CreateReview).Methods(http.MethodPost)

	// "me" must be registered before the {id} route.
	api.HandleFunc("/users/me", h.Users.GetMe).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.Users.GetUser).Methods(http.MethodGet)

	return r
}

func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
