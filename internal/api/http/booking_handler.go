package http

import (
	"net/http"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/service"
)

type BookingHandler struct {
	bookingSvc service.BookingService
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

type createBookingRequest struct {
	ItemID    int32  `json:"item_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type updateBookingRequest struct {
	Status             string `json:"status"`
	CancellationReason string `json:"cancellation_reason"`
}

type payBookingRequest struct {
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	CardNumber    string               `json:"card_number"`
}

type payBookingResponse struct {
	Booking bookingResponse `json:"booking"`
	Payment paymentResponse `json:"payment"`
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := h.bookingSvc.CreateBooking(r.Context(), actor, service.CreateBookingRequest{
		ItemID:    req.ItemID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapBooking(b))
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	bookings, err := h.bookingSvc.ListBookings(r.Context(), actor, service.ListBookingsRequest{
		As:     r.URL.Query().Get("as"),
		Status: r.URL.Query().Get("status"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": mapBookings(bookings)})
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	details, err := h.bookingSvc.GetBooking(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapBookingDetails(details))
}

// UpdateBooking requests a status change through the lifecycle engine.
func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	b, err := h.bookingSvc.RequestTransition(r.Context(), actor, id, domain.BookingStatus(req.Status),
		domain.TransitionPayload{CancellationReason: req.CancellationReason})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapBooking(b))
}

func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.bookingSvc.DeleteBooking(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) PayBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req payBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	b, p, err := h.bookingSvc.PayBooking(r.Context(), actor, service.PayBookingRequest{
		BookingID:  id,
		Method:     req.PaymentMethod,
		CardNumber: req.CardNumber,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, payBookingResponse{Booking: mapBooking(b), Payment: mapPayment(p)})
}
