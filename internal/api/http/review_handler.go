package http

import (
	"net/http"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/service"
)

type ReviewHandler struct {
	reviewSvc service.ReviewService
}

func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

type createReviewRequest struct {
	ItemID     int32  `json:"item_id"`
	RevieweeID int32  `json:"reviewee_id"`
	Rating     int32  `json:"rating"`
	Comment    string `json:"comment"`
}

func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	review, err := h.reviewSvc.CreateReview(r.Context(), actor, service.CreateReviewRequest(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	itemID, err := queryID(r, "item_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	revieweeID, err := queryID(r, "reviewee_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	reviews, err := h.reviewSvc.ListReviews(r.Context(), domain.ReviewFilter{ItemID: itemID, RevieweeID: revieweeID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}
