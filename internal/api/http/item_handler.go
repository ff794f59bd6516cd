package http

import (
	"net/http"
	"strconv"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/service"
)

type ItemHandler struct {
	itemSvc    service.ItemService
	bookingSvc service.BookingService
}

func NewItemHandler(itemSvc service.ItemService, bookingSvc service.BookingService) *ItemHandler {
	return &ItemHandler{itemSvc: itemSvc, bookingSvc: bookingSvc}
}

type createItemRequest struct {
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	PricePerDayCents int64               `json:"price_per_day_cents"`
	ImageURL         string              `json:"image_url"`
	Category         domain.ItemCategory `json:"category"`
	Location         string              `json:"location"`
}

type listItemsResponse struct {
	Items      []itemResponse `json:"items"`
	TotalCount int32          `json:"total_count"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"page_size"`
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	actor, err := ActorFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.itemSvc.CreateItem(r.Context(), actor, &domain.Item{
		Title:            req.Title,
		Description:      req.Description,
		PricePerDayCents: req.PricePerDayCents,
		ImageURL:         req.ImageURL,
		Category:         req.Category,
		Location:         req.Location,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapItem(item))
}

func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.itemSvc.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapItem(item))
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ownerID, err := queryID(r, "owner_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter := domain.ItemFilter{
		OwnerID:       ownerID,
		Category:      domain.ItemCategory(q.Get("category")),
		Location:      q.Get("location"),
		Query:         q.Get("q"),
		AvailableOnly: q.Get("available") == "true",
	}
	if v := q.Get("page"); v != "" {
		p, _ := strconv.Atoi(v)
		filter.Page = int32(p)
	}
	if v := q.Get("page_size"); v != "" {
		p, _ := strconv.Atoi(v)
		filter.PageSize = int32(p)
	}

	items, total, err := h.itemSvc.ListItems(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter.Normalize()
	writeJSON(w, http.StatusOK, listItemsResponse{
		Items:      mapItems(items),
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	})
}

func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
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
	var patch domain.ItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.itemSvc.UpdateItem(r.Context(), actor, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapItem(item))
}

func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
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
	if err := h.itemSvc.DeleteItem(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QuotePrice prices a date range against the item's rate and reports whether
// the range is still free.
func (h *ItemHandler) QuotePrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := parseDate("start_date", r.URL.Query().Get("start_date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseDate("end_date", r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	quote, err := h.itemSvc.QuotePrice(r.Context(), id, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	conflict, err := h.bookingSvc.CheckOverlap(r.Context(), id, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := quoteResponse{PriceBreakdown: *quote, Available: conflict == nil}
	if conflict != nil {
		// Only the blocked dates of someone else's booking are exposed.
		resp.BlockedFrom = &conflict.StartDate
		resp.BlockedUntil = &conflict.EndDate
	}
	writeJSON(w, http.StatusOK, resp)
}
