package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mealdash/order-service/internal/domain/order"
	"github.com/mealdash/order-service/internal/repository"
)

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "malformed JSON body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeBadRequest(w, r, "user_id must be a valid UUID")
		return
	}
	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		writeBadRequest(w, r, "restaurant_id must be a valid UUID")
		return
	}

	o, err := h.orders.Create(r.Context(), order.CreateParams{
		UserID:              userID,
		RestaurantID:        restaurantID,
		Items:               toDomainItems(req.Items),
		TotalPrice:          decimal.NewFromFloat(req.TotalPrice),
		DeliveryAddress:     req.DeliveryAddress,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "malformed JSON body")
		return
	}

	o, err := h.orders.Update(r.Context(), id, order.Update{
		Items:               toDomainItems(req.Items),
		DeliveryAddress:     req.DeliveryAddress,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.orders.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, r, &order.NotFoundError{ID: id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.orders.Confirm(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.orders.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	page, err := h.orders.ListByUser(r.Context(), id, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toListResponse(page, limit, offset))
}

func (h *Handler) listRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	page, err := h.orders.ListByRestaurant(r.Context(), id, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toListResponse(page, limit, offset))
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, r, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// pagination parses limit/offset query params, clamping to the repository's
// bounds so handlers and the service see the same effective page size.
func pagination(r *http.Request) (limit, offset int) {
	limit = DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			offset = v
		}
	}
	if limit < 1 {
		limit = DefaultListLimit
	}
	if limit > repository.MaxListLimit {
		limit = repository.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// DefaultListLimit mirrors the repository default so list responses report the
// limit actually applied.
const DefaultListLimit = repository.DefaultListLimit
