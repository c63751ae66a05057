// Package api translates HTTP requests into order service calls and service
// results and errors into JSON responses.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mealdash/order-service/internal/domain/order"
)

// Handler holds the order service and exposes the HTTP surface.
type Handler struct {
	orders *order.Service
}

// NewHandler constructs a Handler around the given service.
func NewHandler(orders *order.Service) *Handler {
	return &Handler{orders: orders}
}

// Routes mounts the order endpoints on a fresh chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/user/{id}", h.listUserOrders)
		r.Get("/restaurant/{id}", h.listRestaurantOrders)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getOrder)
			r.Put("/", h.updateOrder)
			r.Delete("/", h.deleteOrder)
			r.Post("/confirm", h.confirmOrder)
			r.Post("/cancel", h.cancelOrder)
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Warn("write response failed", zap.Error(err))
	}
}
