package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mealdash/order-service/internal/domain/order"
)

// ItemPayload is the wire shape of a line item. Prices cross the boundary as
// JSON numbers and are converted to decimals immediately.
type ItemPayload struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Notes    string  `json:"notes,omitempty"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	UserID              string        `json:"user_id"`
	RestaurantID        string        `json:"restaurant_id"`
	Items               []ItemPayload `json:"items"`
	TotalPrice          float64       `json:"total_price"`
	DeliveryAddress     string        `json:"delivery_address"`
	SpecialInstructions string        `json:"special_instructions,omitempty"`
}

// UpdateOrderRequest is the body of PUT /orders/{id}. Absent fields are left
// untouched; only items, delivery address and special instructions are
// mutable.
type UpdateOrderRequest struct {
	Items               []ItemPayload `json:"items,omitempty"`
	DeliveryAddress     *string       `json:"delivery_address,omitempty"`
	SpecialInstructions *string       `json:"special_instructions,omitempty"`
}

// OrderResponse is the wire shape of an order.
type OrderResponse struct {
	ID                  string        `json:"id"`
	UserID              string        `json:"user_id"`
	RestaurantID        string        `json:"restaurant_id"`
	Items               []ItemPayload `json:"items"`
	Status              string        `json:"status"`
	TotalPrice          float64       `json:"total_price"`
	DeliveryAddress     string        `json:"delivery_address"`
	SpecialInstructions string        `json:"special_instructions,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// OrderListResponse is one page of orders plus pagination data.
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ErrorResponse is the body of every non-2xx answer. Code is a stable machine
// readable string for client branching.
type ErrorResponse struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func toDomainItems(items []ItemPayload) []order.Item {
	if items == nil {
		return nil
	}
	out := make([]order.Item, len(items))
	for i, it := range items {
		out[i] = order.Item{
			ItemID:   it.ItemID,
			Name:     it.Name,
			Price:    decimal.NewFromFloat(it.Price),
			Quantity: it.Quantity,
			Notes:    it.Notes,
		}
	}
	return out
}

func toOrderResponse(o order.Order) OrderResponse {
	items := make([]ItemPayload, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemPayload{
			ItemID:   it.ItemID,
			Name:     it.Name,
			Price:    it.Price.InexactFloat64(),
			Quantity: it.Quantity,
			Notes:    it.Notes,
		}
	}
	return OrderResponse{
		ID:                  o.ID.String(),
		UserID:              o.UserID.String(),
		RestaurantID:        o.RestaurantID.String(),
		Items:               items,
		Status:              string(o.Status),
		TotalPrice:          o.TotalPrice.InexactFloat64(),
		DeliveryAddress:     o.DeliveryAddress,
		SpecialInstructions: o.SpecialInstructions,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

func toListResponse(p order.Page, limit, offset int) OrderListResponse {
	orders := make([]OrderResponse, len(p.Orders))
	for i, o := range p.Orders {
		orders[i] = toOrderResponse(o)
	}
	return OrderListResponse{
		Orders: orders,
		Total:  p.Total,
		Limit:  limit,
		Offset: offset,
	}
}
