package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Item is a single line item of an order. Items are immutable value data:
// updates replace the whole slice, there is no per-item patching.
type Item struct {
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Notes    string          `json:"notes,omitempty"`
}

// Order is the aggregate root. It has value semantics: mutating operations
// return a new Order and never alias the receiver's items slice.
type Order struct {
	ID                  uuid.UUID       `json:"id"`
	UserID              uuid.UUID       `json:"user_id"`
	RestaurantID        uuid.UUID       `json:"restaurant_id"`
	Items               []Item          `json:"items"`
	Status              Status          `json:"status"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	DeliveryAddress     string          `json:"delivery_address"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// CreateParams holds the caller-supplied fields for a new order. Status is not
// part of the input: every order starts as pending.
type CreateParams struct {
	UserID              uuid.UUID
	RestaurantID        uuid.UUID
	Items               []Item
	TotalPrice          decimal.Decimal
	DeliveryAddress     string
	SpecialInstructions string
}

// Update holds the fields that may change after creation. A nil Items slice or
// a nil string pointer leaves the corresponding field untouched.
type Update struct {
	Items               []Item
	DeliveryAddress     *string
	SpecialInstructions *string
}

// New validates params and builds a pending order with a fresh identifier.
func New(p CreateParams) (Order, error) {
	now := time.Now().UTC()
	o := Order{
		ID:                  uuid.New(),
		UserID:              p.UserID,
		RestaurantID:        p.RestaurantID,
		Items:               cloneItems(p.Items),
		Status:              StatusPending,
		TotalPrice:          p.TotalPrice,
		DeliveryAddress:     p.DeliveryAddress,
		SpecialInstructions: p.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := o.validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (o Order) validate() error {
	if o.TotalPrice.IsNegative() {
		return &ValidationError{Field: "total_price", Reason: "must not be negative"}
	}
	if len(o.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "order must contain at least one item"}
	}
	for _, it := range o.Items {
		if it.Price.IsNegative() {
			return &ValidationError{Field: "items", Reason: "item price must not be negative"}
		}
		if it.Quantity < 1 {
			return &ValidationError{Field: "items", Reason: "item quantity must be at least 1"}
		}
	}
	if o.DeliveryAddress == "" {
		return &ValidationError{Field: "delivery_address", Reason: "must not be empty"}
	}
	return nil
}

// Confirm transitions the order from pending to confirmed.
func (o Order) Confirm() (Order, error) {
	if o.Status != StatusPending {
		return o, &InvalidStatusError{Op: "confirm", Status: o.Status}
	}
	o.Status = StatusConfirmed
	o.UpdatedAt = time.Now().UTC()
	o.Items = cloneItems(o.Items)
	return o, nil
}

// Cancel transitions the order to cancelled. Only pending and confirmed orders
// can be cancelled.
func (o Order) Cancel() (Order, error) {
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return o, &InvalidStatusError{Op: "cancel", Status: o.Status}
	}
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now().UTC()
	o.Items = cloneItems(o.Items)
	return o, nil
}

// IsTerminal reports whether no further transition is defined for the order.
func (o Order) IsTerminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// Apply replaces the mutable fields (items, delivery address, special
// instructions), re-validates and refreshes UpdatedAt. Status, total price and
// identifiers cannot change through an update.
func (o Order) Apply(u Update) (Order, error) {
	if u.Items != nil {
		o.Items = cloneItems(u.Items)
	} else {
		o.Items = cloneItems(o.Items)
	}
	if u.DeliveryAddress != nil {
		o.DeliveryAddress = *u.DeliveryAddress
	}
	if u.SpecialInstructions != nil {
		o.SpecialInstructions = *u.SpecialInstructions
	}
	if err := o.validate(); err != nil {
		return Order{}, err
	}
	o.UpdatedAt = time.Now().UTC()
	return o, nil
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
