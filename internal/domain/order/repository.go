package order

import (
	"context"

	"github.com/google/uuid"
)

// Page is one page of a listing plus the total number of matching orders.
type Page struct {
	Orders []Order
	Total  int
}

// Repository defines persistence operations for orders.
//
// GetByID returns ErrNotFound for an absent row. Delete reports whether a row
// was actually removed; deleting a missing order is not an error.
type Repository interface {
	Create(ctx context.Context, o Order) error
	GetByID(ctx context.Context, id uuid.UUID) (Order, error)
	Update(ctx context.Context, o Order) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (Page, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit, offset int) (Page, error)
}
