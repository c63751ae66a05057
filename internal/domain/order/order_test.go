package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testUserID       = uuid.MustParse("8a3e26ff-4b9c-4f2a-9c51-111111111111")
	testRestaurantID = uuid.MustParse("d41c9a02-77e5-41f3-8a86-222222222222")
)

func validParams() CreateParams {
	return CreateParams{
		UserID:       testUserID,
		RestaurantID: testRestaurantID,
		Items: []Item{
			{ItemID: "margherita", Name: "Margherita", Price: decimal.RequireFromString("12.99"), Quantity: 2},
		},
		TotalPrice:      decimal.RequireFromString("25.98"),
		DeliveryAddress: "1 Main St",
	}
}

func TestNew(t *testing.T) {
	o, err := New(validParams())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.NotEqual(t, o.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.False(t, o.UpdatedAt.Before(o.CreatedAt))
	assert.False(t, o.IsTerminal())
}

func TestNew_ForcesPendingStatus(t *testing.T) {
	// Status is not an input; there is no way to construct anything else.
	o, err := New(validParams())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateParams)
		field  string
	}{
		{
			name:   "negative total price",
			mutate: func(p *CreateParams) { p.TotalPrice = decimal.RequireFromString("-0.01") },
			field:  "total_price",
		},
		{
			name:   "no items",
			mutate: func(p *CreateParams) { p.Items = nil },
			field:  "items",
		},
		{
			name:   "negative item price",
			mutate: func(p *CreateParams) { p.Items[0].Price = decimal.RequireFromString("-1") },
			field:  "items",
		},
		{
			name:   "zero quantity",
			mutate: func(p *CreateParams) { p.Items[0].Quantity = 0 },
			field:  "items",
		},
		{
			name:   "negative quantity",
			mutate: func(p *CreateParams) { p.Items[0].Quantity = -3 },
			field:  "items",
		},
		{
			name:   "empty delivery address",
			mutate: func(p *CreateParams) { p.DeliveryAddress = "" },
			field:  "delivery_address",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)

			_, err := New(p)

			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.field, valErr.Field)
		})
	}
}

func TestNew_ZeroTotalPriceAllowed(t *testing.T) {
	p := validParams()
	p.TotalPrice = decimal.Zero
	p.Items[0].Price = decimal.Zero

	_, err := New(p)
	require.NoError(t, err)
}

func TestConfirm(t *testing.T) {
	o, err := New(validParams())
	require.NoError(t, err)

	confirmed, err := o.Confirm()
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.False(t, confirmed.UpdatedAt.Before(o.UpdatedAt))

	// Value semantics: the original is untouched.
	assert.Equal(t, StatusPending, o.Status)
}

func TestConfirm_OnlyFromPending(t *testing.T) {
	for _, status := range []Status{StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			o, err := New(validParams())
			require.NoError(t, err)
			o.Status = status

			got, err := o.Confirm()

			var stErr *InvalidStatusError
			require.ErrorAs(t, err, &stErr)
			assert.Equal(t, "confirm", stErr.Op)
			assert.Equal(t, status, got.Status)
		})
	}
}

func TestCancel_FromPendingAndConfirmed(t *testing.T) {
	o, err := New(validParams())
	require.NoError(t, err)

	cancelled, err := o.Cancel()
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.True(t, cancelled.IsTerminal())

	confirmed, err := o.Confirm()
	require.NoError(t, err)
	cancelled, err = confirmed.Cancel()
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestCancel_Illegal(t *testing.T) {
	for _, status := range []Status{StatusPreparing, StatusReady, StatusCompleted, StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			o, err := New(validParams())
			require.NoError(t, err)
			o.Status = status

			got, err := o.Cancel()

			var stErr *InvalidStatusError
			require.ErrorAs(t, err, &stErr)
			assert.Equal(t, status, got.Status)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	o, err := New(validParams())
	require.NoError(t, err)

	terminal := map[Status]bool{
		StatusPending:   false,
		StatusConfirmed: false,
		StatusPreparing: false,
		StatusReady:     false,
		StatusCompleted: true,
		StatusCancelled: true,
	}
	for status, want := range terminal {
		o.Status = status
		assert.Equal(t, want, o.IsTerminal(), string(status))
	}
}

func TestApply(t *testing.T) {
	o, err := New(validParams())
	require.NoError(t, err)

	addr := "9 Side St"
	notes := "ring twice"
	updated, err := o.Apply(Update{
		Items: []Item{
			{ItemID: "calzone", Name: "Calzone", Price: decimal.RequireFromString("9.50"), Quantity: 1},
		},
		DeliveryAddress:     &addr,
		SpecialInstructions: &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, "9 Side St", updated.DeliveryAddress)
	assert.Equal(t, "ring twice", updated.SpecialInstructions)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "calzone", updated.Items[0].ItemID)
	// Status and total price are not mutable through an update.
	assert.Equal(t, o.Status, updated.Status)
	assert.True(t, o.TotalPrice.Equal(updated.TotalPrice))

	// The original keeps its items.
	require.Len(t, o.Items, 1)
	assert.Equal(t, "margherita", o.Items[0].ItemID)
}

func TestApply_PartialUpdate(t *testing.T) {
	o, err := New(validParams())
	require.NoError(t, err)

	notes := "leave at door"
	updated, err := o.Apply(Update{SpecialInstructions: &notes})
	require.NoError(t, err)

	assert.Equal(t, "leave at door", updated.SpecialInstructions)
	assert.Equal(t, o.DeliveryAddress, updated.DeliveryAddress)
	assert.Equal(t, o.Items, updated.Items)
}

func TestApply_Validates(t *testing.T) {
	o, err := New(validParams())
	require.NoError(t, err)

	empty := ""
	_, err = o.Apply(Update{DeliveryAddress: &empty})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "delivery_address", valErr.Field)
}

func TestApply_NoItemAliasing(t *testing.T) {
	o, err := New(validParams())
	require.NoError(t, err)

	items := []Item{
		{ItemID: "salad", Name: "Salad", Price: decimal.RequireFromString("6.00"), Quantity: 1},
	}
	updated, err := o.Apply(Update{Items: items})
	require.NoError(t, err)

	items[0].Quantity = 99
	assert.Equal(t, 1, updated.Items[0].Quantity)
}
