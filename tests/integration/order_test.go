//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mealdash/order-service/internal/domain/order"
	"github.com/mealdash/order-service/internal/repository"
)

func createParams() order.CreateParams {
	return order.CreateParams{
		UserID:       uuid.New(),
		RestaurantID: uuid.New(),
		Items: []order.Item{
			{ItemID: "ramen-01", Name: "Tonkotsu Ramen", Price: decimal.NewFromFloat(14.50), Quantity: 1},
			{ItemID: "gyoza-05", Name: "Gyoza", Price: decimal.NewFromFloat(6.00), Quantity: 2, Notes: "extra sauce"},
		},
		TotalPrice:      decimal.NewFromFloat(26.50),
		DeliveryAddress: "42 Noodle Way",
	}
}

func TestOrderRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.Create(ctx, createParams())
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, order.StatusPending, got.Status)
	require.Len(t, got.Items, 2)
	assert.True(t, got.Items[0].Price.Equal(decimal.NewFromFloat(14.50)))
	assert.Equal(t, "extra sauce", got.Items[1].Notes)
	assert.True(t, got.TotalPrice.Equal(decimal.NewFromFloat(26.50)))
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.Create(ctx, createParams())
	require.NoError(t, err)

	confirmed, err := svc.Confirm(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, confirmed.Status)

	_, err = svc.Confirm(ctx, created.ID)
	var statusErr *order.InvalidStatusError
	require.ErrorAs(t, err, &statusErr)

	cancelled, err := svc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	// Cache must reflect the final state, not a stale pre-transition copy.
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.Create(ctx, createParams())
	require.NoError(t, err)

	// Warm the cache.
	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)

	addr := "7 Other Road"
	_, err = svc.Update(ctx, created.ID, order.Update{DeliveryAddress: &addr})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "7 Other Road", got.DeliveryAddress)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.Create(ctx, createParams())
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestDuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewOrderRepository(pool)

	o, err := order.New(createParams())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, o))

	err = repo.Create(ctx, o)
	var dup *order.DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, o.ID, dup.ID)
}

func TestListByUserPagination(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		p := createParams()
		p.UserID = userID
		_, err := svc.Create(ctx, p)
		require.NoError(t, err)
	}

	page, err := svc.ListByUser(ctx, userID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Orders, 2)

	// Newest first, no overlap between pages.
	next, err := svc.ListByUser(ctx, userID, 2, 2)
	require.NoError(t, err)
	require.Len(t, next.Orders, 2)
	assert.NotEqual(t, page.Orders[0].ID, next.Orders[0].ID)
	assert.False(t, page.Orders[0].CreatedAt.Before(page.Orders[1].CreatedAt))

	// An offset past the last row yields an empty page but the real total,
	// so clients walking pages see a stable count to the end.
	past, err := svc.ListByUser(ctx, userID, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, past.Orders)
	assert.Equal(t, 5, past.Total)
}

func TestListByRestaurant(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	restaurantID := uuid.New()

	p := createParams()
	p.RestaurantID = restaurantID
	created, err := svc.Create(ctx, p)
	require.NoError(t, err)

	page, err := svc.ListByRestaurant(ctx, restaurantID, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, created.ID, page.Orders[0].ID)
}

func TestConcurrentTransitions(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.Create(ctx, createParams())
	require.NoError(t, err)

	// Many goroutines race to confirm; every attempt must come back with a
	// definite answer and the order must end up confirmed exactly once.
	var g errgroup.Group
	results := make([]error, 16)
	for i := range results {
		g.Go(func() error {
			_, results[i] = svc.Confirm(ctx, created.ID)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok int
	for _, err := range results {
		if err == nil {
			ok++
		} else {
			var statusErr *order.InvalidStatusError
			assert.ErrorAs(t, err, &statusErr)
		}
	}
	assert.GreaterOrEqual(t, ok, 1)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, got.Status)
}
