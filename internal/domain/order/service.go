package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mealdash/order-service/internal/cache"
)

// DefaultCacheTTL bounds how long a cached order may be served without a
// repository read.
const DefaultCacheTTL = time.Hour

// Service orchestrates the repository and the cache and enforces the order
// lifecycle rules. It holds no per-request state; a single instance is shared
// by all requests.
type Service struct {
	repo  Repository
	cache cache.Cache
	lg    *zap.Logger
	ttl   time.Duration
}

// NewService creates a Service. A zero ttl falls back to DefaultCacheTTL.
func NewService(repo Repository, c cache.Cache, lg *zap.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		repo:  repo,
		cache: c,
		lg:    lg,
		ttl:   ttl,
	}
}

// CacheKey is the deterministic cache key for an order. It depends on the
// identifier alone, so invalidating this one key covers every update path.
func CacheKey(id uuid.UUID) string {
	return "order:" + id.String()
}

// Create validates and persists a new order. The cache is left cold: the first
// Get populates it.
func (s *Service) Create(ctx context.Context, p CreateParams) (Order, error) {
	o, err := New(p)
	if err != nil {
		return Order{}, err
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return Order{}, errors.Wrap(err, "create order")
	}
	s.lg.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("user_id", o.UserID.String()),
	)
	return o, nil
}

// Get returns the order, reading through the cache: a hit skips the repository
// entirely, a miss reads the repository and populates the cache.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	raw, err := s.cache.GetOrCompute(ctx, CacheKey(id), s.ttl, func(ctx context.Context) ([]byte, error) {
		o, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, &NotFoundError{ID: id}
			}
			return nil, errors.Wrap(err, "get order")
		}
		return json.Marshal(o)
	})
	if err != nil {
		return Order{}, err
	}

	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		// Undecodable entry: drop it and read the repository directly.
		s.lg.Warn("dropping undecodable cache entry", zap.String("order_id", id.String()), zap.Error(err))
		s.cache.Delete(ctx, CacheKey(id))
		o, err = s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return Order{}, &NotFoundError{ID: id}
			}
			return Order{}, errors.Wrap(err, "get order")
		}
		return o, nil
	}
	return o, nil
}

// Update replaces the mutable fields of an order and invalidates its cache
// entry. The read side is cache-first, same as Get.
func (s *Service) Update(ctx context.Context, id uuid.UUID, u Update) (Order, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	updated, err := current.Apply(u)
	if err != nil {
		return Order{}, err
	}
	if err := s.persist(ctx, updated); err != nil {
		return Order{}, err
	}
	s.lg.Info("order updated", zap.String("order_id", id.String()))
	return updated, nil
}

// Confirm transitions a pending order to confirmed. The current status is read
// from the repository, not the cache: acting on a stale status could confirm
// an already-cancelled order.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (Order, error) {
	return s.transition(ctx, id, Order.Confirm, "order confirmed")
}

// Cancel transitions a pending or confirmed order to cancelled. Reads the
// repository for the same reason as Confirm.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (Order, error) {
	return s.transition(ctx, id, Order.Cancel, "order cancelled")
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, step func(Order) (Order, error), msg string) (Order, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Order{}, &NotFoundError{ID: id}
		}
		return Order{}, errors.Wrap(err, "get order")
	}
	next, err := step(current)
	if err != nil {
		return Order{}, err
	}
	if err := s.persist(ctx, next); err != nil {
		return Order{}, err
	}
	s.lg.Info(msg, zap.String("order_id", id.String()), zap.String("status", string(next.Status)))
	return next, nil
}

func (s *Service) persist(ctx context.Context, o Order) error {
	if err := s.repo.Update(ctx, o); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{ID: o.ID}
		}
		return errors.Wrap(err, "update order")
	}
	s.cache.Delete(ctx, CacheKey(o.ID))
	return nil
}

// Delete removes the order and reports whether a row was actually deleted.
// The cache entry is invalidated unconditionally, so deletion is idempotent at
// this boundary; mapping "nothing deleted" to a client-facing 404 is the API
// layer's business.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, errors.Wrap(err, "delete order")
	}
	s.cache.Delete(ctx, CacheKey(id))
	if deleted {
		s.lg.Info("order deleted", zap.String("order_id", id.String()))
	}
	return deleted, nil
}

// ListByUser returns a page of the user's orders, newest first. Listings are
// not cached: pagination keys make invalidation fragile for little benefit.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (Page, error) {
	page, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return Page{}, errors.Wrap(err, "list user orders")
	}
	return page, nil
}

// ListByRestaurant returns a page of the restaurant's orders, newest first.
func (s *Service) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit, offset int) (Page, error) {
	page, err := s.repo.ListByRestaurant(ctx, restaurantID, limit, offset)
	if err != nil {
		return Page{}, errors.Wrap(err, "list restaurant orders")
	}
	return page, nil
}
