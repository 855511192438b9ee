package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/webshop/cart-service/internal/domain"
)

// BreakerCache decorates a Cache with a circuit breaker so a dead cache
// backend degrades to misses instead of stalling every request. Reads
// behind an open breaker report ErrCacheMiss; writes and evictions report
// the breaker error so callers keep the invalidate-after-persist
// ordering visible.
type BreakerCache struct {
	inner Cache
	cb    *gobreaker.CircuitBreaker[any]
}

func NewBreakerCache(inner Cache) *BreakerCache {
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "cart-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// a miss is a perfectly healthy cache answer
			return err == nil || errors.Is(err, ErrCacheMiss)
		},
	})

	return &BreakerCache{inner: inner, cb: cb}
}

func (b *BreakerCache) GetCart(ctx context.Context, ownerID int64) (*domain.Cart, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.inner.GetCart(ctx, ownerID)
	})
	if err != nil {
		if isBreakerOpen(err) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return v.(*domain.Cart), nil
}

func (b *BreakerCache) SetCart(ctx context.Context, ownerID int64, cart *domain.Cart) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.inner.SetCart(ctx, ownerID, cart)
	})
	return err
}

func (b *BreakerCache) DeleteCart(ctx context.Context, ownerID int64) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.inner.DeleteCart(ctx, ownerID)
	})
	return err
}

func (b *BreakerCache) GetSummary(ctx context.Context, ownerID int64) (*domain.CartSummary, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.inner.GetSummary(ctx, ownerID)
	})
	if err != nil {
		if isBreakerOpen(err) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return v.(*domain.CartSummary), nil
}

func (b *BreakerCache) SetSummary(ctx context.Context, ownerID int64, summary *domain.CartSummary) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.inner.SetSummary(ctx, ownerID, summary)
	})
	return err
}

func isBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
