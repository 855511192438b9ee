package cache

import (
	"context"

	"github.com/bjaus/stash"

	"github.com/webshop/cart-service/internal/domain"
)

// MemoryCache is a process-local Cache for single-instance deployments
// and tests. Carts are cloned on the way in and out so cached state is
// never shared with callers.
type MemoryCache struct {
	carts     *stash.Cache[int64, *domain.Cart]
	summaries *stash.Cache[int64, *domain.CartSummary]
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		carts: stash.New[int64, *domain.Cart](),
		summaries: stash.New[int64, *domain.CartSummary](
			stash.WithTTL[int64, *domain.CartSummary](summaryTTL),
		),
	}
}

func (m *MemoryCache) GetCart(ctx context.Context, ownerID int64) (*domain.Cart, error) {
	cart, ok, err := m.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCacheMiss
	}
	return cart.Clone(), nil
}

func (m *MemoryCache) SetCart(ctx context.Context, ownerID int64, cart *domain.Cart) error {
	return m.carts.Set(ctx, ownerID, cart.Clone())
}

func (m *MemoryCache) DeleteCart(ctx context.Context, ownerID int64) error {
	return m.carts.Delete(ctx, ownerID)
}

func (m *MemoryCache) GetSummary(ctx context.Context, ownerID int64) (*domain.CartSummary, error) {
	summary, ok, err := m.summaries.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCacheMiss
	}
	cp := *summary
	return &cp, nil
}

func (m *MemoryCache) SetSummary(ctx context.Context, ownerID int64, summary *domain.CartSummary) error {
	cp := *summary
	return m.summaries.Set(ctx, ownerID, &cp)
}
