package cache

import (
	"context"
	"errors"

	"github.com/webshop/cart-service/internal/domain"
)

// Cache holds two kinds of entries with different lifetimes: the full
// cart (no expiry, evicted explicitly after every durable write) and the
// summary (TTL-bound, never evicted by mutations).
type Cache interface {
	GetCart(ctx context.Context, ownerID int64) (*domain.Cart, error)
	SetCart(ctx context.Context, ownerID int64, cart *domain.Cart) error
	DeleteCart(ctx context.Context, ownerID int64) error

	GetSummary(ctx context.Context, ownerID int64) (*domain.CartSummary, error)
	SetSummary(ctx context.Context, ownerID int64, summary *domain.CartSummary) error
}

var ErrCacheMiss = errors.New("cache miss")
