package repository

import (
	"context"
	"errors"

	"github.com/webshop/cart-service/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

// CartRepository is the durable store contract. Consumers define this
// interface, not the MongoDB implementation.
type CartRepository interface {
	// FindByOwner returns the owner's cart or ErrCartNotFound.
	FindByOwner(ctx context.Context, ownerID int64) (*domain.Cart, error)
	// Save upserts the cart atomically, assigning its ID on first insert,
	// and returns the persisted state.
	Save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)
}
