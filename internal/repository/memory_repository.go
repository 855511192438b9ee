package repository

import (
	"context"
	"strconv"
	"sync"

	"github.com/webshop/cart-service/internal/domain"
)

// memoryRepository is a map-backed CartRepository for local runs and
// tests. Carts are cloned at the boundary so stored state is never
// shared with callers.
type memoryRepository struct {
	m      sync.Mutex
	carts  map[int64]*domain.Cart
	nextID int64
}

func NewMemoryRepository() CartRepository {
	return &memoryRepository{carts: make(map[int64]*domain.Cart)}
}

func (r *memoryRepository) FindByOwner(_ context.Context, ownerID int64) (*domain.Cart, error) {
	r.m.Lock()
	defer r.m.Unlock()

	cart, ok := r.carts[ownerID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (r *memoryRepository) Save(_ context.Context, cart *domain.Cart) (*domain.Cart, error) {
	r.m.Lock()
	defer r.m.Unlock()

	saved := cart.Clone()
	if saved.ID == "" {
		r.nextID++
		saved.ID = strconv.FormatInt(r.nextID, 10)
	}
	r.carts[cart.OwnerID] = saved
	return saved.Clone(), nil
}
