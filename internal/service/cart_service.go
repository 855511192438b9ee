package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/webshop/cart-service/internal/cache"
	"github.com/webshop/cart-service/internal/domain"
	"github.com/webshop/cart-service/internal/repository"
)

// CartService keeps the durable store and the full-cart cache entry
// consistent: cache-aside reads, engine-side merge and total recompute,
// eviction strictly after a successful persist. All mutations for one
// owner are serialized by a per-owner lock so concurrent writes from the
// same owner cannot lose updates.
type CartService struct {
	repo  repository.CartRepository
	cache cache.Cache
	locks *ownerLocks
	sfg   singleflight.Group // Prevents cache stampede
	log   *slog.Logger
}

func NewCartService(repo repository.CartRepository, c cache.Cache, log *slog.Logger) *CartService {
	return &CartService{
		repo:  repo,
		cache: c,
		locks: newOwnerLocks(),
		log:   log,
	}
}

// GetCart returns the owner's cart, creating and persisting an empty one
// on first contact. A missing cart is never an error.
func (s *CartService) GetCart(ctx context.Context, ownerID int64) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(strconv.FormatInt(ownerID, 10), func() (interface{}, error) {
		cart, err := s.cache.GetCart(ctx, ownerID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("cache get failed, falling back to store", "owner_id", ownerID, "error", err)
		}

		// The owner lock covers load and repopulate so a concurrent
		// mutation cannot persist and evict between the two steps,
		// which would pin a stale pre-image in a never-expiring entry.
		unlock := s.locks.lock(ownerID)
		defer unlock()

		cart, err = s.repo.FindByOwner(ctx, ownerID)
		if errors.Is(err, repository.ErrCartNotFound) {
			cart, err = s.repo.Save(ctx, domain.NewCart(ownerID))
		}
		if err != nil {
			return nil, err
		}

		if errSet := s.cache.SetCart(ctx, ownerID, cart); errSet != nil {
			s.log.Warn("cache set failed", "owner_id", ownerID, "error", errSet)
		}

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem merges the item into the cart: an existing product accumulates
// quantity, a new product is appended. The cart is created if absent.
func (s *CartService) AddItem(ctx context.Context, ownerID int64, productID int64, productName string, quantity int, unitPrice float64) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, true, func(cart *domain.Cart) error {
		cart.MergeItem(domain.NewCartItem(productID, productName, quantity, unitPrice))
		return nil
	})
}

// UpdateItemQuantity overwrites the item's quantity; zero or less removes
// the item. Both the cart and the item must already exist.
func (s *CartService) UpdateItemQuantity(ctx context.Context, ownerID int64, productID int64, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, false, func(cart *domain.Cart) error {
		if !cart.SetItemQuantity(productID, quantity) {
			return repository.ErrItemNotFound
		}
		return nil
	})
}

// RemoveItem deletes the product from the cart. The cart must exist;
// removing an absent product is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, ownerID int64, productID int64) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, false, func(cart *domain.Cart) error {
		cart.RemoveItem(productID)
		return nil
	})
}

// ClearCart empties an existing cart.
func (s *CartService) ClearCart(ctx context.Context, ownerID int64) error {
	_, err := s.mutate(ctx, ownerID, false, func(cart *domain.Cart) error {
		cart.Clear()
		return nil
	})
	return err
}

// mutate runs the read-modify-write sequence under the owner lock: load
// the authoritative pre-image from the store (the cache is bypassed on
// write paths), apply the change, recompute the total, persist, and only
// then evict the cached entry. A failed persist leaves the cache entry
// alone; stale-and-cached beats evicted-before-durable.
func (s *CartService) mutate(ctx context.Context, ownerID int64, createIfMissing bool, apply func(*domain.Cart) error) (*domain.Cart, error) {
	unlock := s.locks.lock(ownerID)
	defer unlock()

	cart, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) || !createIfMissing {
			return nil, err
		}
		cart = domain.NewCart(ownerID)
	}

	if err := apply(cart); err != nil {
		return nil, err
	}
	cart.RecalculateTotal()

	saved, err := s.repo.Save(ctx, cart)
	if err != nil {
		return nil, err
	}

	if err := s.invalidate(ownerID); err != nil {
		return nil, err
	}

	return saved, nil
}

func (s *CartService) invalidate(ownerID int64) error {
	// detached from the request context so a caller timeout after the
	// persist cannot skip the eviction
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.cache.DeleteCart(ctx, ownerID); err != nil {
		s.log.Error("cache invalidate failed", "owner_id", ownerID, "error", err)
		return err
	}
	return nil
}
