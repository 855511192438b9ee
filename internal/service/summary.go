package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/webshop/cart-service/internal/cache"
	"github.com/webshop/cart-service/internal/domain"
	"github.com/webshop/cart-service/internal/repository"
)

// SummaryProjector serves the derived cart aggregate from its own cache
// entry. The entry self-expires by TTL and is deliberately not evicted by
// cart mutations, so a summary may lag the store by up to one TTL window.
type SummaryProjector struct {
	repo  repository.CartRepository
	cache cache.Cache
	now   func() time.Time
	log   *slog.Logger
}

func NewSummaryProjector(repo repository.CartRepository, c cache.Cache, log *slog.Logger) *SummaryProjector {
	return &SummaryProjector{
		repo:  repo,
		cache: c,
		now:   time.Now,
		log:   log,
	}
}

// GetSummary returns the cached summary when present, otherwise projects
// a fresh one from the store. An owner without a cart projects as zero
// values; no cart is materialized.
func (p *SummaryProjector) GetSummary(ctx context.Context, ownerID int64) (*domain.CartSummary, error) {
	summary, err := p.cache.GetSummary(ctx, ownerID)
	if err == nil {
		return summary, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		p.log.Warn("summary cache get failed, falling back to store", "owner_id", ownerID, "error", err)
	}

	cart, err := p.repo.FindByOwner(ctx, ownerID)
	if errors.Is(err, repository.ErrCartNotFound) {
		cart = domain.NewCart(ownerID)
	} else if err != nil {
		return nil, err
	}

	summary = cart.Summarize(p.now())

	if errSet := p.cache.SetSummary(ctx, ownerID, summary); errSet != nil {
		p.log.Warn("summary cache set failed", "owner_id", ownerID, "error", errSet)
	}

	return summary, nil
}
