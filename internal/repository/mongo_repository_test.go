package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/webshop/cart-service/internal/domain"
)

func setupTestDB(t *testing.T) (CartRepository, func()) {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	repo := NewMongoRepository(db)

	err = EnsureIndexes(ctx, db)
	require.NoError(t, err)

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func TestFindByOwner_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cart, err := repo.FindByOwner(ctx, 404)

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestSave_InsertAssignsID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cart := domain.NewCart(7)
	cart.MergeItem(domain.NewCartItem(101, "Widget", 2, 50.0))
	cart.RecalculateTotal()

	saved, err := repo.Save(ctx, cart)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())
}

func TestSave_UpsertIsIdempotentPerOwner(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	cart := domain.NewCart(7)
	cart.MergeItem(domain.NewCartItem(101, "Widget", 2, 50.0))
	cart.RecalculateTotal()
	saved, err := repo.Save(ctx, cart)
	require.NoError(t, err)

	saved.MergeItem(domain.NewCartItem(102, "Gadget", 1, 25.0))
	saved.RecalculateTotal()
	_, err = repo.Save(ctx, saved)
	require.NoError(t, err)

	found, err := repo.FindByOwner(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, found.Items, 2)
	assert.Equal(t, 125.0, found.TotalAmount)
	assert.Equal(t, saved.ID, found.ID)
}

func TestSave_RoundTripPreservesItems(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	cart := domain.NewCart(9)
	cart.MergeItem(domain.NewCartItem(1, "A", 2, 10.0))
	cart.MergeItem(domain.NewCartItem(2, "B", 1, 20.0))
	cart.RecalculateTotal()

	_, err := repo.Save(ctx, cart)
	require.NoError(t, err)

	found, err := repo.FindByOwner(ctx, 9)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, int64(1), found.Items[0].ProductID)
	assert.Equal(t, "A", found.Items[0].ProductName)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.Equal(t, 10.0, found.Items[0].UnitPrice)
	assert.NotEmpty(t, found.Items[0].ID)
	assert.Equal(t, 40.0, found.TotalAmount)
}

func TestSave_EmptyCart(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	_, err := repo.Save(ctx, domain.NewCart(11))
	require.NoError(t, err)

	found, err := repo.FindByOwner(ctx, 11)
	require.NoError(t, err)
	assert.Empty(t, found.Items)
	assert.Equal(t, 0.0, found.TotalAmount)
}
