package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agromarket/internal/domain/catalog"
)

func sampleCatalog() []catalog.Product {
	updated := time.UnixMilli(1700000000000).UTC()
	return []catalog.Product{
		{ProductID: "p1", Region: "hauts-bassins", Category: "cereals", Name: "Maize", Unit: "kg", Price: 250, UpdatedAt: updated},
		{ProductID: "p2", Region: "hauts-bassins", Category: "vegetables", Name: "Tomatoes", Unit: "crate", Price: 4000, UpdatedAt: updated},
		{ProductID: "p3", Region: "centre", Category: "cereals", Name: "Millet", Unit: "kg", Price: 300, UpdatedAt: updated},
	}
}

func TestProductRepository_ReplaceAllAndList(t *testing.T) {
	store := newTestStore(t)
	repo := NewProductRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, sampleCatalog()))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	regional, err := repo.List(ctx, "hauts-bassins")
	require.NoError(t, err)
	require.Len(t, regional, 2)
	for _, p := range regional {
		assert.Equal(t, "hauts-bassins", p.Region)
	}
}

func TestProductRepository_ReplaceAllSwapsWholesale(t *testing.T) {
	store := newTestStore(t)
	repo := NewProductRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, sampleCatalog()))

	fresh := []catalog.Product{
		{ProductID: "p9", Region: "centre", Category: "fruits", Name: "Mangoes", Unit: "kg", Price: 500, UpdatedAt: time.Now().UTC()},
	}
	require.NoError(t, repo.ReplaceAll(ctx, fresh))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "p9", all[0].ProductID)
}

// A failed replace must leave the previous snapshot intact.
func TestProductRepository_ReplaceAllAtomicOnFailure(t *testing.T) {
	store := newTestStore(t)
	repo := NewProductRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, sampleCatalog()))

	bad := []catalog.Product{
		{ProductID: "ok", Region: "centre", Category: "fruits", Name: "Papaya", Unit: "kg", Price: 600, UpdatedAt: time.Now().UTC()},
		{ProductID: "", Region: "centre", Category: "fruits", Name: "Broken", Unit: "kg", Price: 100, UpdatedAt: time.Now().UTC()},
	}
	require.Error(t, repo.ReplaceAll(ctx, bad))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3, "old snapshot must survive a failed replace")
}
