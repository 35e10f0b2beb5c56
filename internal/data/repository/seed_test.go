package repository

import (
	"context"
	"testing"

	"restaurant-booking/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedRestaurants(t *testing.T) {
	restaurants := SeedRestaurants()
	require.Len(t, restaurants, 5)

	grand := restaurants[0]
	assert.Equal(t, "the-grand-spice", grand.Slug)
	assert.Equal(t, RestaurantIDForSlug("the-grand-spice"), grand.ID)
	assert.Equal(t, 80, grand.TotalSeats)
	assert.Equal(t, float64(DefaultPricePerSeat), grand.PricePerSeat)
	assert.Len(t, grand.Slots(), 12)

	sakura := restaurants[1]
	assert.Equal(t, entity.Clock(21, 0), sakura.Slots()[len(sakura.Slots())-1])
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRestaurantRepository(zap.NewNop())

	require.NoError(t, Seed(ctx, repo, zap.NewNop()))
	require.NoError(t, Seed(ctx, repo, zap.NewNop()))

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	bySlug, err := repo.FindBySlug(ctx, "dragon-palace")
	require.NoError(t, err)
	require.NotNil(t, bySlug)
	assert.Equal(t, 100, bySlug.TotalSeats)

	page, err := repo.FindAll(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Bella Italia", page[0].Name)
	assert.Equal(t, "Dragon Palace", page[1].Name)
}
