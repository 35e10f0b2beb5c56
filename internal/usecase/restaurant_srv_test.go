package usecase

import (
	"context"
	"testing"

	"restaurant-booking/internal/data/cache"
	"restaurant-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRestaurantService(t *testing.T) RestaurantService {
	t.Helper()
	repo := newTestRepo(t)
	ledger := NewLedger(repo, cache.NewMemoryLocker(), zap.NewNop())
	return NewRestaurantService(repo, ledger, zap.NewNop())
}

func TestRestaurantService_List(t *testing.T) {
	svc := newTestRestaurantService(t)

	page, err := svc.ListRestaurants(context.Background(), &request.PaginatedRequest{Page: 1, PerPage: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "Bella Italia", page.Data[0].Name)
	assert.Equal(t, "11:30", page.Data[0].Opens)
	assert.Equal(t, "23:30", page.Data[0].Closes)
	assert.Equal(t, 299.0, page.Data[0].PricePerSeat)
}

func TestRestaurantService_ListPastLastPage(t *testing.T) {
	svc := newTestRestaurantService(t)

	page, err := svc.ListRestaurants(context.Background(), &request.PaginatedRequest{Page: 922337203685477582, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.EqualValues(t, 5, page.Pagination.Total)
}

func TestRestaurantService_GetByIDOrSlug(t *testing.T) {
	ctx := context.Background()
	svc := newTestRestaurantService(t)

	bySlug, err := svc.GetRestaurant(ctx, "the-rooftop-grill")
	require.NoError(t, err)
	assert.Equal(t, 50, bySlug.TotalSeats)

	byID, err := svc.GetRestaurant(ctx, bySlug.ID.String())
	require.NoError(t, err)
	assert.Equal(t, bySlug.Name, byID.Name)

	_, err = svc.GetRestaurant(ctx, "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetRestaurant(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestaurantService_GetAvailability(t *testing.T) {
	ctx := context.Background()
	svc := newTestRestaurantService(t)

	availability, err := svc.GetAvailability(ctx, "the-rooftop-grill", &request.AvailabilityRequest{Date: "2030-01-15"})
	require.NoError(t, err)
	assert.Equal(t, "2030-01-15", availability.Date)
	require.Len(t, availability.Slots, 5)
	assert.Equal(t, "18:00", availability.Slots[0].Time)
	assert.Equal(t, "22:00", availability.Slots[4].Time)
	assert.Equal(t, "Good Availability", availability.Slots[0].Label)

	_, err = svc.GetAvailability(ctx, "nowhere", &request.AvailabilityRequest{Date: "2030-01-15"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetAvailability(ctx, "the-rooftop-grill", &request.AvailabilityRequest{Date: "15-01-2030"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
