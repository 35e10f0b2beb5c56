package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"restaurant-booking/internal/data/entity"
	"restaurant-booking/pkg/database"
	"restaurant-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newPostgresRepository connects with the DB_* environment and creates a
// throwaway restaurant. Skipped when DB_HOST is not set.
func newPostgresRepository(t *testing.T, capacity int) (*Repository, *entity.Restaurant) {
	t.Helper()
	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST not set")
	}

	config, err := utils.LoadConfig()
	require.NoError(t, err)

	ctx := context.Background()
	db, err := database.InitDB(config.Database)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, db))

	repo := NewRepository(db, zap.NewNop())
	restaurant := &entity.Restaurant{
		ID:           uuid.New(),
		Slug:         "test-" + uuid.NewString(),
		Name:         "Test Kitchen",
		TotalSeats:   capacity,
		OpenTime:     entity.Clock(11, 0),
		CloseTime:    entity.Clock(23, 0),
		PricePerSeat: 100,
	}
	require.NoError(t, repo.Restaurant.Create(ctx, restaurant))

	t.Cleanup(func() {
		_, _ = db.Exec(ctx, `DELETE FROM bookings WHERE restaurant_id = $1`, restaurant.ID)
		_, _ = db.Exec(ctx, `DELETE FROM restaurants WHERE id = $1`, restaurant.ID)
		db.Close()
	})
	return repo, restaurant
}

func TestBookingRepository_InsertWithinCapacity(t *testing.T) {
	ctx := context.Background()
	repo, restaurant := newPostgresRepository(t, 10)
	userID := uuid.New()

	first := newTestBooking(restaurant.ID, userID, entity.Clock(19, 0), 6, "RES"+uuid.NewString()[:6])
	require.NoError(t, repo.Booking.InsertWithinCapacity(ctx, first, restaurant.TotalSeats))

	err := repo.Booking.InsertWithinCapacity(ctx, newTestBooking(restaurant.ID, userID, entity.Clock(19, 0), 5, "RES"+uuid.NewString()[:6]), restaurant.TotalSeats)
	assert.ErrorIs(t, err, ErrSlotFull)

	err = repo.Booking.InsertWithinCapacity(ctx, newTestBooking(restaurant.ID, userID, entity.Clock(20, 0), 1, first.ConfirmationCode), restaurant.TotalSeats)
	assert.ErrorIs(t, err, ErrDuplicateCode)

	cancelledAt := testDate.Add(12 * time.Hour)
	ok, err := repo.Booking.TransitionStatus(ctx, first.ID, entity.BookingStatusConfirmed, entity.BookingStatusCancelled, cancelledAt)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := repo.Booking.FindByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.BookingStatusCancelled, stored.Status)
	assert.True(t, stored.UpdatedAt.Equal(cancelledAt))

	// cancelled seats are free again
	require.NoError(t, repo.Booking.InsertWithinCapacity(ctx, newTestBooking(restaurant.ID, userID, entity.Clock(19, 0), 10, "RES"+uuid.NewString()[:6]), restaurant.TotalSeats))
}

func TestBookingRepository_ConcurrentInsertsNeverOverbook(t *testing.T) {
	ctx := context.Background()
	repo, restaurant := newPostgresRepository(t, 20)

	var wg sync.WaitGroup
	var full atomic.Int32
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := newTestBooking(restaurant.ID, uuid.New(), entity.Clock(19, 0), 3, uuid.NewString())
			err := repo.Booking.InsertWithinCapacity(ctx, b, restaurant.TotalSeats)
			if errors.Is(err, ErrSlotFull) {
				full.Add(1)
				return
			}
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	booked, err := repo.Booking.BookedSeatsByDate(ctx, restaurant.ID, testDate)
	require.NoError(t, err)
	assert.Equal(t, 18, booked[entity.Clock(19, 0)])
	assert.EqualValues(t, 24, full.Load())
}
