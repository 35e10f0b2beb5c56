package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"restaurant-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestBooking(restaurantID, userID uuid.UUID, at entity.ClockTime, seats int, code string) *entity.Booking {
	now := time.Now()
	return &entity.Booking{
		Base:             entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		RestaurantID:     restaurantID,
		UserID:           userID,
		Date:             testDate,
		Time:             at,
		Seats:            seats,
		PaymentStatus:    entity.PaymentStatusPaid,
		Status:           entity.BookingStatusConfirmed,
		ConfirmationCode: code,
	}
}

func TestMemoryBookingRepository_InsertWithinCapacity(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository(zap.NewNop())
	restaurantID, userID := uuid.New(), uuid.New()

	require.NoError(t, repo.InsertWithinCapacity(ctx, newTestBooking(restaurantID, userID, entity.Clock(19, 0), 6, "RESAAAAA1"), 10))

	err := repo.InsertWithinCapacity(ctx, newTestBooking(restaurantID, userID, entity.Clock(19, 0), 5, "RESAAAAA2"), 10)
	assert.ErrorIs(t, err, ErrSlotFull)

	// exact fill is allowed
	require.NoError(t, repo.InsertWithinCapacity(ctx, newTestBooking(restaurantID, userID, entity.Clock(19, 0), 4, "RESAAAAA3"), 10))

	// other slots are independent
	require.NoError(t, repo.InsertWithinCapacity(ctx, newTestBooking(restaurantID, userID, entity.Clock(20, 0), 10, "RESAAAAA4"), 10))

	err = repo.InsertWithinCapacity(ctx, newTestBooking(restaurantID, userID, entity.Clock(21, 0), 1, "RESAAAAA1"), 10)
	assert.ErrorIs(t, err, ErrDuplicateCode)

	booked, err := repo.BookedSeatsByDate(ctx, restaurantID, testDate)
	require.NoError(t, err)
	assert.Equal(t, map[entity.ClockTime]int{entity.Clock(19, 0): 10, entity.Clock(20, 0): 10}, booked)
}

func TestMemoryBookingRepository_CancelledFreesSeats(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository(zap.NewNop())
	restaurantID := uuid.New()

	b := newTestBooking(restaurantID, uuid.New(), entity.Clock(19, 0), 10, "RESCANCEL")
	require.NoError(t, repo.InsertWithinCapacity(ctx, b, 10))

	cancelledAt := testDate.Add(18 * time.Hour)
	ok, err := repo.TransitionStatus(ctx, b.ID, entity.BookingStatusConfirmed, entity.BookingStatusCancelled, cancelledAt)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.Equal(cancelledAt))

	// stale from status does not apply
	ok, err = repo.TransitionStatus(ctx, b.ID, entity.BookingStatusConfirmed, entity.BookingStatusCompleted, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	booked, err := repo.BookedSeatsByDate(ctx, restaurantID, testDate)
	require.NoError(t, err)
	assert.Zero(t, booked[entity.Clock(19, 0)])

	require.NoError(t, repo.InsertWithinCapacity(ctx, newTestBooking(restaurantID, uuid.New(), entity.Clock(19, 0), 10, "RESAGAIN1"), 10))
}

func TestMemoryBookingRepository_ReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository(zap.NewNop())

	b := newTestBooking(uuid.New(), uuid.New(), entity.Clock(19, 0), 2, "RESCOPY01")
	require.NoError(t, repo.InsertWithinCapacity(ctx, b, 10))

	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	got.Status = entity.BookingStatusCancelled

	again, err := repo.FindByConfirmationCode(ctx, "RESCOPY01")
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, again.Status)

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryBookingRepository_FindByUserIDNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository(zap.NewNop())
	restaurantID, userID := uuid.New(), uuid.New()
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i, code := range []string{"RESORDER1", "RESORDER2", "RESORDER3"} {
		b := newTestBooking(restaurantID, userID, entity.Clock(12+i, 0), 1, code)
		b.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.InsertWithinCapacity(ctx, b, 10))
		ids = append(ids, b.ID)
	}
	require.NoError(t, repo.InsertWithinCapacity(ctx, newTestBooking(restaurantID, uuid.New(), entity.Clock(12, 0), 1, "RESOTHER1"), 10))

	bookings, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	assert.Equal(t, ids[2], bookings[0].ID)
	assert.Equal(t, ids[1], bookings[1].ID)
	assert.Equal(t, ids[0], bookings[2].ID)
}

func TestMemoryBookingRepository_FindConfirmedUntil(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository(zap.NewNop())
	restaurantID := uuid.New()

	past := newTestBooking(restaurantID, uuid.New(), entity.Clock(19, 0), 1, "RESPAST01")
	future := newTestBooking(restaurantID, uuid.New(), entity.Clock(19, 0), 1, "RESFUTURE")
	future.Date = testDate.AddDate(0, 0, 2)
	require.NoError(t, repo.InsertWithinCapacity(ctx, past, 10))
	require.NoError(t, repo.InsertWithinCapacity(ctx, future, 10))

	got, err := repo.FindConfirmedUntil(ctx, testDate)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, past.ID, got[0].ID)
}

func TestMemoryBookingRepository_ConcurrentInsertsNeverOverbook(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository(zap.NewNop())
	restaurantID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.InsertWithinCapacity(ctx, newTestBooking(restaurantID, uuid.New(), entity.Clock(19, 0), 3, uuid.NewString()), 20)
		}()
	}
	wg.Wait()

	booked, err := repo.BookedSeatsByDate(ctx, restaurantID, testDate)
	require.NoError(t, err)
	assert.Equal(t, 18, booked[entity.Clock(19, 0)])
}
