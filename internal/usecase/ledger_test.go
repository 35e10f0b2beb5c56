package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"restaurant-booking/internal/data/cache"
	"restaurant-booking/internal/data/entity"
	"restaurant-booking/internal/data/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var bookingDate = time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *repository.Repository {
	t.Helper()
	repo := repository.NewMemoryRepository(zap.NewNop())
	require.NoError(t, repository.Seed(context.Background(), repo.Restaurant, zap.NewNop()))
	return repo
}

// grandSpice has 80 seats, open 11:00-23:00.
func grandSpice(t *testing.T, repo *repository.Repository) *entity.Restaurant {
	t.Helper()
	r, err := repo.Restaurant.FindBySlug(context.Background(), "the-grand-spice")
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}

func newTestLedger(t *testing.T, opts ...LedgerOption) (Ledger, *repository.Repository, *entity.Restaurant) {
	t.Helper()
	repo := newTestRepo(t)
	return NewLedger(repo, cache.NewMemoryLocker(), zap.NewNop(), opts...), repo, grandSpice(t, repo)
}

func commitParams(restaurantID uuid.UUID, at entity.ClockTime, seats int) CommitParams {
	return CommitParams{
		RestaurantID:  restaurantID,
		UserID:        uuid.New(),
		Date:          bookingDate,
		Time:          at,
		Seats:         seats,
		PaymentStatus: entity.PaymentStatusPaid,
		Amount:        float64(seats) * 299,
	}
}

func slotAt(t *testing.T, slots []entity.TimeSlot, at entity.ClockTime) entity.TimeSlot {
	t.Helper()
	for _, s := range slots {
		if s.Time == at {
			return s
		}
	}
	t.Fatalf("no slot at %s", at)
	return entity.TimeSlot{}
}

func TestLedger_EightySeatScenario(t *testing.T) {
	ctx := context.Background()
	ledger, _, restaurant := newTestLedger(t)
	seven := entity.Clock(19, 0)

	slots, err := ledger.GetAvailableSlots(ctx, restaurant.ID, bookingDate)
	require.NoError(t, err)
	require.Len(t, slots, 12)
	assert.Equal(t, entity.Clock(11, 0), slots[0].Time)
	assert.Equal(t, entity.Clock(22, 0), slots[11].Time)
	for _, s := range slots {
		assert.Equal(t, 80, s.AvailableSeats)
		assert.True(t, s.IsAvailable)
	}

	first, err := ledger.CommitBooking(ctx, commitParams(restaurant.ID, seven, 45))
	require.NoError(t, err)

	slots, err = ledger.GetAvailableSlots(ctx, restaurant.ID, bookingDate)
	require.NoError(t, err)
	assert.Equal(t, 35, slotAt(t, slots, seven).AvailableSeats)

	_, err = ledger.CommitBooking(ctx, commitParams(restaurant.ID, seven, 40))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = ledger.CommitBooking(ctx, commitParams(restaurant.ID, seven, 35))
	require.NoError(t, err)

	slots, err = ledger.GetAvailableSlots(ctx, restaurant.ID, bookingDate)
	require.NoError(t, err)
	assert.Equal(t, 0, slotAt(t, slots, seven).AvailableSeats)
	assert.False(t, slotAt(t, slots, seven).IsAvailable)

	_, err = ledger.CommitBooking(ctx, commitParams(restaurant.ID, seven, 1))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = ledger.CancelBooking(ctx, first.ID)
	require.NoError(t, err)

	slots, err = ledger.GetAvailableSlots(ctx, restaurant.ID, bookingDate)
	require.NoError(t, err)
	assert.Equal(t, 45, slotAt(t, slots, seven).AvailableSeats)
	assert.Equal(t, 80, slotAt(t, slots, entity.Clock(20, 0)).AvailableSeats)
}

func TestLedger_GetAvailableSlotsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ledger, _, restaurant := newTestLedger(t)

	_, err := ledger.CommitBooking(ctx, commitParams(restaurant.ID, entity.Clock(13, 0), 7))
	require.NoError(t, err)

	a, err := ledger.GetAvailableSlots(ctx, restaurant.ID, bookingDate)
	require.NoError(t, err)
	b, err := ledger.GetAvailableSlots(ctx, restaurant.ID, bookingDate)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLedger_GetAvailableSlotsUnknownRestaurant(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	slots, err := ledger.GetAvailableSlots(context.Background(), uuid.New(), bookingDate)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestLedger_DatesAreIndependent(t *testing.T) {
	ctx := context.Background()
	ledger, _, restaurant := newTestLedger(t)

	p := commitParams(restaurant.ID, entity.Clock(19, 0), 80)
	_, err := ledger.CommitBooking(ctx, p)
	require.NoError(t, err)

	p.Date = bookingDate.AddDate(0, 0, 1)
	_, err = ledger.CommitBooking(ctx, p)
	require.NoError(t, err)

	// a non-midnight time on the same calendar day is the same date
	p.Date = bookingDate.Add(15 * time.Hour)
	_, err = ledger.CommitBooking(ctx, p)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestLedger_CommitValidation(t *testing.T) {
	ctx := context.Background()
	ledger, _, restaurant := newTestLedger(t)

	tests := []struct {
		name   string
		mutate func(*CommitParams)
		want   error
	}{
		{name: "zero seats", mutate: func(p *CommitParams) { p.Seats = 0 }, want: ErrInvalidInput},
		{name: "negative amount", mutate: func(p *CommitParams) { p.Amount = -1 }, want: ErrInvalidInput},
		{name: "bad payment status", mutate: func(p *CommitParams) { p.PaymentStatus = "refunded" }, want: ErrInvalidInput},
		{name: "missing date", mutate: func(p *CommitParams) { p.Date = time.Time{} }, want: ErrInvalidInput},
		{name: "missing user", mutate: func(p *CommitParams) { p.UserID = uuid.Nil }, want: ErrInvalidInput},
		{name: "unknown restaurant", mutate: func(p *CommitParams) { p.RestaurantID = uuid.New() }, want: ErrNotFound},
		{name: "before open", mutate: func(p *CommitParams) { p.Time = entity.Clock(10, 0) }, want: ErrInvalidSlot},
		{name: "at close", mutate: func(p *CommitParams) { p.Time = entity.Clock(23, 0) }, want: ErrInvalidSlot},
		{name: "off the hour", mutate: func(p *CommitParams) { p.Time = entity.Clock(19, 30) }, want: ErrInvalidSlot},
		{name: "over capacity", mutate: func(p *CommitParams) { p.Seats = 81 }, want: ErrCapacityExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := commitParams(restaurant.ID, entity.Clock(19, 0), 2)
			tt.mutate(&p)

			booking, err := ledger.CommitBooking(ctx, p)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, booking)
		})
	}
}

func TestLedger_CommitStoresConfirmedBooking(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2029, 12, 31, 9, 0, 0, 0, time.UTC)
	ledger, repo, restaurant := newTestLedger(t, WithClock(func() time.Time { return fixed }))

	p := commitParams(restaurant.ID, entity.Clock(19, 0), 4)
	p.PaymentStatus = entity.PaymentStatusSkipped
	booking, err := ledger.CommitBooking(ctx, p)
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, entity.PaymentStatusSkipped, booking.PaymentStatus)
	assert.Equal(t, fixed, booking.CreatedAt)
	assert.Equal(t, 4*299.0, booking.TotalAmount)
	assert.Regexp(t, regexp.MustCompile(`^RES[A-Z0-9]{6}$`), booking.ConfirmationCode)

	stored, err := repo.Booking.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ConfirmationCode, stored.ConfirmationCode)

	byCode, err := ledger.GetBookingByCode(ctx, booking.ConfirmationCode)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, byCode.ID)

	_, err = ledger.GetBookingByCode(ctx, "RESNOPE00")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_RetriesTakenConfirmationCodes(t *testing.T) {
	ctx := context.Background()
	codes := []string{"RESAAAAAA", "RESAAAAAA", "RESAAAAAA", "RESBBBBBB"}
	var next int32
	gen := func() (string, error) {
		i := atomic.AddInt32(&next, 1) - 1
		return codes[int(i)%len(codes)], nil
	}
	ledger, _, restaurant := newTestLedger(t, WithCodeGenerator(gen))

	first, err := ledger.CommitBooking(ctx, commitParams(restaurant.ID, entity.Clock(19, 0), 2))
	require.NoError(t, err)
	assert.Equal(t, "RESAAAAAA", first.ConfirmationCode)

	second, err := ledger.CommitBooking(ctx, commitParams(restaurant.ID, entity.Clock(19, 0), 2))
	require.NoError(t, err)
	assert.Equal(t, "RESBBBBBB", second.ConfirmationCode)
}

func TestLedger_GivesUpWhenCodesExhausted(t *testing.T) {
	ctx := context.Background()
	ledger, _, restaurant := newTestLedger(t, WithCodeGenerator(func() (string, error) { return "RESSAME00", nil }))

	_, err := ledger.CommitBooking(ctx, commitParams(restaurant.ID, entity.Clock(19, 0), 2))
	require.NoError(t, err)

	_, err = ledger.CommitBooking(ctx, commitParams(restaurant.ID, entity.Clock(19, 0), 2))
	require.Error(t, err)

	failing := errors.New("entropy gone")
	ledger, _, restaurant = newTestLedger(t, WithCodeGenerator(func() (string, error) { return "", failing }))
	_, err = ledger.CommitBooking(ctx, commitParams(restaurant.ID, entity.Clock(19, 0), 2))
	assert.ErrorIs(t, err, failing)
}

func TestLedger_CodesAreUnique(t *testing.T) {
	ctx := context.Background()
	ledger, repo, _ := newTestLedger(t)

	seen := make(map[string]bool)
	for _, r := range repository.SeedRestaurants() {
		for _, at := range r.Slots() {
			b, err := ledger.CommitBooking(ctx, commitParams(r.ID, at, 1))
			require.NoError(t, err)
			assert.False(t, seen[b.ConfirmationCode], "duplicate code %s", b.ConfirmationCode)
			seen[b.ConfirmationCode] = true
		}
	}

	total, err := repo.Restaurant.CountAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Greater(t, len(seen), 40)
}

func TestLedger_ConcurrentCommitsNeverOverbook(t *testing.T) {
	ctx := context.Background()
	ledger, _, restaurant := newTestLedger(t)
	seven := entity.Clock(19, 0)

	var (
		wg        sync.WaitGroup
		succeeded int32
		rejected  int32
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.CommitBooking(ctx, commitParams(restaurant.ID, seven, 3))
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, ErrCapacityExceeded):
				atomic.AddInt32(&rejected, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// 80 / 3 = 26 bookings fit
	assert.EqualValues(t, 26, succeeded)
	assert.EqualValues(t, 14, rejected)

	slots, err := ledger.GetAvailableSlots(ctx, restaurant.ID, bookingDate)
	require.NoError(t, err)
	assert.Equal(t, 2, slotAt(t, slots, seven).AvailableSeats)
}

func TestLedger_CancelBooking(t *testing.T) {
	ctx := context.Background()
	ledger, _, restaurant := newTestLedger(t)

	booking, err := ledger.CommitBooking(ctx, commitParams(restaurant.ID, entity.Clock(19, 0), 5))
	require.NoError(t, err)

	cancelled, err := ledger.CancelBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, booking.ConfirmationCode, cancelled.ConfirmationCode)

	// second cancel is a no-op
	again, err := ledger.CancelBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, again.Status)

	slots, err := ledger.GetAvailableSlots(ctx, restaurant.ID, bookingDate)
	require.NoError(t, err)
	assert.Equal(t, 80, slotAt(t, slots, entity.Clock(19, 0)).AvailableSeats)

	_, err = ledger.CancelBooking(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ledger.CompleteBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLedger_TransitionStampsLedgerClock(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)
	cancelledAt := createdAt.Add(3 * time.Hour)
	current := createdAt
	ledger, repo, restaurant := newTestLedger(t, WithClock(func() time.Time { return current }))

	booking, err := ledger.CommitBooking(ctx, commitParams(restaurant.ID, entity.Clock(19, 0), 2))
	require.NoError(t, err)

	current = cancelledAt
	cancelled, err := ledger.CancelBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.True(t, cancelled.UpdatedAt.Equal(cancelledAt))

	stored, err := repo.Booking.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.UpdatedAt.Equal(cancelledAt))
	assert.True(t, stored.CreatedAt.Equal(createdAt))
}

func TestLedger_CompletedCannotBeCancelled(t *testing.T) {
	ctx := context.Background()
	ledger, _, restaurant := newTestLedger(t)

	booking, err := ledger.CommitBooking(ctx, commitParams(restaurant.ID, entity.Clock(12, 0), 2))
	require.NoError(t, err)

	completed, err := ledger.CompleteBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCompleted, completed.Status)

	_, err = ledger.CompleteBooking(ctx, booking.ID)
	require.NoError(t, err)

	_, err = ledger.CancelBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// completed bookings still hold their seats
	slots, err := ledger.GetAvailableSlots(ctx, restaurant.ID, bookingDate)
	require.NoError(t, err)
	assert.Equal(t, 78, slotAt(t, slots, entity.Clock(12, 0)).AvailableSeats)
}

func TestLedger_ListBookingsForUser(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2029, 12, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * time.Minute)
	}
	ledger, _, restaurant := newTestLedger(t, WithClock(clock))
	userID := uuid.New()

	empty, err := ledger.ListBookingsForUser(ctx, userID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	var codes []string
	for i := 0; i < 3; i++ {
		p := commitParams(restaurant.ID, entity.Clock(12+i, 0), 2)
		p.UserID = userID
		b, err := ledger.CommitBooking(ctx, p)
		require.NoError(t, err)
		codes = append(codes, b.ConfirmationCode)
	}
	_, err = ledger.CommitBooking(ctx, commitParams(restaurant.ID, entity.Clock(12, 0), 2))
	require.NoError(t, err)

	bookings, err := ledger.ListBookingsForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	for i, b := range bookings {
		assert.Equal(t, codes[2-i], b.ConfirmationCode, fmt.Sprintf("position %d", i))
	}
}
