package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"restaurant-booking/internal/data/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memoryBookingRepository keeps bookings in process memory. Every read hands
// out copies so callers cannot mutate stored state.
type memoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*entity.Booking
	byCode   map[string]uuid.UUID
	order    []uuid.UUID
	log      *zap.Logger
}

func NewMemoryBookingRepository(log *zap.Logger) BookingRepository {
	return &memoryBookingRepository{
		bookings: make(map[uuid.UUID]*entity.Booking),
		byCode:   make(map[string]uuid.UUID),
		log:      log.With(zap.String("repository", "booking_memory")),
	}
}

func (r *memoryBookingRepository) InsertWithinCapacity(ctx context.Context, booking *entity.Booking, capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byCode[booking.ConfirmationCode]; taken {
		return fmt.Errorf("insert booking %s: %w", booking.ConfirmationCode, ErrDuplicateCode)
	}

	booked := 0
	for _, b := range r.bookings {
		if b.RestaurantID == booking.RestaurantID && b.Date.Equal(booking.Date) &&
			b.Time == booking.Time && b.Holds() {
			booked += b.Seats
		}
	}

	if booked+booking.Seats > capacity {
		slotKey := entity.SlotKey(booking.RestaurantID, booking.Date, booking.Time)
		return fmt.Errorf("slot %s has %d of %d seats taken: %w", slotKey, booked, capacity, ErrSlotFull)
	}

	stored := *booking
	r.bookings[stored.ID] = &stored
	r.byCode[stored.ConfirmationCode] = stored.ID
	r.order = append(r.order, stored.ID)

	return nil
}

func (r *memoryBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	out := *b
	return &out, nil
}

func (r *memoryBookingRepository) FindByConfirmationCode(ctx context.Context, code string) (*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[code]
	if !ok {
		return nil, nil
	}
	out := *r.bookings[id]
	return &out, nil
}

func (r *memoryBookingRepository) ExistsConfirmationCode(ctx context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byCode[code]
	return ok, nil
}

func (r *memoryBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bookings []*entity.Booking
	for i := len(r.order) - 1; i >= 0; i-- {
		b := r.bookings[r.order[i]]
		if b.UserID == userID {
			out := *b
			bookings = append(bookings, &out)
		}
	}

	// Walking newest insert first keeps createdAt ties in insertion-desc order.
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	return bookings, nil
}

func (r *memoryBookingRepository) BookedSeatsByDate(ctx context.Context, restaurantID uuid.UUID, date time.Time) (map[entity.ClockTime]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booked := make(map[entity.ClockTime]int)
	for _, b := range r.bookings {
		if b.RestaurantID == restaurantID && b.Date.Equal(date) && b.Holds() {
			booked[b.Time] += b.Seats
		}
	}
	return booked, nil
}

func (r *memoryBookingRepository) FindConfirmedUntil(ctx context.Context, date time.Time) ([]*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bookings []*entity.Booking
	for _, id := range r.order {
		b := r.bookings[id]
		if b.Status == entity.BookingStatusConfirmed && !b.Date.After(date) {
			out := *b
			bookings = append(bookings, &out)
		}
	}
	return bookings, nil
}

func (r *memoryBookingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}

	b.Status = to
	b.UpdatedAt = at
	return true, nil
}
