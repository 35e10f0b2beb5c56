package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-booking/internal/data/cache"
	"restaurant-booking/internal/data/entity"
	"restaurant-booking/internal/data/repository"
	"restaurant-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxCodeAttempts = 10

// Ledger is the single source of truth for bookings: it alone answers "is
// there room" and commits reservations. Capacity is derived on every read,
// never stored.
type Ledger interface {
	GetAvailableSlots(ctx context.Context, restaurantID uuid.UUID, date time.Time) ([]entity.TimeSlot, error)
	CommitBooking(ctx context.Context, params CommitParams) (*entity.Booking, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error)
	CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error)
	ListBookingsForUser(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error)
	GetBookingByCode(ctx context.Context, code string) (*entity.Booking, error)
}

type CommitParams struct {
	RestaurantID  uuid.UUID
	UserID        uuid.UUID
	Date          time.Time
	Time          entity.ClockTime
	Seats         int
	PaymentStatus entity.PaymentStatus
	Amount        float64
}

func (p CommitParams) validate() error {
	switch {
	case p.RestaurantID == uuid.Nil:
		return fmt.Errorf("restaurant id is required: %w", ErrInvalidInput)
	case p.UserID == uuid.Nil:
		return fmt.Errorf("user id is required: %w", ErrInvalidInput)
	case p.Date.IsZero():
		return fmt.Errorf("date is required: %w", ErrInvalidInput)
	case p.Seats < 1:
		return fmt.Errorf("seats must be at least 1, got %d: %w", p.Seats, ErrInvalidInput)
	case p.Amount < 0:
		return fmt.Errorf("amount must not be negative: %w", ErrInvalidInput)
	case !p.PaymentStatus.Valid():
		return fmt.Errorf("payment status %q: %w", p.PaymentStatus, ErrInvalidInput)
	case !p.Time.Valid():
		return fmt.Errorf("time %d out of day range: %w", int(p.Time), ErrInvalidSlot)
	}
	return nil
}

type LedgerOption func(*ledger)

// WithClock replaces time.Now for createdAt stamps.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *ledger) { l.now = now }
}

// WithCodeGenerator replaces the random confirmation code source.
func WithCodeGenerator(gen func() (string, error)) LedgerOption {
	return func(l *ledger) { l.codes = gen }
}

type ledger struct {
	restaurants repository.RestaurantRepository
	bookings    repository.BookingRepository
	locker      cache.SlotLocker
	codes       func() (string, error)
	now         func() time.Time
	log         *zap.Logger
}

func NewLedger(repo *repository.Repository, locker cache.SlotLocker, log *zap.Logger, opts ...LedgerOption) Ledger {
	l := &ledger{
		restaurants: repo.Restaurant,
		bookings:    repo.Booking,
		locker:      locker,
		codes:       utils.GenerateConfirmationCode,
		now:         time.Now,
		log:         log.With(zap.String("service", "ledger")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GetAvailableSlots returns an empty list for an unknown restaurant.
func (l *ledger) GetAvailableSlots(ctx context.Context, restaurantID uuid.UUID, date time.Time) ([]entity.TimeSlot, error) {
	restaurant, err := l.restaurants.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("get restaurant %s: %w", restaurantID, err)
	}
	if restaurant == nil {
		return []entity.TimeSlot{}, nil
	}

	booked, err := l.bookings.BookedSeatsByDate(ctx, restaurant.ID, entity.NormalizeDate(date))
	if err != nil {
		return nil, fmt.Errorf("get booked seats: %w", err)
	}

	slotTimes := restaurant.Slots()
	slots := make([]entity.TimeSlot, 0, len(slotTimes))
	for _, t := range slotTimes {
		available := max(0, restaurant.TotalSeats-booked[t])
		slots = append(slots, entity.TimeSlot{
			Time:           t,
			TotalSeats:     restaurant.TotalSeats,
			AvailableSeats: available,
			IsAvailable:    available > 0,
		})
	}

	return slots, nil
}

func (l *ledger) CommitBooking(ctx context.Context, p CommitParams) (*entity.Booking, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	date := entity.NormalizeDate(p.Date)

	restaurant, err := l.restaurants.FindByID(ctx, p.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("get restaurant %s: %w", p.RestaurantID, err)
	}
	if restaurant == nil {
		return nil, fmt.Errorf("restaurant %s: %w", p.RestaurantID, ErrNotFound)
	}

	if !restaurant.HasSlot(p.Time) {
		return nil, fmt.Errorf("%s is not a slot of %s (%s-%s): %w",
			p.Time, restaurant.Name, restaurant.OpenTime, restaurant.CloseTime, ErrInvalidSlot)
	}

	slotKey := entity.SlotKey(restaurant.ID, date, p.Time)
	unlock, err := l.locker.Lock(ctx, slotKey)
	if err != nil {
		return nil, fmt.Errorf("lock slot %s: %w", slotKey, err)
	}
	defer unlock()

	booked, err := l.bookings.BookedSeatsByDate(ctx, restaurant.ID, date)
	if err != nil {
		return nil, fmt.Errorf("get booked seats: %w", err)
	}
	if available := restaurant.TotalSeats - booked[p.Time]; available < p.Seats {
		return nil, fmt.Errorf("%d seats requested at %s on %s, %d available: %w",
			p.Seats, p.Time, entity.FormatDate(date), max(0, available), ErrCapacityExceeded)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := l.uniqueCode(ctx)
		if err != nil {
			return nil, err
		}

		now := l.now()
		booking := &entity.Booking{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			RestaurantID:     restaurant.ID,
			UserID:           p.UserID,
			Date:             date,
			Time:             p.Time,
			Seats:            p.Seats,
			TotalAmount:      p.Amount,
			PaymentStatus:    p.PaymentStatus,
			Status:           entity.BookingStatusConfirmed,
			ConfirmationCode: code,
		}

		err = l.bookings.InsertWithinCapacity(ctx, booking, restaurant.TotalSeats)
		switch {
		case err == nil:
			l.log.Info("Booking committed",
				zap.String("booking_id", booking.ID.String()),
				zap.String("confirmation_code", booking.ConfirmationCode),
				zap.String("slot", slotKey),
				zap.Int("seats", booking.Seats),
			)
			return booking, nil
		case errors.Is(err, repository.ErrDuplicateCode):
			l.log.Warn("Confirmation code collision, retrying", zap.String("code", code))
			continue
		case errors.Is(err, repository.ErrSlotFull):
			return nil, fmt.Errorf("%d seats requested at %s: %w", p.Seats, slotKey, ErrCapacityExceeded)
		default:
			return nil, fmt.Errorf("commit booking: %w", err)
		}
	}

	return nil, fmt.Errorf("commit booking: no free confirmation code after %d attempts", maxCodeAttempts)
}

// uniqueCode draws codes until one is not yet in the ledger. The insert's
// unique check closes the remaining race.
func (l *ledger) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := l.codes()
		if err != nil {
			return "", fmt.Errorf("generate confirmation code: %w", err)
		}

		taken, err := l.bookings.ExistsConfirmationCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check confirmation code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("generate confirmation code: %d collisions in a row", maxCodeAttempts)
}

// CancelBooking frees the booking's seats. Cancelling twice is a no-op.
func (l *ledger) CancelBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	return l.transition(ctx, bookingID, entity.BookingStatusCancelled)
}

// CompleteBooking marks a confirmed booking as honoured.
func (l *ledger) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	return l.transition(ctx, bookingID, entity.BookingStatusCompleted)
}

func (l *ledger) transition(ctx context.Context, bookingID uuid.UUID, to entity.BookingStatus) (*entity.Booking, error) {
	booking, err := l.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	if booking.Status == to {
		return booking, nil
	}
	if !entity.CanTransition(booking.Status, to) {
		return nil, fmt.Errorf("booking %s is %s, cannot become %s: %w", bookingID, booking.Status, to, ErrInvalidTransition)
	}

	at := l.now()
	updated, err := l.bookings.TransitionStatus(ctx, bookingID, booking.Status, to, at)
	if err != nil {
		return nil, fmt.Errorf("set booking %s to %s: %w", bookingID, to, err)
	}
	if !updated {
		// Someone else moved it first; judge against the current status.
		current, err := l.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return nil, fmt.Errorf("get booking %s: %w", bookingID, err)
		}
		if current != nil && current.Status == to {
			return current, nil
		}
		return nil, fmt.Errorf("booking %s changed concurrently, cannot become %s: %w", bookingID, to, ErrInvalidTransition)
	}

	booking.Status = to
	booking.UpdatedAt = at

	l.log.Info("Booking status changed",
		zap.String("booking_id", bookingID.String()),
		zap.String("confirmation_code", booking.ConfirmationCode),
		zap.String("status", string(to)),
	)
	return booking, nil
}

func (l *ledger) ListBookingsForUser(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	bookings, err := l.bookings.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for user %s: %w", userID, err)
	}
	if bookings == nil {
		bookings = []*entity.Booking{}
	}
	return bookings, nil
}

func (l *ledger) GetBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := l.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	return booking, nil
}

func (l *ledger) GetBookingByCode(ctx context.Context, code string) (*entity.Booking, error) {
	booking, err := l.bookings.FindByConfirmationCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get booking by code %s: %w", code, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking with code %s: %w", code, ErrNotFound)
	}
	return booking, nil
}
