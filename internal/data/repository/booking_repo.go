package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-booking/internal/data/entity"
	"restaurant-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type BookingRepository interface {
	// InsertWithinCapacity stores the booking only if the seats already held
	// in its slot plus booking.Seats stay within capacity.
	InsertWithinCapacity(ctx context.Context, booking *entity.Booking, capacity int) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByConfirmationCode(ctx context.Context, code string) (*entity.Booking, error)
	ExistsConfirmationCode(ctx context.Context, code string) (bool, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error)
	BookedSeatsByDate(ctx context.Context, restaurantID uuid.UUID, date time.Time) (map[entity.ClockTime]int, error)
	FindConfirmedUntil(ctx context.Context, date time.Time) ([]*entity.Booking, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus, at time.Time) (bool, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, restaurant_id, user_id, booking_date, slot_minute, seats, total_amount,
		payment_status, booking_status, confirmation_code, created_at, updated_at`

const uniqueViolation = "23505"

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.RestaurantID,
		&booking.UserID,
		&booking.Date,
		&booking.Time,
		&booking.Seats,
		&booking.TotalAmount,
		&booking.PaymentStatus,
		&booking.Status,
		&booking.ConfirmationCode,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.Date = entity.NormalizeDate(booking.Date)
	return &booking, nil
}

func (r *bookingRepository) InsertWithinCapacity(ctx context.Context, booking *entity.Booking, capacity int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serializes writers of the same slot until commit.
	slotKey := entity.SlotKey(booking.RestaurantID, booking.Date, booking.Time)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, slotKey); err != nil {
		r.log.Error("Failed to lock slot", zap.Error(err), zap.String("slot", slotKey))
		return fmt.Errorf("lock slot %s: %w", slotKey, err)
	}

	var booked int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(seats), 0)
		FROM bookings
		WHERE restaurant_id = $1 AND booking_date = $2 AND slot_minute = $3
		  AND booking_status <> 'cancelled'
	`, booking.RestaurantID, booking.Date, booking.Time).Scan(&booked)
	if err != nil {
		r.log.Error("Failed to sum slot seats", zap.Error(err), zap.String("slot", slotKey))
		return fmt.Errorf("sum seats for slot %s: %w", slotKey, err)
	}

	if booked+booking.Seats > capacity {
		return fmt.Errorf("slot %s has %d of %d seats taken: %w", slotKey, booked, capacity, ErrSlotFull)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		booking.ID,
		booking.RestaurantID,
		booking.UserID,
		booking.Date,
		booking.Time,
		booking.Seats,
		booking.TotalAmount,
		booking.PaymentStatus,
		booking.Status,
		booking.ConfirmationCode,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert booking %s: %w", booking.ConfirmationCode, ErrDuplicateCode)
		}
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("confirmation_code", booking.ConfirmationCode),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.ConfirmationCode, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking %s: %w", booking.ConfirmationCode, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByConfirmationCode(ctx context.Context, code string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE confirmation_code = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by confirmation code",
			zap.Error(err),
			zap.String("confirmation_code", code),
		)
		return nil, fmt.Errorf("find booking by confirmation code %s: %w", code, err)
	}

	return booking, nil
}

func (r *bookingRepository) ExistsConfirmationCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE confirmation_code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check confirmation code %s: %w", code, err)
	}
	return exists, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *bookingRepository) BookedSeatsByDate(ctx context.Context, restaurantID uuid.UUID, date time.Time) (map[entity.ClockTime]int, error) {
	query := `
		SELECT slot_minute, SUM(seats)
		FROM bookings
		WHERE restaurant_id = $1 AND booking_date = $2 AND booking_status <> 'cancelled'
		GROUP BY slot_minute
	`

	rows, err := r.db.Query(ctx, query, restaurantID, date)
	if err != nil {
		r.log.Error("Failed to sum booked seats",
			zap.Error(err),
			zap.String("restaurant_id", restaurantID.String()),
			zap.String("date", entity.FormatDate(date)),
		)
		return nil, fmt.Errorf("sum booked seats for restaurant %s on %s: %w",
			restaurantID.String(), entity.FormatDate(date), err)
	}
	defer rows.Close()

	booked := make(map[entity.ClockTime]int)
	for rows.Next() {
		var slot entity.ClockTime
		var seats int
		if err := rows.Scan(&slot, &seats); err != nil {
			return nil, fmt.Errorf("scan booked seats row: %w", err)
		}
		booked[slot] = seats
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booked seats rows: %w", err)
	}

	return booked, nil
}

func (r *bookingRepository) FindConfirmedUntil(ctx context.Context, date time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_status = 'confirmed' AND booking_date <= $1
		ORDER BY booking_date, slot_minute
	`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		r.log.Error("Failed to find confirmed bookings", zap.Error(err))
		return nil, fmt.Errorf("find confirmed bookings until %s: %w", entity.FormatDate(date), err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *bookingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus, at time.Time) (bool, error) {
	query := `UPDATE bookings SET booking_status = $3, updated_at = $4 WHERE id = $1 AND booking_status = $2`

	result, err := r.db.Exec(ctx, query, id, from, to, at)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(to)),
		)
		return false, fmt.Errorf("update booking %s status to %s: %w", id.String(), string(to), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) collect(rows pgx.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	return bookings, nil
}
