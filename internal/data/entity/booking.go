package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

var bookingTransitions = map[BookingStatus]map[BookingStatus]bool{
	BookingStatusConfirmed: {BookingStatusCancelled: true, BookingStatusCompleted: true},
	BookingStatusCancelled: {},
	BookingStatusCompleted: {},
}

func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to BookingStatus) bool {
	return bookingTransitions[from][to]
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusSkipped PaymentStatus = "skipped"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusSkipped:
		return true
	}
	return false
}

type Booking struct {
	Base
	RestaurantID     uuid.UUID     `db:"restaurant_id"`
	UserID           uuid.UUID     `db:"user_id"`
	Date             time.Time     `db:"booking_date"`
	Time             ClockTime     `db:"slot_minute"`
	Seats            int           `db:"seats"`
	TotalAmount      float64       `db:"total_amount"`
	PaymentStatus    PaymentStatus `db:"payment_status"`
	Status           BookingStatus `db:"booking_status"`
	ConfirmationCode string        `db:"confirmation_code"`
}

// Holds reports whether the booking still occupies seats in its slot.
func (b *Booking) Holds() bool {
	return b.Status != BookingStatusCancelled
}

// SlotKey identifies the (restaurant, date, time) slot a booking belongs to.
func SlotKey(restaurantID uuid.UUID, date time.Time, t ClockTime) string {
	return restaurantID.String() + ":" + FormatDate(date) + ":" + t.String()
}
