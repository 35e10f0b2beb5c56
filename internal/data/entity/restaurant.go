package entity

import (
	"github.com/google/uuid"
)

// Restaurant is immutable reference data for the ledger.
type Restaurant struct {
	ID           uuid.UUID `db:"id"`
	Slug         string    `db:"slug"`
	Name         string    `db:"name"`
	Cuisine      string    `db:"cuisine"`
	Address      string    `db:"address"`
	Phone        string    `db:"phone"`
	Description  string    `db:"description"`
	Rating       float64   `db:"rating"`
	TotalSeats   int       `db:"total_seats"`
	OpenTime     ClockTime `db:"open_minute"`
	CloseTime    ClockTime `db:"close_minute"`
	PricePerSeat float64   `db:"price_per_seat"`
}

// Slots returns the hourly slot starts in [open hour, close hour).
func (r *Restaurant) Slots() []ClockTime {
	openHour, closeHour := r.OpenTime.Hour(), r.CloseTime.Hour()
	if closeHour <= openHour {
		return nil
	}

	slots := make([]ClockTime, 0, closeHour-openHour)
	for h := openHour; h < closeHour; h++ {
		slots = append(slots, Clock(h, 0))
	}
	return slots
}

// HasSlot reports whether t is one of the restaurant's hourly slots.
func (r *Restaurant) HasSlot(t ClockTime) bool {
	if !t.OnTheHour() {
		return false
	}
	return t.Hour() >= r.OpenTime.Hour() && t.Hour() < r.CloseTime.Hour()
}
