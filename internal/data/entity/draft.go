package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultDraftSeats = 2

// Draft is a user's reservation in progress.
type Draft struct {
	UserID       uuid.UUID  `json:"user_id"`
	RestaurantID *uuid.UUID `json:"restaurant_id,omitempty"`
	Date         *time.Time `json:"date,omitempty"`
	Time         *ClockTime `json:"time,omitempty"`
	Seats        int        `json:"seats"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func NewDraft(userID uuid.UUID) *Draft {
	return &Draft{
		UserID: userID,
		Seats:  DefaultDraftSeats,
	}
}

// Complete reports whether every selection needed to commit is present.
func (d *Draft) Complete() bool {
	return d.RestaurantID != nil && d.Date != nil && d.Time != nil && d.Seats > 0
}
