package response

import (
	"time"

	"restaurant-booking/internal/data/entity"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID               uuid.UUID `json:"id"`
	RestaurantID     uuid.UUID `json:"restaurant_id"`
	RestaurantName   string    `json:"restaurant_name,omitempty"`
	UserID           uuid.UUID `json:"user_id"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Seats            int       `json:"seats"`
	TotalAmount      float64   `json:"total_amount"`
	PaymentStatus    string    `json:"payment_status"`
	BookingStatus    string    `json:"booking_status"`
	ConfirmationCode string    `json:"confirmation_code"`
	CreatedAt        time.Time `json:"created_at"`
}

func NewBookingResponse(b *entity.Booking, restaurantName string) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		RestaurantID:     b.RestaurantID,
		RestaurantName:   restaurantName,
		UserID:           b.UserID,
		Date:             entity.FormatDate(b.Date),
		Time:             b.Time.String(),
		Seats:            b.Seats,
		TotalAmount:      b.TotalAmount,
		PaymentStatus:    string(b.PaymentStatus),
		BookingStatus:    string(b.Status),
		ConfirmationCode: b.ConfirmationCode,
		CreatedAt:        b.CreatedAt,
	}
}

// DraftResponse shows the draft together with its running total.
type DraftResponse struct {
	RestaurantID   *uuid.UUID `json:"restaurant_id"`
	RestaurantName string     `json:"restaurant_name,omitempty"`
	Date           *string    `json:"date"`
	Time           *string    `json:"time"`
	Seats          int        `json:"seats"`
	PricePerSeat   float64    `json:"price_per_seat"`
	TotalAmount    float64    `json:"total_amount"`
	Complete       bool       `json:"complete"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func NewDraftResponse(d *entity.Draft, restaurant *entity.Restaurant) *DraftResponse {
	out := &DraftResponse{
		RestaurantID: d.RestaurantID,
		Seats:        d.Seats,
		Complete:     d.Complete(),
		UpdatedAt:    d.UpdatedAt,
	}
	if d.Date != nil {
		date := entity.FormatDate(*d.Date)
		out.Date = &date
	}
	if d.Time != nil {
		t := d.Time.String()
		out.Time = &t
	}
	if restaurant != nil {
		out.RestaurantName = restaurant.Name
		out.PricePerSeat = restaurant.PricePerSeat
		out.TotalAmount = restaurant.PricePerSeat * float64(d.Seats)
	}
	return out
}
