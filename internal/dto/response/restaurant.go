package response

import (
	"fmt"

	"restaurant-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type RestaurantResponse struct {
	ID           uuid.UUID `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Cuisine      string    `json:"cuisine"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	Description  string    `json:"description"`
	Rating       float64   `json:"rating"`
	TotalSeats   int       `json:"total_seats"`
	PricePerSeat float64   `json:"price_per_seat"`
	Opens        string    `json:"open_time"`
	Closes       string    `json:"close_time"`
}

// NewRestaurantResponse copies the matching fields and formats the hours.
func NewRestaurantResponse(r *entity.Restaurant) (RestaurantResponse, error) {
	var out RestaurantResponse
	if err := copier.Copy(&out, r); err != nil {
		return RestaurantResponse{}, fmt.Errorf("copy restaurant: %w", err)
	}
	out.Opens = r.OpenTime.String()
	out.Closes = r.CloseTime.String()
	return out, nil
}

type SlotResponse struct {
	Time           string `json:"time"`
	AvailableSeats int    `json:"available_seats"`
	TotalSeats     int    `json:"total_seats"`
	IsAvailable    bool   `json:"is_available"`
	Label          string `json:"label"`
}

type AvailabilityResponse struct {
	RestaurantID uuid.UUID      `json:"restaurant_id"`
	Date         string         `json:"date"`
	Slots        []SlotResponse `json:"slots"`
}

func NewAvailabilityResponse(restaurantID uuid.UUID, date string, slots []entity.TimeSlot) *AvailabilityResponse {
	out := &AvailabilityResponse{
		RestaurantID: restaurantID,
		Date:         date,
		Slots:        make([]SlotResponse, 0, len(slots)),
	}
	for _, s := range slots {
		out.Slots = append(out.Slots, SlotResponse{
			Time:           s.Time.String(),
			AvailableSeats: s.AvailableSeats,
			TotalSeats:     s.TotalSeats,
			IsAvailable:    s.IsAvailable,
			Label:          s.Label(),
		})
	}
	return out
}
