package adaptor

import (
	"restaurant-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Restaurant *RestaurantHandler
	Booking    *BookingHandler
	Draft      *DraftHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Restaurant: NewRestaurantHandler(service.Restaurant, log),
		Booking:    NewBookingHandler(service.Booking, log),
		Draft:      NewDraftHandler(service.Booking, log),
	}
}
