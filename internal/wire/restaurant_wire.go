package wire

import (
	"restaurant-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireRestaurant(r chi.Router, restaurantHandler *adaptor.RestaurantHandler) {
	// ==================== PUBLIC ROUTES ====================
	r.Route("/api/restaurants", func(r chi.Router) {
		// GET /api/restaurants - Catalog, paginated
		r.Get("/", restaurantHandler.ListRestaurants)

		// GET /api/restaurants/{id} - One restaurant by id or slug
		r.Get("/{id}", restaurantHandler.GetRestaurant)

		// GET /api/restaurants/{id}/slots?date= - Hourly availability for a day
		r.Get("/{id}/slots", restaurantHandler.GetAvailability)
	})
}
