package repository

import (
	"restaurant-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Restaurant RestaurantRepository
	Booking    BookingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Restaurant: NewRestaurantRepository(db, log),
		Booking:    NewBookingRepository(db, log),
	}
}

// NewMemoryRepository backs the service with process memory, used when no
// database is configured and in tests.
func NewMemoryRepository(log *zap.Logger) *Repository {
	return &Repository{
		Restaurant: NewMemoryRestaurantRepository(log),
		Booking:    NewMemoryBookingRepository(log),
	}
}
