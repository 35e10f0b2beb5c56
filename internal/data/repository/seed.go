package repository

import (
	"context"
	"fmt"

	"restaurant-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// DefaultPricePerSeat is the flat per-seat reservation fee of the reference catalog.
const DefaultPricePerSeat = 299

var seedRestaurants = []entity.Restaurant{
	{
		Name:        "The Grand Spice",
		Cuisine:     "Indian",
		Rating:      4.8,
		Address:     "42 MG Road, Coimbatore",
		Phone:       "+91 98765 43210",
		Description: "Authentic Indian cuisine with a modern twist. Renowned for biryanis and curries.",
		TotalSeats:  80,
		OpenTime:    entity.Clock(11, 0),
		CloseTime:   entity.Clock(23, 0),
	},
	{
		Name:        "Sakura Garden",
		Cuisine:     "Japanese",
		Rating:      4.6,
		Address:     "8 Race Course Road, Coimbatore",
		Phone:       "+91 97654 32109",
		Description: "Premium Japanese dining featuring fresh sushi, sashimi, and tempura.",
		TotalSeats:  60,
		OpenTime:    entity.Clock(12, 0),
		CloseTime:   entity.Clock(22, 30),
	},
	{
		Name:        "Bella Italia",
		Cuisine:     "Italian",
		Rating:      4.7,
		Address:     "15 Avinashi Road, Coimbatore",
		Phone:       "+91 96543 21098",
		Description: "Classic Italian pastas, wood-fired pizzas, and fine wines in an elegant setting.",
		TotalSeats:  70,
		OpenTime:    entity.Clock(11, 30),
		CloseTime:   entity.Clock(23, 30),
	},
	{
		Name:        "Dragon Palace",
		Cuisine:     "Chinese",
		Rating:      4.5,
		Address:     "27 RS Puram, Coimbatore",
		Phone:       "+91 95432 10987",
		Description: "Authentic Chinese flavors with dim sum, Peking duck, and wok specialties.",
		TotalSeats:  100,
		OpenTime:    entity.Clock(11, 0),
		CloseTime:   entity.Clock(22, 0),
	},
	{
		Name:        "The Rooftop Grill",
		Cuisine:     "Continental",
		Rating:      4.9,
		Address:     "1 Town Hall Road, Coimbatore",
		Phone:       "+91 94321 09876",
		Description: "Stunning rooftop dining with city views, premium steaks, and craft cocktails.",
		TotalSeats:  50,
		OpenTime:    entity.Clock(18, 0),
		CloseTime:   entity.Clock(23, 0),
	},
}

// RestaurantIDForSlug derives a stable id so reseeding never duplicates rows.
func RestaurantIDForSlug(s string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("restaurant-booking:restaurant:"+s))
}

// SeedRestaurants returns the reference catalog with slugs and ids filled in.
func SeedRestaurants() []*entity.Restaurant {
	restaurants := make([]*entity.Restaurant, 0, len(seedRestaurants))
	for _, seed := range seedRestaurants {
		r := seed
		r.Slug = slug.Make(r.Name)
		r.ID = RestaurantIDForSlug(r.Slug)
		r.PricePerSeat = DefaultPricePerSeat
		restaurants = append(restaurants, &r)
	}
	return restaurants
}

// Seed inserts the reference catalog; existing rows are left untouched.
func Seed(ctx context.Context, repo RestaurantRepository, log *zap.Logger) error {
	for _, r := range SeedRestaurants() {
		if err := repo.Create(ctx, r); err != nil {
			return fmt.Errorf("seed restaurant %s: %w", r.Slug, err)
		}
	}
	log.Info("Restaurant catalog seeded", zap.Int("count", len(seedRestaurants)))
	return nil
}
