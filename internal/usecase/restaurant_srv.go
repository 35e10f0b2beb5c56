package usecase

import (
	"context"
	"fmt"

	"restaurant-booking/internal/data/entity"
	"restaurant-booking/internal/data/repository"
	"restaurant-booking/internal/dto/request"
	"restaurant-booking/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RestaurantService interface {
	ListRestaurants(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RestaurantResponse], error)
	GetRestaurant(ctx context.Context, idOrSlug string) (*response.RestaurantResponse, error)
	GetAvailability(ctx context.Context, idOrSlug string, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error)
}

type restaurantService struct {
	restaurants repository.RestaurantRepository
	ledger      Ledger
	log         *zap.Logger
}

func NewRestaurantService(repo *repository.Repository, ledger Ledger, log *zap.Logger) RestaurantService {
	return &restaurantService{
		restaurants: repo.Restaurant,
		ledger:      ledger,
		log:         log.With(zap.String("service", "restaurant")),
	}
}

func (s *restaurantService) ListRestaurants(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RestaurantResponse], error) {
	restaurants, err := s.restaurants.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list restaurants", zap.Error(err))
		return nil, fmt.Errorf("list restaurants: %w", err)
	}

	total, err := s.restaurants.CountAll(ctx)
	if err != nil {
		s.log.Error("Failed to count restaurants", zap.Error(err))
		return nil, fmt.Errorf("count restaurants: %w", err)
	}

	items := make([]response.RestaurantResponse, len(restaurants))
	for i, r := range restaurants {
		item, err := response.NewRestaurantResponse(r)
		if err != nil {
			s.log.Error("Failed to build restaurant response", zap.Error(err), zap.String("restaurant_id", r.ID.String()))
			return nil, fmt.Errorf("build restaurant %s: %w", r.ID, err)
		}
		items[i] = item
	}

	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}

func (s *restaurantService) GetRestaurant(ctx context.Context, idOrSlug string) (*response.RestaurantResponse, error) {
	restaurant, err := s.resolve(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	out, err := response.NewRestaurantResponse(restaurant)
	if err != nil {
		s.log.Error("Failed to build restaurant response", zap.Error(err), zap.String("restaurant_id", restaurant.ID.String()))
		return nil, fmt.Errorf("build restaurant %s: %w", restaurant.ID, err)
	}
	return &out, nil
}

// GetAvailability answers 404 for an unknown restaurant even though the
// ledger itself reports an empty slot list.
func (s *restaurantService) GetAvailability(ctx context.Context, idOrSlug string, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error) {
	date, err := entity.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	restaurant, err := s.resolve(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	slots, err := s.ledger.GetAvailableSlots(ctx, restaurant.ID, date)
	if err != nil {
		s.log.Error("Failed to get available slots",
			zap.Error(err),
			zap.String("restaurant_id", restaurant.ID.String()),
			zap.String("date", req.Date),
		)
		return nil, err
	}

	return response.NewAvailabilityResponse(restaurant.ID, entity.FormatDate(date), slots), nil
}

// resolve accepts either the restaurant UUID or its slug.
func (s *restaurantService) resolve(ctx context.Context, idOrSlug string) (*entity.Restaurant, error) {
	var (
		restaurant *entity.Restaurant
		err        error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		restaurant, err = s.restaurants.FindByID(ctx, id)
	} else {
		restaurant, err = s.restaurants.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		s.log.Error("Failed to get restaurant", zap.Error(err), zap.String("restaurant", idOrSlug))
		return nil, fmt.Errorf("get restaurant %s: %w", idOrSlug, err)
	}
	if restaurant == nil {
		return nil, fmt.Errorf("restaurant %s: %w", idOrSlug, ErrNotFound)
	}
	return restaurant, nil
}
