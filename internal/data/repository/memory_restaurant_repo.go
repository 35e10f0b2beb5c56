package repository

import (
	"context"
	"sort"
	"sync"

	"restaurant-booking/internal/data/entity"
	"restaurant-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memoryRestaurantRepository struct {
	mu          sync.RWMutex
	restaurants map[uuid.UUID]*entity.Restaurant
	log         *zap.Logger
}

func NewMemoryRestaurantRepository(log *zap.Logger) RestaurantRepository {
	return &memoryRestaurantRepository{
		restaurants: make(map[uuid.UUID]*entity.Restaurant),
		log:         log.With(zap.String("repository", "restaurant_memory")),
	}
}

func (r *memoryRestaurantRepository) Create(ctx context.Context, restaurant *entity.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.restaurants[restaurant.ID]; exists {
		return nil
	}
	stored := *restaurant
	r.restaurants[stored.ID] = &stored
	return nil
}

func (r *memoryRestaurantRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	restaurant, ok := r.restaurants[id]
	if !ok {
		return nil, nil
	}
	out := *restaurant
	return &out, nil
}

func (r *memoryRestaurantRepository) FindBySlug(ctx context.Context, slug string) (*entity.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, restaurant := range r.restaurants {
		if restaurant.Slug == slug {
			out := *restaurant
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memoryRestaurantRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Restaurant, error) {
	r.mu.RLock()
	all := make([]*entity.Restaurant, 0, len(r.restaurants))
	for _, restaurant := range r.restaurants {
		out := *restaurant
		all = append(all, &out)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	start, end := utils.PageBounds(offset, limit, len(all))
	if start == end {
		return nil, nil
	}
	return all[start:end], nil
}

func (r *memoryRestaurantRepository) CountAll(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.restaurants)), nil
}
