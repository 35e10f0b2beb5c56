package repository

import (
	"context"
	"errors"
	"fmt"

	"restaurant-booking/internal/data/entity"
	"restaurant-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *entity.Restaurant) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Restaurant, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Restaurant, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Restaurant, error)
	CountAll(ctx context.Context) (int64, error)
}

type restaurantRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRestaurantRepository(db database.PgxIface, log *zap.Logger) RestaurantRepository {
	return &restaurantRepository{
		db:  db,
		log: log.With(zap.String("repository", "restaurant")),
	}
}

const restaurantColumns = `id, slug, name, cuisine, address, phone, description, rating,
		total_seats, open_minute, close_minute, price_per_seat`

func scanRestaurant(row pgx.Row) (*entity.Restaurant, error) {
	var restaurant entity.Restaurant
	err := row.Scan(
		&restaurant.ID,
		&restaurant.Slug,
		&restaurant.Name,
		&restaurant.Cuisine,
		&restaurant.Address,
		&restaurant.Phone,
		&restaurant.Description,
		&restaurant.Rating,
		&restaurant.TotalSeats,
		&restaurant.OpenTime,
		&restaurant.CloseTime,
		&restaurant.PricePerSeat,
	)
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) Create(ctx context.Context, restaurant *entity.Restaurant) error {
	query := `
		INSERT INTO restaurants (` + restaurantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query,
		restaurant.ID,
		restaurant.Slug,
		restaurant.Name,
		restaurant.Cuisine,
		restaurant.Address,
		restaurant.Phone,
		restaurant.Description,
		restaurant.Rating,
		restaurant.TotalSeats,
		restaurant.OpenTime,
		restaurant.CloseTime,
		restaurant.PricePerSeat,
	)
	if err != nil {
		r.log.Error("Failed to create restaurant",
			zap.Error(err),
			zap.String("name", restaurant.Name),
		)
		return fmt.Errorf("create restaurant %s: %w", restaurant.Name, err)
	}

	return nil
}

func (r *restaurantRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`

	restaurant, err := scanRestaurant(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find restaurant by ID",
			zap.Error(err),
			zap.String("restaurant_id", id.String()),
		)
		return nil, fmt.Errorf("find restaurant by ID %s: %w", id.String(), err)
	}

	return restaurant, nil
}

func (r *restaurantRepository) FindBySlug(ctx context.Context, slug string) (*entity.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE slug = $1`

	restaurant, err := scanRestaurant(r.db.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find restaurant by slug",
			zap.Error(err),
			zap.String("slug", slug),
		)
		return nil, fmt.Errorf("find restaurant by slug %s: %w", slug, err)
	}

	return restaurant, nil
}

func (r *restaurantRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find all restaurants",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all restaurants limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	var restaurants []*entity.Restaurant
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			r.log.Error("Failed to scan restaurant row", zap.Error(err))
			return nil, fmt.Errorf("scan restaurant row: %w", err)
		}
		restaurants = append(restaurants, restaurant)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate restaurant rows: %w", err)
	}

	return restaurants, nil
}

func (r *restaurantRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM restaurants`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count restaurants", zap.Error(err))
		return 0, fmt.Errorf("count restaurants: %w", err)
	}

	return count, nil
}
