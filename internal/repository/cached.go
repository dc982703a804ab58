package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloud-wave-best-zizon/store-service/internal/domain"
	"github.com/cloud-wave-best-zizon/store-service/pkg/logging"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func NewRedisClient(ctx context.Context, addr string, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established", zap.String("addr", addr))
	return rdb, nil
}

// CachedRepository is a read-through cache in front of another repository.
// Writes go straight to next and invalidate the cached entry. Redis failures
// are treated as cache misses.
type CachedRepository struct {
	next   ProductRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedRepository(next ProductRepository, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRepository {
	return &CachedRepository{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

type cachedProduct struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Price     string    `json:"price"`
	Status    bool      `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (r *CachedRepository) Insert(ctx context.Context, product *domain.Product) error {
	return r.next.Insert(ctx, product)
}

func (r *CachedRepository) FindOne(ctx context.Context, id string) (*domain.Product, error) {
	data, err := r.rdb.Get(ctx, productKey(id)).Bytes()
	switch {
	case err == nil:
		product, decodeErr := decodeCachedProduct(data)
		if decodeErr == nil {
			return product, nil
		}
		logging.Warn(ctx, r.logger, "Discarding undecodable cache entry",
			zap.String("product_id", id),
			zap.Error(decodeErr))
	case errors.Is(err, redis.Nil):
	default:
		logging.Warn(ctx, r.logger, "Cache read failed", zap.String("product_id", id), zap.Error(err))
	}

	product, err := r.next.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	r.store(ctx, product)
	return product, nil
}

func (r *CachedRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	return r.next.FindAll(ctx)
}

func (r *CachedRepository) UpdateOne(ctx context.Context, id string, changes domain.ProductChanges) (*domain.Product, error) {
	product, err := r.next.UpdateOne(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, id)
	return product, nil
}

func (r *CachedRepository) DeleteOne(ctx context.Context, id string) error {
	if err := r.next.DeleteOne(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *CachedRepository) store(ctx context.Context, p *domain.Product) {
	data, err := json.Marshal(cachedProduct{
		ID:        p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     p.Price.String(),
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	})
	if err != nil {
		return
	}

	if err := r.rdb.Set(ctx, productKey(p.ID), data, r.ttl).Err(); err != nil {
		logging.Warn(ctx, r.logger, "Cache write failed", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (r *CachedRepository) invalidate(ctx context.Context, id string) {
	if err := r.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		logging.Warn(ctx, r.logger, "Cache invalidation failed", zap.String("product_id", id), zap.Error(err))
	}
}

func decodeCachedProduct(data []byte) (*domain.Product, error) {
	var cp cachedProduct
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}

	price, err := primitive.ParseDecimal128(cp.Price)
	if err != nil {
		return nil, err
	}

	return &domain.Product{
		ID:        cp.ID,
		Name:      cp.Name,
		Quantity:  cp.Quantity,
		Price:     price,
		Status:    cp.Status,
		CreatedAt: cp.CreatedAt,
		UpdatedAt: cp.UpdatedAt,
	}, nil
}
