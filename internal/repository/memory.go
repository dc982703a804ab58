package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloud-wave-best-zizon/store-service/internal/domain"
)

// MemoryRepository keeps products in process memory. Used for memory://
// connection strings and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	opts     settings
}

func NewMemoryRepository(opts ...Option) *MemoryRepository {
	return &MemoryRepository{
		products: make(map[string]domain.Product),
		opts:     newSettings(opts),
	}
}

func (r *MemoryRepository) Insert(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; ok {
		return fmt.Errorf("duplicate product id %s", product.ID)
	}
	r.products[product.ID] = *product
	return nil
}

func (r *MemoryRepository) FindOne(ctx context.Context, id string) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

func (r *MemoryRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	return products, nil
}

func (r *MemoryRepository) UpdateOne(ctx context.Context, id string, changes domain.ProductChanges) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}

	changes.Apply(&product, domain.Timestamp(r.opts.now()))
	r.products[id] = product
	return &product, nil
}

func (r *MemoryRepository) DeleteOne(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}
