package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cloud-wave-best-zizon/store-service/internal/domain"
)

// ErrProductNotFound reports that no document matched the id. Callers decide
// what that means.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository owns the single products collection.
type ProductRepository interface {
	Insert(ctx context.Context, product *domain.Product) error
	FindOne(ctx context.Context, id string) (*domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	// UpdateOne merges the present fields into the stored document, refreshes
	// updated_at and returns the merged document.
	UpdateOne(ctx context.Context, id string, changes domain.ProductChanges) (*domain.Product, error)
	DeleteOne(ctx context.Context, id string) error
}

type settings struct {
	now func() time.Time
}

type Option func(*settings)

// WithClock sets the clock used to stamp updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

func newSettings(opts []Option) settings {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
