package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloud-wave-best-zizon/store-service/internal/domain"
	"github.com/cloud-wave-best-zizon/store-service/internal/events"
	"github.com/cloud-wave-best-zizon/store-service/internal/repository"
	"github.com/cloud-wave-best-zizon/store-service/pkg/logging"
	"github.com/cloud-wave-best-zizon/store-service/pkg/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event events.ProductEvent) error
}

type ProductService struct {
	productRepo repository.ProductRepository
	publisher   EventPublisher
	logger      *zap.Logger
	now         func() time.Time
	newID       func() uuid.UUID
}

type Option func(*ProductService)

func WithClock(now func() time.Time) Option {
	return func(s *ProductService) {
		s.now = now
	}
}

func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *ProductService) {
		s.newID = newID
	}
}

func NewProductService(productRepo repository.ProductRepository, publisher EventPublisher, logger *zap.Logger, opts ...Option) *ProductService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	s := &ProductService{
		productRepo: productRepo,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ProductService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.ProductResponse, error) {
	id := s.newID()

	product, err := domain.NewProduct(id, req, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Insert(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	resp, err := domain.NewProductResponse(product)
	if err != nil {
		return nil, err
	}

	logging.Info(ctx, s.logger, "Product created successfully",
		zap.String("product_id", product.ID),
		zap.Int("quantity", product.Quantity))

	s.publish(ctx, events.ProductCreated, id, resp)
	return resp, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.ProductResponse, error) {
	product, err := s.productRepo.FindOne(ctx, id.String())
	if err != nil {
		return nil, s.translate(ctx, id, err)
	}
	return domain.NewProductResponse(product)
}

// ListProducts returns every stored product in no particular order.
func (s *ProductService) ListProducts(ctx context.Context) ([]domain.ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	out := make([]domain.ProductResponse, 0, len(products))
	for i := range products {
		resp, err := domain.NewProductResponse(&products[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// UpdateProduct merges the present fields of req. An empty request only
// refreshes updated_at.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req domain.UpdateProductRequest) (*domain.ProductResponse, error) {
	changes, err := req.Changes()
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.UpdateOne(ctx, id.String(), changes)
	if err != nil {
		return nil, s.translate(ctx, id, err)
	}

	resp, err := domain.NewProductResponse(product)
	if err != nil {
		return nil, err
	}

	logging.Info(ctx, s.logger, "Product updated successfully", zap.String("product_id", product.ID))

	s.publish(ctx, events.ProductUpdated, id, resp)
	return resp, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := s.productRepo.DeleteOne(ctx, id.String()); err != nil {
		return false, s.translate(ctx, id, err)
	}

	logging.Info(ctx, s.logger, "Product deleted successfully", zap.String("product_id", id.String()))

	s.publish(ctx, events.ProductDeleted, id, nil)
	return true, nil
}

func (s *ProductService) translate(ctx context.Context, id uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		logging.Warn(ctx, s.logger, "Product not found", zap.String("product_id", id.String()))
		return domain.NewProductNotFoundError(id)
	}
	return err
}

func (s *ProductService) publish(ctx context.Context, eventType events.EventType, id uuid.UUID, product *domain.ProductResponse) {
	event := events.NewProductEvent(eventType, id, product, s.now())
	event.RequestID, _ = requestid.FromContext(ctx)
	if err := s.publisher.PublishProductEvent(ctx, event); err != nil {
		logging.Warn(ctx, s.logger, "Failed to publish product event",
			zap.String("event_type", string(eventType)),
			zap.String("product_id", id.String()),
			zap.Error(err))
	}
}
