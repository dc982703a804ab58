package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cloud-wave-best-zizon/store-service/internal/domain"
	"github.com/cloud-wave-best-zizon/store-service/internal/events"
	"github.com/cloud-wave-best-zizon/store-service/internal/money"
	"github.com/cloud-wave-best-zizon/store-service/internal/repository"
	"github.com/cloud-wave-best-zizon/store-service/pkg/requestid"
)

// steppingClock advances by one second on every reading.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ProductEvent
	err    error
}

func (p *recordingPublisher) PublishProductEvent(_ context.Context, event events.ProductEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type brokenRepository struct {
	repository.ProductRepository
	err error
}

func (r brokenRepository) Insert(context.Context, *domain.Product) error { return r.err }

func (r brokenRepository) FindOne(context.Context, string) (*domain.Product, error) {
	return nil, r.err
}

func (r brokenRepository) FindAll(context.Context) ([]domain.Product, error) { return nil, r.err }

type fixture struct {
	svc       *ProductService
	publisher *recordingPublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	clock := &steppingClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	publisher := &recordingPublisher{}
	repo := repository.NewMemoryRepository(repository.WithClock(clock.Now))

	return fixture{
		svc:       NewProductService(repo, publisher, zaptest.NewLogger(t), WithClock(clock.Now)),
		publisher: publisher,
	}
}

func createRequest(name, price string) domain.CreateProductRequest {
	return domain.CreateProductRequest{
		Name:     name,
		Quantity: 5,
		Price:    money.MustParse(price),
		Status:   true,
	}
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProduct(ctx, createRequest("pen", "8.500"))
	require.NoError(t, err)

	assert.Equal(t, uuid.Version(4), created.ID.Version())
	assert.Equal(t, "pen", created.Name)
	assert.Equal(t, 5, created.Quantity)
	assert.Equal(t, "8.500", created.Price.String())
	assert.True(t, created.Status)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := f.svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.ProductCreated, f.publisher.events[0].EventType)
	assert.Equal(t, created.ID.String(), f.publisher.events[0].ProductID)
}

func TestCreateProductUsesIDGenerator(t *testing.T) {
	id := uuid.MustParse("4fd7cd35-a3a0-4c1f-a78d-d24aa81e7dca")
	svc := NewProductService(repository.NewMemoryRepository(), nil, zaptest.NewLogger(t),
		WithIDGenerator(func() uuid.UUID { return id }))

	created, err := svc.CreateProduct(context.Background(), createRequest("pen", "1"))
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
}

func TestGetProductNotFound(t *testing.T) {
	f := newFixture(t)
	id := uuid.MustParse("4fd7cd35-a3a0-4c1f-a78d-d24aa81e7dca")

	_, err := f.svc.GetProduct(context.Background(), id)

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Product not found with filter: 4fd7cd35-a3a0-4c1f-a78d-d24aa81e7dca", notFound.Message)
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	products, err := f.svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	a, err := f.svc.CreateProduct(ctx, createRequest("pen", "8.500"))
	require.NoError(t, err)
	b, err := f.svc.CreateProduct(ctx, createRequest("ink", "0.25"))
	require.NoError(t, err)

	products, err = f.svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.ProductResponse{*a, *b}, products)
}

func TestUpdateProductMergesPresentFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProduct(ctx, createRequest("pen", "8.500"))
	require.NoError(t, err)

	price := money.MustParse("7.500")
	updated, err := f.svc.UpdateProduct(ctx, created.ID, domain.UpdateProductRequest{Price: &price})
	require.NoError(t, err)

	assert.Equal(t, "7.500", updated.Price.String())
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, created.Quantity, updated.Quantity)
	assert.Equal(t, created.Status, updated.Status)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, events.ProductUpdated, f.publisher.events[1].EventType)
	assert.Equal(t, "7.500", f.publisher.events[1].Product.Price.String())
}

func TestUpdateProductEmptyRequestRefreshesUpdatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProduct(ctx, createRequest("pen", "8.500"))
	require.NoError(t, err)

	updated, err := f.svc.UpdateProduct(ctx, created.ID, domain.UpdateProductRequest{})
	require.NoError(t, err)
	assert.Equal(t, created.Price.String(), updated.Price.String())
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdateProductNotFound(t *testing.T) {
	f := newFixture(t)
	quantity := 2

	_, err := f.svc.UpdateProduct(context.Background(), uuid.New(), domain.UpdateProductRequest{Quantity: &quantity})

	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Empty(t, f.publisher.events)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProduct(ctx, createRequest("pen", "8.500"))
	require.NoError(t, err)

	ok, err := f.svc.DeleteProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.DeleteProduct(ctx, created.ID)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.False(t, ok)
	assert.Equal(t, "Product not found with filter: "+created.ID.String(), notFound.Message)

	require.Len(t, f.publisher.events, 2)
	deleted := f.publisher.events[1]
	assert.Equal(t, events.ProductDeleted, deleted.EventType)
	assert.Nil(t, deleted.Product)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	created, err := f.svc.CreateProduct(context.Background(), createRequest("pen", "8.500"))
	require.NoError(t, err)
	assert.NotNil(t, created)
}

func TestStorageErrorsAreNotNotFound(t *testing.T) {
	storageErr := errors.New("connection reset")
	svc := NewProductService(brokenRepository{err: storageErr}, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, createRequest("pen", "1"))
	assert.ErrorIs(t, err, storageErr)

	_, err = svc.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, storageErr)
	var notFound *domain.NotFoundError
	assert.False(t, errors.As(err, &notFound))

	_, err = svc.ListProducts(ctx)
	assert.ErrorIs(t, err, storageErr)
}

func TestEventsCarryRequestID(t *testing.T) {
	f := newFixture(t)
	ctx := requestid.NewContext(context.Background(), "req-42")

	_, err := f.svc.CreateProduct(ctx, createRequest("pen", "1"))
	require.NoError(t, err)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "req-42", f.publisher.events[0].RequestID)
}
