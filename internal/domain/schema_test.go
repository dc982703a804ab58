package domain

import (
	"testing"
	"time"

	"github.com/cloud-wave-best-zizon/store-service/internal/money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductAndResponse(t *testing.T) {
	id := uuid.MustParse("fce6cc37-10b9-4a8e-a8b2-977df327001a")
	now := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.FixedZone("BRT", -3*3600))

	product, err := NewProduct(id, CreateProductRequest{
		Name:     "Iphone 14 Pro Max",
		Quantity: 10,
		Price:    money.MustParse("8.500"),
		Status:   true,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, id.String(), product.ID)
	assert.Equal(t, "8.500", product.Price.String())
	assert.Equal(t, product.CreatedAt, product.UpdatedAt)
	assert.Equal(t, time.UTC, product.CreatedAt.Location())
	assert.Equal(t, 123000000, product.CreatedAt.Nanosecond())

	resp, err := NewProductResponse(product)
	require.NoError(t, err)
	assert.Equal(t, id, resp.ID)
	assert.Equal(t, "Iphone 14 Pro Max", resp.Name)
	assert.Equal(t, 10, resp.Quantity)
	assert.Equal(t, "8.500", resp.Price.String())
	assert.True(t, resp.Status)
	assert.True(t, resp.CreatedAt.Equal(product.CreatedAt))
}

func TestNewProductResponse_CorruptDocument(t *testing.T) {
	_, err := NewProductResponse(&Product{ID: "not-a-uuid"})
	assert.Error(t, err)
}

func TestUpdateProductRequestChanges(t *testing.T) {
	quantity := 3
	price := money.MustParse("7.500")

	changes, err := UpdateProductRequest{Quantity: &quantity, Price: &price}.Changes()
	require.NoError(t, err)

	require.NotNil(t, changes.Quantity)
	assert.Equal(t, 3, *changes.Quantity)
	require.NotNil(t, changes.Price)
	assert.Equal(t, "7.500", changes.Price.String())
	assert.Nil(t, changes.Status)
	assert.False(t, changes.Empty())

	empty, err := UpdateProductRequest{}.Changes()
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}

func TestProductChangesApply(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	status := false
	p := &Product{Name: "Phone", Quantity: 10, Status: true, CreatedAt: created, UpdatedAt: created}

	ProductChanges{Status: &status}.Apply(p, created.Add(time.Second))

	assert.Equal(t, "Phone", p.Name)
	assert.Equal(t, 10, p.Quantity)
	assert.False(t, p.Status)
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, created.Add(time.Second), p.UpdatedAt)
}

func TestNotFoundErrorMessage(t *testing.T) {
	id := uuid.MustParse("4fd7cd35-a3a0-4c1f-a78d-d24aa81e7dca")

	err := NewProductNotFoundError(id)
	assert.Equal(t, "Product not found with filter: 4fd7cd35-a3a0-4c1f-a78d-d24aa81e7dca", err.Error())
}
