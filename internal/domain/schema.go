package domain

import (
	"fmt"
	"time"

	"github.com/cloud-wave-best-zizon/store-service/internal/money"
	"github.com/google/uuid"
)

type CreateProductRequest struct {
	Name     string
	Quantity int
	Price    money.Amount
	Status   bool
}

// UpdateProductRequest carries the optional fields of a PATCH. Name is not
// updatable.
type UpdateProductRequest struct {
	Quantity *int
	Price    *money.Amount
	Status   *bool
}

type ProductResponse struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Quantity  int          `json:"quantity"`
	Price     money.Amount `json:"price"`
	Status    bool         `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewProduct builds the document for a freshly created product. Both
// timestamps get the same value.
func NewProduct(id uuid.UUID, req CreateProductRequest, now time.Time) (*Product, error) {
	price, err := money.ToStorage(req.Price)
	if err != nil {
		return nil, err
	}

	now = Timestamp(now)
	return &Product{
		ID:        id.String(),
		Name:      req.Name,
		Quantity:  req.Quantity,
		Price:     price,
		Status:    req.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r UpdateProductRequest) Changes() (ProductChanges, error) {
	changes := ProductChanges{
		Quantity: r.Quantity,
		Status:   r.Status,
	}

	if r.Price != nil {
		price, err := money.ToStorage(*r.Price)
		if err != nil {
			return ProductChanges{}, err
		}
		changes.Price = &price
	}

	return changes, nil
}

func NewProductResponse(p *Product) (*ProductResponse, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("stored product has invalid id %q: %w", p.ID, err)
	}

	price, err := money.FromStorage(p.Price)
	if err != nil {
		return nil, fmt.Errorf("stored product %s has invalid price: %w", p.ID, err)
	}

	return &ProductResponse{
		ID:        id,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     price,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}
