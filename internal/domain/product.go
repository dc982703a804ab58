package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the persisted document. Price is kept in the storage decimal
// form; convert with the money codec at the boundaries.
type Product struct {
	ID        string               `bson:"id"`
	Name      string               `bson:"name"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
	Status    bool                 `bson:"status"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

// ProductChanges is the merge payload of a partial update. Nil fields are
// left untouched on the stored document.
type ProductChanges struct {
	Quantity *int
	Price    *primitive.Decimal128
	Status   *bool
}

func (c ProductChanges) Empty() bool {
	return c.Quantity == nil && c.Price == nil && c.Status == nil
}

// Apply merges the present fields into p and stamps updatedAt.
func (c ProductChanges) Apply(p *Product, updatedAt time.Time) {
	if c.Quantity != nil {
		p.Quantity = *c.Quantity
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
	if c.Status != nil {
		p.Status = *c.Status
	}
	p.UpdatedAt = updatedAt
}

// Timestamp normalizes t to the resolution every store can keep (BSON
// datetimes are milliseconds), so a value returned on create equals the one
// read back later.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
