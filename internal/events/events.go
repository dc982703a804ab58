package events

import (
	"context"
	"time"

	"github.com/cloud-wave-best-zizon/store-service/internal/domain"
	"github.com/google/uuid"
)

type EventType string

const (
	ProductCreated EventType = "ProductCreated"
	ProductUpdated EventType = "ProductUpdated"
	ProductDeleted EventType = "ProductDeleted"
)

// ProductEvent is published after every successful mutation. Product is the
// state after the change and is omitted for deletions.
type ProductEvent struct {
	EventID   string                  `json:"event_id"`
	EventType EventType               `json:"event_type"`
	ProductID string                  `json:"product_id"`
	Product   *domain.ProductResponse `json:"product,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
	RequestID string                  `json:"request_id,omitempty"`
}

func NewProductEvent(eventType EventType, productID uuid.UUID, product *domain.ProductResponse, now time.Time) ProductEvent {
	return ProductEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		ProductID: productID.String(),
		Product:   product,
		Timestamp: now.UTC(),
	}
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishProductEvent(context.Context, ProductEvent) error {
	return nil
}
