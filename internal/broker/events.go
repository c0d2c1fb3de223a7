package broker

import (
	"context"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
)

// EventPublisher handles publishing domain events. A publisher without a
// producer drops every event.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func orderKey(id uuid.UUID) string   { return "order-" + id.String() }
func productKey(id uuid.UUID) string { return "product-" + id.String() }

func (ep *EventPublisher) publish(ctx context.Context, key, eventType string, event interface{}) error {
	if ep == nil || ep.producer == nil {
		util.EventsPublishedTotal.WithLabelValues(eventType, "disabled").Inc()
		return nil
	}

	if err := ep.producer.PublishEvent(ctx, key, event); err != nil {
		util.EventsPublishedTotal.WithLabelValues(eventType, "error").Inc()
		return err
	}
	util.EventsPublishedTotal.WithLabelValues(eventType, "ok").Inc()
	return nil
}

// PublishOrderCreated publishes OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.publish(ctx, orderKey(event.OrderID), event.EventType, event)
}

// PublishOrderUpdated publishes OrderUpdated event
func (ep *EventPublisher) PublishOrderUpdated(ctx context.Context, event *models.OrderUpdatedEvent) error {
	return ep.publish(ctx, orderKey(event.OrderID), event.EventType, event)
}

// PublishOrderStatusChanged publishes OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return ep.publish(ctx, orderKey(event.OrderID), event.EventType, event)
}

// PublishOrderDeleted publishes OrderDeleted event
func (ep *EventPublisher) PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error {
	return ep.publish(ctx, orderKey(event.OrderID), event.EventType, event)
}

// PublishProductStockUpdated publishes ProductStockUpdated event
func (ep *EventPublisher) PublishProductStockUpdated(ctx context.Context, event *models.ProductStockUpdatedEvent) error {
	return ep.publish(ctx, productKey(event.ProductID), event.EventType, event)
}
