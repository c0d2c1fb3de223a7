package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated        = "ORDER_CREATED"
	EventTypeOrderUpdated        = "ORDER_UPDATED"
	EventTypeOrderStatusChanged  = "ORDER_STATUS_CHANGED"
	EventTypeOrderDeleted        = "ORDER_DELETED"
	EventTypeProductStockUpdated = "PRODUCT_STOCK_UPDATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBaseEvent stamps a fresh event id and the current time.
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// OrderCreatedEvent published when an order is created
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	CustomerEmail string          `json:"customer_email"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []OrderItemData `json:"items"`
}

// OrderUpdatedEvent published after a full order update
type OrderUpdatedEvent struct {
	BaseEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemsReplaced bool            `json:"items_replaced"`
	Items         []OrderItemData `json:"items,omitempty"`
}

// OrderStatusChangedEvent published by the status update action
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
}

// OrderDeletedEvent published when an order and its items are removed
type OrderDeletedEvent struct {
	BaseEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// ProductStockUpdatedEvent published when a product's stock is replaced
type ProductStockUpdatedEvent struct {
	BaseEvent
	ProductID   uuid.UUID `json:"product_id"`
	OldQuantity int       `json:"old_quantity"`
	NewQuantity int       `json:"new_quantity"`
	IsAvailable bool      `json:"is_available"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ItemData converts order items to their event representation.
func ItemData(items []OrderItem) []OrderItemData {
	data := make([]OrderItemData, 0, len(items))
	for _, item := range items {
		data = append(data, OrderItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return data
}
