package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products
type Category struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Product represents a sellable item in the catalog
type Product struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	CategoryID    uuid.UUID       `db:"category_id" json:"category"`
	CategoryName  string          `db:"category_name" json:"category_name"`
	Name          string          `db:"name" json:"name"`
	Description   string          `db:"description" json:"description"`
	Price         decimal.Decimal `db:"price" json:"price"`
	StockQuantity int             `db:"stock_quantity" json:"stock_quantity"`
	Status        string          `db:"status" json:"status"`
	Tags          string          `db:"tags" json:"tags"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// IsAvailable reports whether the product can currently be sold.
func (p *Product) IsAvailable() bool {
	return p.Status == ProductStatusActive && p.StockQuantity > 0
}

// MarshalJSON adds the derived is_available attribute.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		IsAvailable bool `json:"is_available"`
	}{
		product:     product(p),
		IsAvailable: p.IsAvailable(),
	})
}

// Order represents a customer order
type Order struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	OrderNumber     string          `db:"order_number" json:"order_number"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	CustomerEmail   string          `db:"customer_email" json:"customer_email"`
	CustomerPhone   string          `db:"customer_phone" json:"customer_phone"`
	Items           []OrderItem     `db:"-" json:"order_items"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status          string          `db:"status" json:"status"`
	PaymentStatus   string          `db:"payment_status" json:"payment_status"`
	ShippingAddress string          `db:"shipping_address" json:"shipping_address"`
	Notes           string          `db:"notes" json:"notes"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderItem represents items in an order. ProductName and ProductPrice are
// read from the referenced product, not stored on the item.
type OrderItem struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	OrderID      uuid.UUID       `db:"order_id" json:"-"`
	ProductID    uuid.UUID       `db:"product_id" json:"product"`
	ProductName  string          `db:"product_name" json:"product_name"`
	ProductPrice decimal.Decimal `db:"product_price" json:"product_price"`
	Quantity     int             `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal     decimal.Decimal `db:"subtotal" json:"subtotal"`
}

// Product statuses
const (
	ProductStatusActive       = "active"
	ProductStatusInactive     = "inactive"
	ProductStatusDiscontinued = "discontinued"
)

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

var (
	ProductStatuses = []string{ProductStatusActive, ProductStatusInactive, ProductStatusDiscontinued}
	OrderStatuses   = []string{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled}
	PaymentStatuses = []string{PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded}
)

// IsValidProductStatus reports whether s is one of ProductStatuses.
func IsValidProductStatus(s string) bool { return contains(ProductStatuses, s) }

// IsValidOrderStatus reports whether s is one of OrderStatuses.
func IsValidOrderStatus(s string) bool { return contains(OrderStatuses, s) }

// IsValidPaymentStatus reports whether s is one of PaymentStatuses.
func IsValidPaymentStatus(s string) bool { return contains(PaymentStatuses, s) }

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
