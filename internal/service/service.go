package service

import (
	"context"
	"errors"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrCategoryInUse is returned when deleting a category that still owns products.
	ErrCategoryInUse = errors.New("cannot delete category with existing products")

	// ErrProductInUse is returned when deleting a product referenced by order items.
	ErrProductInUse = errors.New("cannot delete product referenced by existing orders")
)

// CategoryStore is the persistence used by CategoryService.
type CategoryStore interface {
	ListCategories(ctx context.Context, q store.ListQuery) ([]models.Category, int, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	CategoryNameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CountProductsByCategory(ctx context.Context, id uuid.UUID) (int, error)
}

// ProductStore is the persistence used by ProductService.
type ProductStore interface {
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListProducts(ctx context.Context, f store.ProductFilter) ([]models.Product, int, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	UpdateProductStock(ctx context.Context, id uuid.UUID, quantity int) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	CountOrderItemsByProduct(ctx context.Context, id uuid.UUID) (int, error)
}

// OrderStore is the persistence used by OrderService.
type OrderStore interface {
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, int, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	UpdateOrder(ctx context.Context, o *models.Order, replaceItems bool) error
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// ProductCache is a read-through cache of single products. GetProduct
// returns nil, nil on a miss.
type ProductCache interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	DeleteAllProducts(ctx context.Context) error
}

// EventPublisher receives domain events after the write committed.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderUpdated(ctx context.Context, event *models.OrderUpdatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error
	PublishProductStockUpdated(ctx context.Context, event *models.ProductStockUpdatedEvent) error
}

// NopCache disables product caching.
type NopCache struct{}

func (NopCache) GetProduct(context.Context, uuid.UUID) (*models.Product, error) { return nil, nil }
func (NopCache) SetProduct(context.Context, *models.Product) error              { return nil }
func (NopCache) DeleteProduct(context.Context, uuid.UUID) error                 { return nil }
func (NopCache) DeleteAllProducts(context.Context) error                        { return nil }

// validationFailed counts and returns a rejected write.
func validationFailed(entity string, v models.Violations) error {
	util.ValidationFailuresTotal.WithLabelValues(entity).Inc()
	return v.Err()
}

// warnOnError logs a side effect that must not fail the request.
func warnOnError(logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	if err == nil {
		return
	}
	logger.Warn(msg, append(fields, zap.Error(err))...)
}
