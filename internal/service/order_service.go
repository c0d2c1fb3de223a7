package service

import (
	"context"
	"errors"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxOrderNumberAttempts bounds the retries of an order creation that lost
// the race for its order number.
const maxOrderNumberAttempts = 3

// OrderService handles order business logic
type OrderService struct {
	store     OrderStore
	publisher EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service. A nil publisher disables events.
func NewOrderService(store OrderStore, publisher EventPublisher) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// OrderRequest is the body of order create and update. A total_amount in the
// body is ignored; the total is always derived from the items.
type OrderRequest struct {
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	CustomerPhone   string             `json:"customer_phone"`
	ShippingAddress string             `json:"shipping_address"`
	Notes           string             `json:"notes"`
	Status          string             `json:"status"`
	PaymentStatus   string             `json:"payment_status"`
	Items           []OrderItemRequest `json:"order_items"`
}

// OrderItemRequest represents an item in an order. UnitPrice defaults to the
// product's current price.
type OrderItemRequest struct {
	Product   *uuid.UUID       `json:"product"`
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// List returns one page of orders and the total match count.
func (s *OrderService) List(ctx context.Context, f store.OrderFilter) ([]models.Order, int, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.List")
	defer span.End()

	return s.store.ListOrders(ctx, f)
}

// ByCustomer lists the orders placed with exactly this e-mail address.
func (s *OrderService) ByCustomer(ctx context.Context, email string, q store.ListQuery) ([]models.Order, int, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ByCustomer")
	defer span.End()

	return s.store.ListOrders(ctx, store.OrderFilter{ListQuery: q, CustomerEmail: email})
}

// Get retrieves an order with its items
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Get")
	defer span.End()

	return s.store.GetOrderByID(ctx, id)
}

// Create validates the order and its items, derives subtotals and the total,
// and stores everything in one transaction.
func (s *OrderService) Create(ctx context.Context, req *OrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Create")
	defer span.End()

	order := &models.Order{
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	applyOrderFields(order, req)

	v := models.Violations{}
	items, err := s.buildItems(ctx, req.Items, v)
	if err != nil {
		return nil, err
	}
	order.Items = items
	order.TotalAmount = models.OrderTotal(items)

	v.Merge("", models.ValidateOrder(order))
	if !v.Valid() {
		return nil, validationFailed("order", v)
	}

	if err := s.createWithFreshNumber(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	util.OrderAmountTotal.Add(order.TotalAmount.InexactFloat64())
	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total_amount", order.TotalAmount.String()))

	if s.publisher != nil {
		event := &models.OrderCreatedEvent{
			BaseEvent:     models.NewBaseEvent(models.EventTypeOrderCreated),
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			CustomerEmail: order.CustomerEmail,
			TotalAmount:   order.TotalAmount,
			Items:         models.ItemData(order.Items),
		}
		warnOnError(s.logger, "Failed to publish OrderCreated event", s.publisher.PublishOrderCreated(ctx, event))
	}

	return order, nil
}

// createWithFreshNumber lets the store assign the order number and retries
// when a concurrent creation took the same one.
func (s *OrderService) createWithFreshNumber(ctx context.Context, order *models.Order) error {
	var err error
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = ""
		err = s.store.CreateOrder(ctx, order)
		if !errors.Is(err, store.ErrDuplicateOrderNumber) {
			return err
		}
		util.OrderNumberConflictsTotal.Inc()
		s.logger.Warn("Order number collision",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt))
	}
	return err
}

// Update replaces the order fields. When req carries order_items the whole
// item set is replaced and the total recomputed; otherwise both stay as they are.
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req *OrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Update")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyOrderFields(order, req)

	v := models.Violations{}
	replaceItems := req.Items != nil
	if replaceItems {
		items, err := s.buildItems(ctx, req.Items, v)
		if err != nil {
			return nil, err
		}
		order.Items = items
		order.TotalAmount = models.OrderTotal(items)
	}

	v.Merge("", models.ValidateOrder(order))
	if !v.Valid() {
		return nil, validationFailed("order", v)
	}

	if err := s.store.UpdateOrder(ctx, order, replaceItems); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info("Order updated",
		zap.String("order_id", id.String()),
		zap.Bool("items_replaced", replaceItems))

	if s.publisher != nil {
		event := &models.OrderUpdatedEvent{
			BaseEvent:     models.NewBaseEvent(models.EventTypeOrderUpdated),
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			TotalAmount:   order.TotalAmount,
			ItemsReplaced: replaceItems,
		}
		if replaceItems {
			event.Items = models.ItemData(order.Items)
		}
		warnOnError(s.logger, "Failed to publish OrderUpdated event", s.publisher.PublishOrderUpdated(ctx, event))
	}

	return order, nil
}

// UpdateStatus sets a new order status and returns the updated order.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case status == "":
		return nil, validationFailed("order", models.Violations{"status": {"This field is required."}})
	case !models.IsValidOrderStatus(status):
		return nil, validationFailed("order", models.Violations{"status": {fmt.Sprintf("Invalid status %q", status)}})
	}

	if err := s.store.UpdateOrderStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	oldStatus := order.Status
	order.Status = status
	util.OrderStatusChangesTotal.WithLabelValues(status).Inc()

	s.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("old_status", oldStatus),
		zap.String("new_status", status))

	if s.publisher != nil {
		event := &models.OrderStatusChangedEvent{
			BaseEvent:   models.NewBaseEvent(models.EventTypeOrderStatusChanged),
			OrderID:     id,
			OrderNumber: order.OrderNumber,
			OldStatus:   oldStatus,
			NewStatus:   status,
		}
		warnOnError(s.logger, "Failed to publish OrderStatusChanged event",
			s.publisher.PublishOrderStatusChanged(ctx, event))
	}

	return order, nil
}

// Delete removes an order together with its items.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := util.StartSpan(ctx, "OrderService.Delete")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Order deleted",
		zap.String("order_id", id.String()),
		zap.String("order_number", order.OrderNumber))

	if s.publisher != nil {
		event := &models.OrderDeletedEvent{
			BaseEvent:   models.NewBaseEvent(models.EventTypeOrderDeleted),
			OrderID:     id,
			OrderNumber: order.OrderNumber,
		}
		warnOnError(s.logger, "Failed to publish OrderDeleted event", s.publisher.PublishOrderDeleted(ctx, event))
	}
	return nil
}

// applyOrderFields copies the header fields of req. Empty statuses keep the
// current value.
func applyOrderFields(o *models.Order, req *OrderRequest) {
	o.CustomerName = req.CustomerName
	o.CustomerEmail = req.CustomerEmail
	o.CustomerPhone = req.CustomerPhone
	o.ShippingAddress = req.ShippingAddress
	o.Notes = req.Notes
	if req.Status != "" {
		o.Status = req.Status
	}
	if req.PaymentStatus != "" {
		o.PaymentStatus = req.PaymentStatus
	}
}

// buildItems resolves the requested items against the catalog and computes
// their subtotals. Problems are recorded in v under order_items.N.field.
func (s *OrderService) buildItems(ctx context.Context, reqs []OrderItemRequest, v models.Violations) ([]models.OrderItem, error) {
	if len(reqs) == 0 {
		v.Add("order_items", "At least one order item is required")
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(reqs))
	seen := make(map[uuid.UUID]bool, len(reqs))
	for _, r := range reqs {
		if r.Product != nil && !seen[*r.Product] {
			seen[*r.Product] = true
			ids = append(ids, *r.Product)
		}
	}

	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	productMap := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	items := make([]models.OrderItem, 0, len(reqs))
	used := make(map[uuid.UUID]bool, len(reqs))
	for i, r := range reqs {
		prefix := fmt.Sprintf("order_items.%d", i)
		iv := models.Violations{}
		item := models.OrderItem{}

		if r.Quantity == nil {
			iv.Add("quantity", "This field is required.")
		} else {
			item.Quantity = *r.Quantity
		}

		var product *models.Product
		switch {
		case r.Product == nil:
			iv.Add("product", "This field is required.")
		case productMap[*r.Product] == nil:
			iv.Add("product", fmt.Sprintf("Invalid pk %q - object does not exist.", *r.Product))
		case used[*r.Product]:
			iv.Add("product", "Each product may appear only once per order.")
		default:
			product = productMap[*r.Product]
			used[product.ID] = true
			item.ProductID = product.ID
			item.ProductName = product.Name
			item.ProductPrice = product.Price
		}

		if r.UnitPrice != nil {
			item.UnitPrice = *r.UnitPrice
		} else if product != nil {
			item.UnitPrice = product.Price
		}
		if product != nil && r.UnitPrice != nil && !r.UnitPrice.Equal(product.Price) {
			iv.Add("unit_price", fmt.Sprintf("Unit price must match the product price %s", product.Price))
		}

		item.Subtotal = models.ItemSubtotal(item.Quantity, item.UnitPrice)
		for field, msgs := range models.ValidateOrderItem(&item) {
			// already reported above
			if field == "product" || (field == "quantity" && r.Quantity == nil) {
				continue
			}
			iv[field] = append(iv[field], msgs...)
		}

		v.Merge(prefix, iv)
		items = append(items, item)
	}
	return items, nil
}
