package service

import (
	"context"
	"errors"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

type orderFixture struct {
	store     *memStore
	publisher *recordingPublisher
	svc       *OrderService
	pen       models.Product
	pad       models.Product
}

func newOrderFixture() *orderFixture {
	m := newMemStore()
	cat := m.addCategory("Stationery")
	pen := m.addProduct(models.Product{CategoryID: cat.ID, Name: "Pen", Price: decimal.RequireFromString("10.00"), StockQuantity: 50})
	pad := m.addProduct(models.Product{CategoryID: cat.ID, Name: "Pad", Price: decimal.RequireFromString("5.00"), StockQuantity: 50})

	pub := &recordingPublisher{}
	return &orderFixture{
		store:     m,
		publisher: pub,
		svc:       NewOrderService(m, pub),
		pen:       pen,
		pad:       pad,
	}
}

func (f *orderFixture) request() *OrderRequest {
	return &OrderRequest{
		CustomerName:    "Grace Hopper",
		CustomerEmail:   "grace@example.com",
		ShippingAddress: "1 Navy Way",
		Items: []OrderItemRequest{
			{Product: uuidPtr(f.pen.ID), Quantity: intPtr(2)},
			{Product: uuidPtr(f.pad.ID), Quantity: intPtr(1)},
		},
	}
}

func validationFields(t *testing.T, err error) models.Violations {
	t.Helper()
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	return ve.Fields
}

func TestCreateOrderCalculatesTotal(t *testing.T) {
	f := newOrderFixture()

	order, err := f.svc.Create(context.Background(), f.request())
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	assert.True(t, decimal.RequireFromString("20.00").Equal(order.Items[0].Subtotal))
	assert.True(t, decimal.RequireFromString("5.00").Equal(order.Items[1].Subtotal))
	assert.True(t, decimal.RequireFromString("25.00").Equal(order.TotalAmount))

	assert.Equal(t, "ORD-001001", order.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "Pen", order.Items[0].ProductName)
	assert.True(t, f.pen.Price.Equal(order.Items[0].ProductPrice))
	assert.Equal(t, []string{models.EventTypeOrderCreated}, f.publisher.types)
}

func TestCreateOrderNumbersIncrease(t *testing.T) {
	f := newOrderFixture()

	first, err := f.svc.Create(context.Background(), f.request())
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), f.request())
	require.NoError(t, err)

	a, err := models.ParseOrderNumber(first.OrderNumber)
	require.NoError(t, err)
	b, err := models.ParseOrderNumber(second.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), a)
	assert.Greater(t, b, a)
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	f := newOrderFixture()
	req := f.request()
	req.Items = []OrderItemRequest{}

	_, err := f.svc.Create(context.Background(), req)
	assert.Contains(t, validationFields(t, err), "order_items")
	assert.Empty(t, f.store.orders)
	assert.Empty(t, f.publisher.types)
}

func TestCreateOrderItemErrors(t *testing.T) {
	f := newOrderFixture()

	tests := []struct {
		name  string
		item  OrderItemRequest
		field string
	}{
		{"missing product", OrderItemRequest{Quantity: intPtr(1)}, "order_items.0.product"},
		{"unknown product", OrderItemRequest{Product: uuidPtr(uuid.New()), Quantity: intPtr(1)}, "order_items.0.product"},
		{"missing quantity", OrderItemRequest{Product: uuidPtr(f.pen.ID)}, "order_items.0.quantity"},
		{"zero quantity", OrderItemRequest{Product: uuidPtr(f.pen.ID), Quantity: intPtr(0)}, "order_items.0.quantity"},
		{"quantity beyond integer column", OrderItemRequest{Product: uuidPtr(f.pen.ID), Quantity: intPtr(models.MaxQuantity + 1)}, "order_items.0.quantity"},
		{"price mismatch", OrderItemRequest{Product: uuidPtr(f.pen.ID), Quantity: intPtr(1), UnitPrice: decPtr("9.99")}, "order_items.0.unit_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request()
			req.Items = []OrderItemRequest{tt.item}
			_, err := f.svc.Create(context.Background(), req)
			assert.Contains(t, validationFields(t, err), tt.field)
		})
	}
	assert.Empty(t, f.store.orders)
}

func TestCreateOrderDuplicateProduct(t *testing.T) {
	f := newOrderFixture()
	req := f.request()
	req.Items = append(req.Items, OrderItemRequest{Product: uuidPtr(f.pen.ID), Quantity: intPtr(1)})

	_, err := f.svc.Create(context.Background(), req)
	assert.Contains(t, validationFields(t, err), "order_items.2.product")
}

func TestCreateOrderExplicitUnitPrice(t *testing.T) {
	f := newOrderFixture()
	req := f.request()
	req.Items = []OrderItemRequest{{Product: uuidPtr(f.pen.ID), Quantity: intPtr(3), UnitPrice: decPtr("10")}}

	order, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("30.00").Equal(order.TotalAmount))
}

func TestCreateOrderRetriesNumberCollision(t *testing.T) {
	f := newOrderFixture()
	f.store.collisions = 2

	order, err := f.svc.Create(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, "ORD-001001", order.OrderNumber)
	assert.Equal(t, 0, f.store.collisions)
}

func TestCreateOrderNumberCollisionGivesUp(t *testing.T) {
	f := newOrderFixture()
	f.store.collisions = maxOrderNumberAttempts

	_, err := f.svc.Create(context.Background(), f.request())
	assert.ErrorIs(t, err, store.ErrDuplicateOrderNumber)
	assert.Empty(t, f.publisher.types)
	assert.Empty(t, f.store.orders)
}

func TestUpdateOrderReplacesItems(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)

	req := f.request()
	req.Items = []OrderItemRequest{{Product: uuidPtr(f.pad.ID), Quantity: intPtr(4)}}
	updated, err := f.svc.Update(ctx, created.ID, req)
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, f.pad.ID, updated.Items[0].ProductID)
	assert.True(t, decimal.RequireFromString("20.00").Equal(updated.TotalAmount))
	assert.Equal(t, created.OrderNumber, updated.OrderNumber)
}

func TestUpdateOrderWithoutItemsKeepsThem(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)

	req := f.request()
	req.Items = nil
	req.Notes = "leave at the door"
	updated, err := f.svc.Update(ctx, created.ID, req)
	require.NoError(t, err)

	assert.Len(t, updated.Items, 2)
	assert.True(t, created.TotalAmount.Equal(updated.TotalAmount))
	assert.Equal(t, "leave at the door", updated.Notes)
}

func TestUpdateOrderRejectsEmptyItemList(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)

	req := f.request()
	req.Items = []OrderItemRequest{}
	_, err = f.svc.Update(ctx, created.ID, req)
	assert.Contains(t, validationFields(t, err), "order_items")

	stored, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)

	t.Run("undefined status", func(t *testing.T) {
		_, err := f.svc.UpdateStatus(ctx, created.ID, "archived")
		assert.Contains(t, validationFields(t, err), "status")

		stored, err := f.svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, stored.Status)
	})

	t.Run("missing status", func(t *testing.T) {
		_, err := f.svc.UpdateStatus(ctx, created.ID, "")
		assert.Contains(t, validationFields(t, err), "status")
	})

	t.Run("valid status", func(t *testing.T) {
		order, err := f.svc.UpdateStatus(ctx, created.ID, models.OrderStatusShipped)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusShipped, order.Status)
		assert.Contains(t, f.publisher.types, models.EventTypeOrderStatusChanged)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := f.svc.UpdateStatus(ctx, uuid.New(), models.OrderStatusShipped)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestOrdersByCustomer(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)
	other := f.request()
	other.CustomerEmail = "linus@example.com"
	_, err = f.svc.Create(ctx, other)
	require.NoError(t, err)

	orders, count, err := f.svc.ByCustomer(ctx, "grace@example.com", store.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "grace@example.com", orders[0].CustomerEmail)
}

func TestDeleteOrder(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	_, err = f.svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, f.publisher.types, models.EventTypeOrderDeleted)
}
