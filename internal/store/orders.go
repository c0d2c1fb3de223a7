package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// OrderFilter narrows an order listing. Zero values mean "no filter".
type OrderFilter struct {
	ListQuery
	Status        string
	PaymentStatus string
	CustomerEmail string
}

var orderSortFields = sortFields{
	"created_at":   "created_at",
	"total_amount": "total_amount",
	"status":       "status",
}

var orderSearchColumns = []string{"customer_name", "customer_email", "order_number"}

const orderItemColumns = `
	oi.id, oi.order_id, oi.product_id, p.name AS product_name, p.price AS product_price,
	oi.quantity, oi.unit_price, oi.subtotal`

const orderItemFrom = " FROM order_items oi JOIN products p ON p.id = oi.product_id"

// ListOrders returns one page of orders, items included, and the total match count.
func (s *Store) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int, error) {
	args := map[string]interface{}{}
	conditions := searchConditions(f.Search, orderSearchColumns, args)

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		conditions = append(conditions, "payment_status = :payment_status")
		args["payment_status"] = f.PaymentStatus
	}
	if f.CustomerEmail != "" {
		conditions = append(conditions, "customer_email = :customer_email")
		args["customer_email"] = f.CustomerEmail
	}

	where := whereClause(conditions)

	count, err := s.countNamed(ctx, "SELECT COUNT(*) FROM orders"+where, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM orders" + where +
		" ORDER BY " + orderBy(f.Ordering, orderSortFields, []string{"-created_at"}, "id") +
		limitClause(f.ListQuery)

	orders := []models.Order{}
	if err := s.selectNamed(ctx, &orders, query, args); err != nil {
		return nil, 0, err
	}

	if err := s.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

// GetOrderByID retrieves an order and its items by ID
func (s *Store) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id); err != nil {
		return nil, translateError(err)
	}

	items, err := s.GetOrderItemsByOrderID(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT"+orderItemColumns+orderItemFrom+" WHERE oi.order_id = $1 ORDER BY p.name, oi.id", orderID)
	return items, err
}

// attachItems loads the items of all orders with a single query.
func (s *Store) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []models.OrderItem{}
	}

	query, args, err := sqlx.In(
		"SELECT"+orderItemColumns+orderItemFrom+" WHERE oi.order_id IN (?) ORDER BY p.name, oi.id", ids)
	if err != nil {
		return err
	}
	query = s.db.Rebind(query)

	var items []models.OrderItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return err
	}

	for _, item := range items {
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return nil
}

// lastOrderNumber returns the order number of the most recently created
// order, or "" when there is none.
func lastOrderNumber(ctx context.Context, q sqlx.QueryerContext) (string, error) {
	var number string
	err := sqlx.GetContext(ctx, q, &number,
		"SELECT order_number FROM orders ORDER BY created_at DESC, order_number DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return number, err
}

// CreateOrder inserts the order and its items in one transaction. When the
// order has no number yet, the next one is derived from the latest order.
// A concurrent creation that took the same number yields ErrDuplicateOrderNumber.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if order.OrderNumber == "" {
			last, err := lastOrderNumber(ctx, tx)
			if err != nil {
				return fmt.Errorf("failed to read last order number: %w", err)
			}
			number, err := models.NextOrderNumber(last)
			if err != nil {
				return err
			}
			order.OrderNumber = number
		}

		if order.ID == uuid.Nil {
			order.ID = uuid.New()
		}
		order.CreatedAt = now()
		order.UpdatedAt = order.CreatedAt

		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO orders (
				id, order_number, customer_name, customer_email, customer_phone,
				total_amount, status, payment_status, shipping_address, notes,
				created_at, updated_at
			)
			VALUES (
				:id, :order_number, :customer_name, :customer_email, :customer_phone,
				:total_amount, :status, :payment_status, :shipping_address, :notes,
				:created_at, :updated_at
			)`, order)
		if err != nil {
			return translateError(err)
		}

		return insertItems(ctx, tx, order.ID, order.Items)
	})
}

// UpdateOrder overwrites the mutable order fields. The order number is never
// touched. With replaceItems the existing items are deleted and order.Items
// inserted in their place.
func (s *Store) UpdateOrder(ctx context.Context, order *models.Order, replaceItems bool) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		order.UpdatedAt = now()
		res, err := tx.NamedExecContext(ctx, `
			UPDATE orders
			SET customer_name = :customer_name,
				customer_email = :customer_email,
				customer_phone = :customer_phone,
				total_amount = :total_amount,
				status = :status,
				payment_status = :payment_status,
				shipping_address = :shipping_address,
				notes = :notes,
				updated_at = :updated_at
			WHERE id = :id`, order)
		if err != nil {
			return translateError(err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}

		if !replaceItems {
			return nil
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = $1", order.ID); err != nil {
			return fmt.Errorf("failed to clear order items: %w", err)
		}
		return insertItems(ctx, tx, order.ID, order.Items)
	})
}

func insertItems(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID, items []models.OrderItem) error {
	for i := range items {
		item := &items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = orderID

		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, subtotal)
			VALUES (:id, :order_id, :product_id, :quantity, :unit_price, :subtotal)`, item)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", translateError(err))
		}
	}
	return nil
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3",
		status, now(), orderID)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(res)
}

// DeleteOrder removes an order; its items go with it (ON DELETE CASCADE).
func (s *Store) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(res)
}
