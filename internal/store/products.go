package store

import (
	"context"

	"storefront-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	ListQuery
	CategoryID    uuid.UUID
	Status        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	AvailableOnly bool
}

var productSortFields = sortFields{
	"price":          "p.price",
	"stock_quantity": "p.stock_quantity",
	"created_at":     "p.created_at",
	"name":           "p.name",
}

var productSearchColumns = []string{"p.name", "p.description", "p.tags"}

const productColumns = `
	p.id, p.category_id, c.name AS category_name, p.name, p.description,
	p.price, p.stock_quantity, p.status, p.tags, p.created_at, p.updated_at`

const productFrom = " FROM products p JOIN categories c ON c.id = p.category_id"

// ListProducts returns one page of products matching f and the total match count.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, int, error) {
	args := map[string]interface{}{}
	conditions := searchConditions(f.Search, productSearchColumns, args)

	if f.CategoryID != uuid.Nil {
		conditions = append(conditions, "p.category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.Status != "" {
		conditions = append(conditions, "p.status = :status")
		args["status"] = f.Status
	}
	if f.MinPrice != nil {
		conditions = append(conditions, "p.price >= :min_price")
		args["min_price"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, "p.price <= :max_price")
		args["max_price"] = *f.MaxPrice
	}
	if f.AvailableOnly {
		conditions = append(conditions, "p.status = :available_status AND p.stock_quantity > 0")
		args["available_status"] = models.ProductStatusActive
	}

	where := whereClause(conditions)

	count, err := s.countNamed(ctx, "SELECT COUNT(*)"+productFrom+where, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT" + productColumns + productFrom + where +
		" ORDER BY " + orderBy(f.Ordering, productSortFields, []string{"-created_at"}, "p.id") +
		limitClause(f.ListQuery)

	products := []models.Product{}
	if err := s.selectNamed(ctx, &products, query, args); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT"+productColumns+productFrom+" WHERE p.id = $1", id)
	if err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT"+productColumns+productFrom+" WHERE p.id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// CreateProduct inserts p, assigning its id and timestamps.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO products (
			id, category_id, name, description, price, stock_quantity,
			status, tags, created_at, updated_at
		)
		VALUES (
			:id, :category_id, :name, :description, :price, :stock_quantity,
			:status, :tags, :created_at, :updated_at
		)`, p)
	return translateError(err)
}

// UpdateProduct overwrites the mutable fields of p.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = now()
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE products
		SET category_id = :category_id,
			name = :name,
			description = :description,
			price = :price,
			stock_quantity = :stock_quantity,
			status = :status,
			tags = :tags,
			updated_at = :updated_at
		WHERE id = :id`, p)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(res)
}

// UpdateProductStock replaces the stock quantity of a product.
func (s *Store) UpdateProductStock(ctx context.Context, id uuid.UUID, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET stock_quantity = $1, updated_at = $2 WHERE id = $3",
		quantity, now(), id)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(res)
}

// DeleteProduct removes a product. Order items referencing it make the
// foreign key reject the delete with ErrConflict.
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(res)
}

// CountOrderItemsByProduct returns how many order lines reference the product.
func (s *Store) CountOrderItemsByProduct(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM order_items WHERE product_id = $1", id)
	return count, err
}
