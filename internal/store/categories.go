package store

import (
	"context"

	"storefront-service/internal/models"

	"github.com/google/uuid"
)

var categorySortFields = sortFields{
	"name":       "name",
	"created_at": "created_at",
}

var categorySearchColumns = []string{"name", "description"}

// ListCategories returns one page of categories and the total match count.
func (s *Store) ListCategories(ctx context.Context, q ListQuery) ([]models.Category, int, error) {
	args := map[string]interface{}{}
	where := whereClause(searchConditions(q.Search, categorySearchColumns, args))

	count, err := s.countNamed(ctx, "SELECT COUNT(*) FROM categories"+where, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM categories" + where +
		" ORDER BY " + orderBy(q.Ordering, categorySortFields, []string{"name"}, "id") +
		limitClause(q)

	categories := []models.Category{}
	if err := s.selectNamed(ctx, &categories, query, args); err != nil {
		return nil, 0, err
	}
	return categories, count, nil
}

// GetCategoryByID retrieves a category by ID
func (s *Store) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := s.db.GetContext(ctx, &category, "SELECT * FROM categories WHERE id = $1", id)
	if err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// CategoryNameExists reports whether another category already uses name.
func (s *Store) CategoryNameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1 AND id <> $2)", name, excludeID)
	return exists, err
}

// CreateCategory inserts c, assigning its id and timestamps.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES (:id, :name, :description, :created_at, :updated_at)`, c)
	return translateError(err)
}

// UpdateCategory overwrites the mutable fields of c.
func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	c.UpdatedAt = now()
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE categories
		SET name = :name, description = :description, updated_at = :updated_at
		WHERE id = :id`, c)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(res)
}

// DeleteCategory removes a category. Products referencing it make the
// foreign key reject the delete with ErrConflict.
func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(res)
}

// CountProductsByCategory returns how many products reference the category.
func (s *Store) CountProductsByCategory(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM products WHERE category_id = $1", id)
	return count, err
}
