package service

import (
	"context"
	"fmt"
	"strings"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService handles category business logic
type CategoryService struct {
	store  CategoryStore
	cache  ProductCache
	logger *zap.Logger
}

// NewCategoryService creates a new category service. A nil cache disables caching.
func NewCategoryService(store CategoryStore, cache ProductCache) *CategoryService {
	if cache == nil {
		cache = NopCache{}
	}
	return &CategoryService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// CategoryRequest is the body of category create and update.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List returns one page of categories and the total match count.
func (s *CategoryService) List(ctx context.Context, q store.ListQuery) ([]models.Category, int, error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.List")
	defer span.End()

	return s.store.ListCategories(ctx, q)
}

// Get retrieves a category by ID
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.Get")
	defer span.End()

	return s.store.GetCategoryByID(ctx, id)
}

// Create validates and stores a new category.
func (s *CategoryService) Create(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.Create")
	defer span.End()

	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := s.validate(ctx, category); err != nil {
		return nil, err
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	return category, nil
}

// Update replaces the fields of an existing category.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req *CategoryRequest) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.Update")
	defer span.End()

	category, err := s.store.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	renamed := category.Name != strings.TrimSpace(req.Name)
	category.Name = strings.TrimSpace(req.Name)
	category.Description = req.Description
	if err := s.validate(ctx, category); err != nil {
		return nil, err
	}

	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	// cached products carry the category name
	if renamed {
		warnOnError(s.logger, "Failed to flush product cache", s.cache.DeleteAllProducts(ctx))
	}

	s.logger.Info("Category updated", zap.String("category_id", category.ID.String()))
	return category, nil
}

// Delete removes a category that owns no products.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := util.StartSpan(ctx, "CategoryService.Delete")
	defer span.End()

	if _, err := s.store.GetCategoryByID(ctx, id); err != nil {
		return err
	}

	count, err := s.store.CountProductsByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Category deleted", zap.String("category_id", id.String()))
	return nil
}

func (s *CategoryService) validate(ctx context.Context, c *models.Category) error {
	v := models.ValidateCategory(c)
	if v.Valid() {
		exists, err := s.store.CategoryNameExists(ctx, c.Name, c.ID)
		if err != nil {
			return fmt.Errorf("failed to check category name: %w", err)
		}
		if exists {
			v.Add("name", "category with this name already exists.")
		}
	}
	if !v.Valid() {
		return validationFailed("category", v)
	}
	return nil
}
