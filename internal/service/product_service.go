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

// ProductService handles catalog business logic
type ProductService struct {
	store     ProductStore
	cache     ProductCache
	publisher EventPublisher
	logger    *zap.Logger
}

// NewProductService creates a new product service. A nil cache disables
// caching and a nil publisher disables events.
func NewProductService(store ProductStore, cache ProductCache, publisher EventPublisher) *ProductService {
	if cache == nil {
		cache = NopCache{}
	}
	return &ProductService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// ProductRequest is the body of product create and update.
type ProductRequest struct {
	Category      *uuid.UUID       `json:"category"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
	Status        string           `json:"status"`
	Tags          string           `json:"tags"`
}

// List returns one page of products and the total match count.
func (s *ProductService) List(ctx context.Context, f store.ProductFilter) ([]models.Product, int, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.List")
	defer span.End()

	return s.store.ListProducts(ctx, f)
}

// Get retrieves a product by ID, consulting the cache first.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Get")
	defer span.End()

	cached, err := s.cache.GetProduct(ctx, id)
	if err != nil {
		util.CacheRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Product cache read failed", zap.String("product_id", id.String()), zap.Error(err))
	} else if cached != nil {
		util.CacheRequestsTotal.WithLabelValues("hit").Inc()
		return cached, nil
	} else {
		util.CacheRequestsTotal.WithLabelValues("miss").Inc()
	}

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	warnOnError(s.logger, "Product cache write failed", s.cache.SetProduct(ctx, product),
		zap.String("product_id", id.String()))
	return product, nil
}

// Create validates and stores a new product.
func (s *ProductService) Create(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Create")
	defer span.End()

	product := &models.Product{}
	if err := s.apply(ctx, product, req); err != nil {
		return nil, err
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("category_id", product.CategoryID.String()))
	return product, nil
}

// Update replaces the fields of an existing product.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *ProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Update")
	defer span.End()

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, product, req); err != nil {
		return nil, err
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	s.invalidate(ctx, id)

	s.logger.Info("Product updated", zap.String("product_id", id.String()))
	return product, nil
}

// UpdateStock replaces the stock quantity and returns the updated product.
func (s *ProductService) UpdateStock(ctx context.Context, id uuid.UUID, quantity int) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.UpdateStock")
	defer span.End()

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if v := models.ValidateStockQuantity(quantity); !v.Valid() {
		return nil, validationFailed("product", v)
	}

	if err := s.store.UpdateProductStock(ctx, id, quantity); err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	s.invalidate(ctx, id)
	util.StockUpdatesTotal.Inc()

	oldQuantity := product.StockQuantity
	product.StockQuantity = quantity

	s.logger.Info("Product stock updated",
		zap.String("product_id", id.String()),
		zap.Int("old_quantity", oldQuantity),
		zap.Int("new_quantity", quantity))

	if s.publisher != nil {
		event := &models.ProductStockUpdatedEvent{
			BaseEvent:   models.NewBaseEvent(models.EventTypeProductStockUpdated),
			ProductID:   id,
			OldQuantity: oldQuantity,
			NewQuantity: quantity,
			IsAvailable: product.IsAvailable(),
		}
		warnOnError(s.logger, "Failed to publish ProductStockUpdated event",
			s.publisher.PublishProductStockUpdated(ctx, event))
	}

	return product, nil
}

// Delete removes a product that no order item references.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := util.StartSpan(ctx, "ProductService.Delete")
	defer span.End()

	if _, err := s.store.GetProductByID(ctx, id); err != nil {
		return err
	}

	count, err := s.store.CountOrderItemsByProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count order items: %w", err)
	}
	if count > 0 {
		return ErrProductInUse
	}

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// apply copies req onto p, fills defaults and validates the result.
func (s *ProductService) apply(ctx context.Context, p *models.Product, req *ProductRequest) error {
	v := models.Violations{}

	p.Name = req.Name
	p.Description = req.Description
	p.Tags = req.Tags

	p.Status = req.Status
	if p.Status == "" {
		p.Status = models.ProductStatusActive
	}

	p.StockQuantity = 0
	if req.StockQuantity != nil {
		p.StockQuantity = *req.StockQuantity
	}

	if req.Price == nil {
		p.Price = decimal.Zero
		v.Add("price", "This field is required.")
	} else {
		p.Price = *req.Price
	}

	p.CategoryID = uuid.Nil
	if req.Category != nil {
		p.CategoryID = *req.Category
	}

	v.Merge("", models.ValidateProduct(p))

	if p.CategoryID != uuid.Nil {
		category, err := s.store.GetCategoryByID(ctx, p.CategoryID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			v.Add("category", fmt.Sprintf("Invalid pk %q - object does not exist.", p.CategoryID))
		case err != nil:
			return fmt.Errorf("failed to load category: %w", err)
		default:
			p.CategoryName = category.Name
		}
	}

	if !v.Valid() {
		return validationFailed("product", v)
	}
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, id uuid.UUID) {
	warnOnError(s.logger, "Product cache invalidation failed", s.cache.DeleteProduct(ctx, id),
		zap.String("product_id", id.String()))
}
