package api

import (
	"context"
	"net/http"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// CategoryService is implemented by *service.CategoryService.
type CategoryService interface {
	List(ctx context.Context, q store.ListQuery) ([]models.Category, int, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, req *service.CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, req *service.CategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductService is implemented by *service.ProductService.
type ProductService interface {
	List(ctx context.Context, f store.ProductFilter) ([]models.Product, int, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, req *service.ProductRequest) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, req *service.ProductRequest) (*models.Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, quantity int) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderService is implemented by *service.OrderService.
type OrderService interface {
	List(ctx context.Context, f store.OrderFilter) ([]models.Order, int, error)
	ByCustomer(ctx context.Context, email string, q store.ListQuery) ([]models.Order, int, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Create(ctx context.Context, req *service.OrderRequest) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, req *service.OrderRequest) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures list pagination.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Handler contains HTTP handlers
type Handler struct {
	categories CategoryService
	products   ProductService
	orders     OrderService
	db         Pinger
	logger     *zap.Logger

	defaultPageSize int
	maxPageSize     int
}

// NewHandler creates a new HTTP handler. db may be nil, in which case
// readiness always succeeds.
func NewHandler(categories CategoryService, products ProductService, orders OrderService, db Pinger, opts Options) *Handler {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 10
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = opts.DefaultPageSize
	}
	return &Handler{
		categories:      categories,
		products:        products,
		orders:          orders,
		db:              db,
		logger:          util.GetLogger(),
		defaultPageSize: opts.DefaultPageSize,
		maxPageSize:     opts.MaxPageSize,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/categories", h.listCategories)
		v1.POST("/categories", h.createCategory)
		v1.GET("/categories/:id", h.getCategory)
		v1.PUT("/categories/:id", h.updateCategory)
		v1.DELETE("/categories/:id", h.deleteCategory)

		v1.GET("/products", h.listProducts)
		v1.GET("/products/active", h.listActiveProducts)
		v1.POST("/products", h.createProduct)
		v1.GET("/products/:id", h.getProduct)
		v1.PUT("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)
		v1.POST("/products/:id/update_stock", h.updateStock)

		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/by_customer", h.ordersByCustomer)
		v1.POST("/orders", h.createOrder)
		v1.GET("/orders/:id", h.getOrder)
		v1.PUT("/orders/:id", h.updateOrder)
		v1.DELETE("/orders/:id", h.deleteOrder)
		v1.POST("/orders/:id/update_status", h.updateOrderStatus)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once the database answers a ping.
func (h *Handler) readinessCheck(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// parseID reads the :id path parameter, answering 400 when it is not a UUID.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid id", err)
		return uuid.Nil, false
	}
	return id, true
}

// respondPage writes a paginated list response.
func (h *Handler) respondPage(c *gin.Context, pr pageRequest, count int, results interface{}) {
	page, err := paginate(c, pr, count, results)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
