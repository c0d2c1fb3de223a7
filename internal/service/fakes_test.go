package service

import (
	"context"
	"sort"
	"sync"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/google/uuid"
)

// memStore is a map-backed stand-in for *store.Store.
type memStore struct {
	mu         sync.Mutex
	categories map[uuid.UUID]models.Category
	products   map[uuid.UUID]models.Product
	orders     map[uuid.UUID]models.Order
	lastNumber string

	createOrderErr error
	// collisions makes the next CreateOrder calls fail with a duplicate number.
	collisions int
}

func newMemStore() *memStore {
	return &memStore{
		categories: map[uuid.UUID]models.Category{},
		products:   map[uuid.UUID]models.Product{},
		orders:     map[uuid.UUID]models.Order{},
	}
}

func (m *memStore) ListCategories(_ context.Context, _ store.ListQuery) ([]models.Category, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (m *memStore) GetCategoryByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) CategoryNameExists(_ context.Context, name string, excludeID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateCategory(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	m.categories[c.ID] = *c
	return nil
}

func (m *memStore) UpdateCategory(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; !ok {
		return store.ErrNotFound
	}
	m.categories[c.ID] = *c
	return nil
}

func (m *memStore) DeleteCategory(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.categories, id)
	return nil
}

func (m *memStore) CountProductsByCategory(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.products {
		if p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListProducts(_ context.Context, f store.ProductFilter) ([]models.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Product{}
	for _, p := range m.products {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memStore) GetProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) GetProductsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) CreateProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	m.products[p.ID] = *p
	return nil
}

func (m *memStore) UpdateProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = *p
	return nil
}

func (m *memStore) UpdateProductStock(_ context.Context, id uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.StockQuantity = quantity
	m.products[id] = p
	return nil
}

func (m *memStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func (m *memStore) CountOrderItemsByProduct(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.orders {
		for _, item := range o.Items {
			if item.ProductID == id {
				n++
			}
		}
	}
	return n, nil
}

func (m *memStore) ListOrders(_ context.Context, f store.OrderFilter) ([]models.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		if f.CustomerEmail != "" && o.CustomerEmail != f.CustomerEmail {
			continue
		}
		out = append(out, o)
	}
	return out, len(out), nil
}

func (m *memStore) GetOrderByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return &o, nil
}

func (m *memStore) CreateOrder(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createOrderErr != nil {
		return m.createOrderErr
	}
	if m.collisions > 0 {
		m.collisions--
		o.OrderNumber = "ORD-000000"
		return store.ErrDuplicateOrderNumber
	}
	number, err := models.NextOrderNumber(m.lastNumber)
	if err != nil {
		return err
	}
	o.OrderNumber = number
	m.lastNumber = number
	o.ID = uuid.New()
	for i := range o.Items {
		o.Items[i].ID = uuid.New()
		o.Items[i].OrderID = o.ID
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *memStore) UpdateOrder(_ context.Context, o *models.Order, replaceItems bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.orders[o.ID]
	if !ok {
		return store.ErrNotFound
	}
	if !replaceItems {
		o.Items = existing.Items
	}
	o.OrderNumber = existing.OrderNumber
	m.orders[o.ID] = *o
	return nil
}

func (m *memStore) UpdateOrderStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *memStore) DeleteOrder(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	return nil
}

func (m *memStore) addCategory(name string) models.Category {
	c := models.Category{ID: uuid.New(), Name: name}
	m.categories[c.ID] = c
	return c
}

func (m *memStore) addProduct(p models.Product) models.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = models.ProductStatusActive
	}
	m.products[p.ID] = p
	return p
}

// memCache records cache traffic.
type memCache struct {
	products map[uuid.UUID]models.Product
	flushes  int
}

func newMemCache() *memCache {
	return &memCache{products: map[uuid.UUID]models.Product{}}
}

func (c *memCache) GetProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *memCache) SetProduct(_ context.Context, p *models.Product) error {
	c.products[p.ID] = *p
	return nil
}

func (c *memCache) DeleteProduct(_ context.Context, id uuid.UUID) error {
	delete(c.products, id)
	return nil
}

func (c *memCache) DeleteAllProducts(context.Context) error {
	c.products = map[uuid.UUID]models.Product{}
	c.flushes++
	return nil
}

// recordingPublisher keeps the event types it was handed.
type recordingPublisher struct {
	types []string
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, e *models.OrderCreatedEvent) error {
	p.types = append(p.types, e.EventType)
	return nil
}

func (p *recordingPublisher) PublishOrderUpdated(_ context.Context, e *models.OrderUpdatedEvent) error {
	p.types = append(p.types, e.EventType)
	return nil
}

func (p *recordingPublisher) PublishOrderStatusChanged(_ context.Context, e *models.OrderStatusChangedEvent) error {
	p.types = append(p.types, e.EventType)
	return nil
}

func (p *recordingPublisher) PublishOrderDeleted(_ context.Context, e *models.OrderDeletedEvent) error {
	p.types = append(p.types, e.EventType)
	return nil
}

func (p *recordingPublisher) PublishProductStockUpdated(_ context.Context, e *models.ProductStockUpdatedEvent) error {
	p.types = append(p.types, e.EventType)
	return nil
}
