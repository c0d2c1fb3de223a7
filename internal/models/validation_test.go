package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() *Product {
	return &Product{
		CategoryID:    uuid.New(),
		Name:          "Headphones",
		Price:         decimal.RequireFromString("99.99"),
		StockQuantity: 10,
		Status:        ProductStatusActive,
	}
}

func validOrder() *Order {
	return &Order{
		CustomerName:    "John Doe",
		CustomerEmail:   "john@example.com",
		TotalAmount:     decimal.RequireFromString("100.00"),
		Status:          OrderStatusPending,
		PaymentStatus:   PaymentStatusPending,
		ShippingAddress: "123 Test St",
	}
}

func TestValidateCategory(t *testing.T) {
	tests := []struct {
		name    string
		catName string
		wantErr bool
	}{
		{"valid", "Electronics", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"single character", "A", true},
		{"single character padded", " A ", true},
		{"two characters", "TV", false},
		{"exactly max length", strings.Repeat("a", MaxCategoryNameLength), false},
		{"too long", strings.Repeat("a", MaxCategoryNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateCategory(&Category{Name: tt.catName})
			if tt.wantErr {
				assert.Contains(t, v, "name")
				assert.Error(t, v.Err())
			} else {
				assert.True(t, v.Valid())
				assert.NoError(t, v.Err())
			}
		})
	}
}

func TestValidateProduct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.True(t, ValidateProduct(validProduct()).Valid())
	})

	t.Run("zero price is allowed", func(t *testing.T) {
		p := validProduct()
		p.Price = decimal.Zero
		assert.True(t, ValidateProduct(p).Valid())
	})

	tests := []struct {
		name   string
		mutate func(p *Product)
		field  string
	}{
		{"missing name", func(p *Product) { p.Name = "" }, "name"},
		{"negative price", func(p *Product) { p.Price = decimal.RequireFromString("-0.01") }, "price"},
		{"too many decimal places", func(p *Product) { p.Price = decimal.RequireFromString("1.005") }, "price"},
		{"too many digits", func(p *Product) { p.Price = decimal.RequireFromString("100000000") }, "price"},
		{"negative stock", func(p *Product) { p.StockQuantity = -1 }, "stock_quantity"},
		{"stock beyond integer column", func(p *Product) { p.StockQuantity = MaxQuantity + 1 }, "stock_quantity"},
		{"unknown status", func(p *Product) { p.Status = "archived" }, "status"},
		{"missing category", func(p *Product) { p.CategoryID = uuid.Nil }, "category"},
		{"long tags", func(p *Product) { p.Tags = strings.Repeat("t", MaxTagsLength+1) }, "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(p)
			v := ValidateProduct(p)
			assert.Contains(t, v, tt.field)
		})
	}
}

func TestValidateProductTrailingZerosAreFine(t *testing.T) {
	p := validProduct()
	p.Price = decimal.RequireFromString("10.500")
	assert.True(t, ValidateProduct(p).Valid())
}

func TestValidateOrder(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.True(t, ValidateOrder(validOrder()).Valid())
	})

	tests := []struct {
		name   string
		mutate func(o *Order)
		field  string
	}{
		{"missing customer name", func(o *Order) { o.CustomerName = "" }, "customer_name"},
		{"missing customer email", func(o *Order) { o.CustomerEmail = "" }, "customer_email"},
		{"malformed email", func(o *Order) { o.CustomerEmail = "not-an-email" }, "customer_email"},
		{"negative total", func(o *Order) { o.TotalAmount = decimal.NewFromInt(-1) }, "total_amount"},
		{"unknown status", func(o *Order) { o.Status = "archived" }, "status"},
		{"unknown payment status", func(o *Order) { o.PaymentStatus = "lost" }, "payment_status"},
		{"long phone", func(o *Order) { o.CustomerPhone = strings.Repeat("1", 21) }, "customer_phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOrder()
			tt.mutate(o)
			assert.Contains(t, ValidateOrder(o), tt.field)
		})
	}
}

func TestValidateOrderItem(t *testing.T) {
	item := OrderItem{
		ProductID: uuid.New(),
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("0.10"),
		Subtotal:  decimal.RequireFromString("0.30"),
	}
	assert.True(t, ValidateOrderItem(&item).Valid())

	t.Run("zero quantity", func(t *testing.T) {
		bad := item
		bad.Quantity = 0
		bad.Subtotal = decimal.Zero
		assert.Contains(t, ValidateOrderItem(&bad), "quantity")
	})

	t.Run("negative unit price", func(t *testing.T) {
		bad := item
		bad.UnitPrice = decimal.RequireFromString("-1")
		bad.Subtotal = decimal.RequireFromString("-3")
		assert.Contains(t, ValidateOrderItem(&bad), "unit_price")
	})

	t.Run("subtotal off by one cent", func(t *testing.T) {
		bad := item
		bad.Subtotal = decimal.RequireFromString("0.31")
		assert.Contains(t, ValidateOrderItem(&bad), "subtotal")
	})

	t.Run("quantity beyond integer column", func(t *testing.T) {
		bad := item
		bad.Quantity = MaxQuantity + 1
		bad.Subtotal = ItemSubtotal(bad.Quantity, bad.UnitPrice)
		v := ValidateOrderItem(&bad)
		assert.Contains(t, v, "quantity")
		assert.NotContains(t, v, "subtotal")
	})

	t.Run("subtotal too wide for its column", func(t *testing.T) {
		bad := item
		bad.Quantity = MaxQuantity
		bad.UnitPrice = decimal.RequireFromString("99999999.99")
		bad.Subtotal = ItemSubtotal(bad.Quantity, bad.UnitPrice)
		assert.Contains(t, ValidateOrderItem(&bad), "subtotal")
	})
}

func TestValidateStockQuantity(t *testing.T) {
	assert.True(t, ValidateStockQuantity(0).Valid())
	assert.True(t, ValidateStockQuantity(MaxQuantity).Valid())
	assert.Contains(t, ValidateStockQuantity(-1), "stock_quantity")
	assert.Contains(t, ValidateStockQuantity(MaxQuantity+1), "stock_quantity")
}

func TestValidationErrorMessage(t *testing.T) {
	v := Violations{}
	v.Add("price", "Price cannot be negative")
	v.Add("name", "Product name is required")

	err := v.Err()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "validation failed: name: Product name is required; price: Price cannot be negative", err.Error())
}

func TestViolationsMerge(t *testing.T) {
	v := Violations{}
	v.Merge("order_items[1]", Violations{"quantity": {"Quantity must be at least 1"}})
	assert.Equal(t, []string{"Quantity must be at least 1"}, v["order_items[1].quantity"])
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		status string
		stock  int
		want   bool
	}{
		{ProductStatusActive, 10, true},
		{ProductStatusActive, 0, false},
		{ProductStatusInactive, 10, false},
		{ProductStatusDiscontinued, 5, false},
	}

	for _, tt := range tests {
		p := Product{Status: tt.status, StockQuantity: tt.stock}
		assert.Equal(t, tt.want, p.IsAvailable(), "status=%s stock=%d", tt.status, tt.stock)
	}
}

func TestProductJSONIncludesIsAvailable(t *testing.T) {
	p := validProduct()
	p.CategoryName = "Electronics"

	data, err := p.MarshalJSON()
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, `"is_available":true`)
	assert.Contains(t, body, `"price":"99.99"`)
	assert.Contains(t, body, `"category_name":"Electronics"`)
	assert.Contains(t, body, `"category":"`+p.CategoryID.String()+`"`)
}
