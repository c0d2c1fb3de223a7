package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Column limits mirrored from the schema.
const (
	MinCategoryNameLength = 2
	MaxCategoryNameLength = 100
	MaxProductNameLength  = 200
	MaxTagsLength         = 255
	MaxCustomerNameLength = 100
	MaxCustomerPhoneLen   = 20
	MaxEmailLength        = 254

	// MaxQuantity is the largest stock or item quantity an INTEGER column holds.
	MaxQuantity = math.MaxInt32

	priceMaxDigits  = 10
	amountMaxDigits = 12
	decimalPlaces   = 2
)

var fieldValidator = validator.New()

// Violations maps a field name to the messages describing why it was rejected.
// A nil or empty Violations means the entity is valid.
type Violations map[string][]string

// Add records a message for field.
func (v Violations) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Merge copies other into v, prefixing each field with prefix when non-empty.
func (v Violations) Merge(prefix string, other Violations) {
	for field, msgs := range other {
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}
		v[key] = append(v[key], msgs...)
	}
}

// Valid reports whether no violation was recorded.
func (v Violations) Valid() bool {
	return len(v) == 0
}

// Err returns a *ValidationError for a non-empty set, or nil.
func (v Violations) Err() error {
	if v.Valid() {
		return nil
	}
	return &ValidationError{Fields: v}
}

// ValidationError rejects a write; Fields names every offending field.
type ValidationError struct {
	Fields Violations
}

// NewValidationError builds a single-field ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: Violations{field: {message}}}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidateCategory checks the category fields.
func ValidateCategory(c *Category) Violations {
	v := Violations{}
	name := strings.TrimSpace(c.Name)
	switch {
	case name == "":
		v.Add("name", "Category name is required")
	case utf8.RuneCountInString(name) < MinCategoryNameLength:
		v.Add("name", fmt.Sprintf("Name must be at least %d characters long", MinCategoryNameLength))
	case utf8.RuneCountInString(c.Name) > MaxCategoryNameLength:
		v.Add("name", fmt.Sprintf("Category name cannot exceed %d characters", MaxCategoryNameLength))
	}
	return v
}

// ValidateProduct checks the product fields.
func ValidateProduct(p *Product) Violations {
	v := Violations{}
	if p.CategoryID == uuid.Nil {
		v.Add("category", "This field is required.")
	}

	switch {
	case strings.TrimSpace(p.Name) == "":
		v.Add("name", "Product name is required")
	case utf8.RuneCountInString(p.Name) > MaxProductNameLength:
		v.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", MaxProductNameLength))
	}

	if p.Price.IsNegative() {
		v.Add("price", "Price cannot be negative")
	} else if msg := checkDecimal(p.Price, priceMaxDigits); msg != "" {
		v.Add("price", msg)
	}

	v.Merge("", ValidateStockQuantity(p.StockQuantity))
	if !IsValidProductStatus(p.Status) {
		v.Add("status", choiceMessage(p.Status))
	}
	if utf8.RuneCountInString(p.Tags) > MaxTagsLength {
		v.Add("tags", fmt.Sprintf("Ensure this field has no more than %d characters.", MaxTagsLength))
	}
	return v
}

// ValidateStockQuantity checks a stock level on its own, as set by a stock update.
func ValidateStockQuantity(n int) Violations {
	v := Violations{}
	switch {
	case n < 0:
		v.Add("stock_quantity", "Stock quantity cannot be negative")
	case n > MaxQuantity:
		v.Add("stock_quantity", fmt.Sprintf("Ensure this value is less than or equal to %d.", MaxQuantity))
	}
	return v
}

// ValidateOrder checks the order header fields. Items are validated separately
// with ValidateOrderItem.
func ValidateOrder(o *Order) Violations {
	v := Violations{}

	switch {
	case strings.TrimSpace(o.CustomerName) == "":
		v.Add("customer_name", "Customer name is required")
	case utf8.RuneCountInString(o.CustomerName) > MaxCustomerNameLength:
		v.Add("customer_name", fmt.Sprintf("Ensure this field has no more than %d characters.", MaxCustomerNameLength))
	}

	switch {
	case strings.TrimSpace(o.CustomerEmail) == "":
		v.Add("customer_email", "Customer email is required")
	case len(o.CustomerEmail) > MaxEmailLength || fieldValidator.Var(o.CustomerEmail, "email") != nil:
		v.Add("customer_email", "Enter a valid email address.")
	}

	if utf8.RuneCountInString(o.CustomerPhone) > MaxCustomerPhoneLen {
		v.Add("customer_phone", fmt.Sprintf("Ensure this field has no more than %d characters.", MaxCustomerPhoneLen))
	}

	if o.TotalAmount.IsNegative() {
		v.Add("total_amount", "Total amount cannot be negative")
	} else if msg := checkDecimal(o.TotalAmount, amountMaxDigits); msg != "" {
		v.Add("total_amount", msg)
	}

	if !IsValidOrderStatus(o.Status) {
		v.Add("status", choiceMessage(o.Status))
	}
	if !IsValidPaymentStatus(o.PaymentStatus) {
		v.Add("payment_status", choiceMessage(o.PaymentStatus))
	}
	return v
}

// ValidateOrderItem checks quantity, unit price and subtotal consistency.
// The subtotal must equal quantity * unit_price exactly.
func ValidateOrderItem(item *OrderItem) Violations {
	v := Violations{}
	if item.ProductID == uuid.Nil {
		v.Add("product", "This field is required.")
	}
	switch {
	case item.Quantity < 1:
		v.Add("quantity", "Quantity must be at least 1")
	case item.Quantity > MaxQuantity:
		v.Add("quantity", fmt.Sprintf("Ensure this value is less than or equal to %d.", MaxQuantity))
	}
	if item.UnitPrice.IsNegative() {
		v.Add("unit_price", "Unit price cannot be negative")
	} else if msg := checkDecimal(item.UnitPrice, priceMaxDigits); msg != "" {
		v.Add("unit_price", msg)
	}
	if !item.Subtotal.Equal(ItemSubtotal(item.Quantity, item.UnitPrice)) {
		v.Add("subtotal", "Subtotal must equal quantity * unit_price")
	} else if msg := checkDecimal(item.Subtotal, amountMaxDigits); msg != "" {
		v.Add("subtotal", msg)
	}
	return v
}

// checkDecimal enforces the NUMERIC(maxDigits, 2) column shape.
func checkDecimal(d decimal.Decimal, maxDigits int) string {
	if !d.Equal(d.Round(decimalPlaces)) {
		return fmt.Sprintf("Ensure that there are no more than %d decimal places.", decimalPlaces)
	}
	limit := decimal.New(1, int32(maxDigits-decimalPlaces))
	if d.Abs().GreaterThanOrEqual(limit) {
		return fmt.Sprintf("Ensure that there are no more than %d digits in total.", maxDigits)
	}
	return ""
}

func choiceMessage(value string) string {
	return fmt.Sprintf("%q is not a valid choice.", value)
}
