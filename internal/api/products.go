package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// productFilter reads the product list filters. ok is false when category
// and category_id disagree, which no product can satisfy.
func productFilter(c *gin.Context, q store.ListQuery) (f store.ProductFilter, ok bool, err error) {
	f.ListQuery = q

	for _, param := range []string{"category", "category_id"} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, false, fmt.Errorf("%s: %w", param, err)
		}
		if f.CategoryID != uuid.Nil && f.CategoryID != id {
			return f, false, nil
		}
		f.CategoryID = id
	}

	if status := c.Query("status"); status != "" {
		if !models.IsValidProductStatus(status) {
			return f, false, fmt.Errorf("status: %q is not a valid choice", status)
		}
		f.Status = status
	}

	if f.MinPrice, err = decimalParam(c, "min_price"); err != nil {
		return f, false, err
	}
	if f.MaxPrice, err = decimalParam(c, "max_price"); err != nil {
		return f, false, err
	}

	f.AvailableOnly = strings.EqualFold(c.Query("available_only"), "true")
	return f, true, nil
}

func decimalParam(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", name, raw)
	}
	return &d, nil
}

func (h *Handler) listProducts(c *gin.Context) {
	h.writeProductList(c, "")
}

// listActiveProducts lists products with status active; the other product
// filters still apply.
func (h *Handler) listActiveProducts(c *gin.Context) {
	h.writeProductList(c, models.ProductStatusActive)
}

func (h *Handler) writeProductList(c *gin.Context, status string) {
	q, pr, err := h.listQuery(c)
	if err != nil {
		h.respondQueryError(c, err)
		return
	}

	f, ok, err := productFilter(c, q)
	if err != nil {
		badRequest(c, "Invalid query parameters", err)
		return
	}
	if status != "" {
		if f.Status != "" && f.Status != status {
			ok = false
		}
		f.Status = status
	}
	if !ok {
		h.respondPage(c, pr, 0, []models.Product{})
		return
	}

	products, count, err := h.products.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondPage(c, pr, count, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	product, err := h.products.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// updateStock handles POST /products/:id/update_stock {"quantity": N}.
// N may be a JSON integer or a string holding one.
func (h *Handler) updateStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body", err)
		return
	}

	raw, present := body["quantity"]
	if !present || string(raw) == "null" {
		badRequest(c, "Quantity is required", nil)
		return
	}

	quantity, err := parseQuantity(raw)
	if err != nil {
		badRequest(c, "Quantity must be a valid integer", err)
		return
	}

	product, err := h.products.UpdateStock(c.Request.Context(), id, quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func parseQuantity(raw json.RawMessage) (int, error) {
	n, err := decodeQuantity(raw)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, fmt.Errorf("%d is out of range", n)
	}
	return int(n), nil
}

// decodeQuantity accepts a JSON integer, an integral float or a numeric string.
func decodeQuantity(raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return 0, fmt.Errorf("%v is not an integer", f)
		}
		return int64(f), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("unsupported value %s", raw)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return n, nil
}
