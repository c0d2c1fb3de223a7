package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/store"

	"github.com/gin-gonic/gin"
)

func orderFilter(c *gin.Context, q store.ListQuery) (store.OrderFilter, error) {
	f := store.OrderFilter{ListQuery: q}

	if status := c.Query("status"); status != "" {
		if !models.IsValidOrderStatus(status) {
			return f, fmt.Errorf("status: %q is not a valid choice", status)
		}
		f.Status = status
	}
	if ps := c.Query("payment_status"); ps != "" {
		if !models.IsValidPaymentStatus(ps) {
			return f, fmt.Errorf("payment_status: %q is not a valid choice", ps)
		}
		f.PaymentStatus = ps
	}
	return f, nil
}

func (h *Handler) listOrders(c *gin.Context) {
	q, pr, err := h.listQuery(c)
	if err != nil {
		h.respondQueryError(c, err)
		return
	}

	f, err := orderFilter(c, q)
	if err != nil {
		badRequest(c, "Invalid query parameters", err)
		return
	}

	orders, count, err := h.orders.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondPage(c, pr, count, orders)
}

// ordersByCustomer handles GET /orders/by_customer?email=...
func (h *Handler) ordersByCustomer(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		badRequest(c, "Email parameter is required", nil)
		return
	}

	q, pr, err := h.listQuery(c)
	if err != nil {
		h.respondQueryError(c, err)
		return
	}

	orders, count, err := h.orders.ByCustomer(c.Request.Context(), email, q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondPage(c, pr, count, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	order, err := h.orders.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) updateOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req service.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	order, err := h.orders.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status"`
}

// updateOrderStatus handles POST /orders/:id/update_status {"status": s}.
func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body", err)
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
