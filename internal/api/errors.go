package api

import (
	"errors"
	"net/http"

	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errInvalidPage = errors.New("invalid page")

// respondQueryError reports a list query that could not be built. A page
// number too large to address is an invalid page, anything else is bad input.
func (h *Handler) respondQueryError(c *gin.Context, err error) {
	if errors.Is(err, errInvalidPage) {
		h.respondError(c, err)
		return
	}
	badRequest(c, "Invalid query parameters", err)
}

// badRequest reports malformed input: bodies, path ids, query parameters.
func badRequest(c *gin.Context, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

// respondError maps service and store errors onto HTTP responses.
func (h *Handler) respondError(c *gin.Context, err error) {
	var ve *models.ValidationError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": ve.Fields,
		})

	case errors.Is(err, service.ErrCategoryInUse),
		errors.Is(err, service.ErrProductInUse):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, store.ErrDuplicateOrderNumber):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Order number already taken",
			"details": "another order was created concurrently, retry the request",
		})

	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Request conflicts with existing data",
			"details": err.Error(),
		})

	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})

	case errors.Is(err, errInvalidPage):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid page."})

	default:
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
