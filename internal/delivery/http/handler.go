package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/laxmi8801/data-extractor/internal/domain"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// RowProcessor extracts and stores one row of label images
type RowProcessor interface {
	Process(ctx context.Context, row domain.ProductRow) (string, error)
}

// ProductFinder looks up stored products
type ProductFinder interface {
	Lookup(ctx context.Context, id, name string) (*domain.StoredProduct, error)
}

// ExtractRequest is the body of POST /api/v1/extract
type ExtractRequest struct {
	ImageLinks []string `json:"image_links"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	processor RowProcessor
	products  ProductFinder
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler. Either dependency may be nil, in
// which case its endpoints answer 501.
func NewHandler(processor RowProcessor, products ProductFinder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.L()
	}
	return &Handler{
		processor: processor,
		products:  products,
		logger:    logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "labelreader",
		"version": Version,
	})
}

// Extract reads the label images of one product and stores the result
func (h *Handler) Extract(c *gin.Context) {
	if h.processor == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "extraction not configured"})
		return
	}

	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	row := domain.ProductRow{Images: filterLinks(req.ImageLinks)}
	if len(row.Images) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_links must not be empty"})
		return
	}

	id, err := h.processor.Process(c.Request.Context(), row)
	if err != nil {
		status := extractStatus(err)
		h.logger.Warn("http.extract.failed",
			zap.Int("images", len(row.Images)),
			zap.Int("status", status),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "data added",
		"id":      id,
	})
}

// Product returns a stored product by id or name query parameter
func (h *Handler) Product(c *gin.Context) {
	if h.products == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "product lookup not configured"})
		return
	}

	id := c.Query("id")
	name := c.Query("name")

	product, err := h.products.Lookup(c.Request.Context(), id, name)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, product)
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "please provide either 'id' or 'name' parameter"})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	default:
		h.logger.Error("http.product.failed", zap.String("id", id), zap.String("name", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// extractStatus maps a row error to an HTTP status code
func extractStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyRow), errors.Is(err, domain.ErrInvalidImageRef):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRefusal):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrTransport), errors.Is(err, domain.ErrParse):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func filterLinks(links []string) []string {
	out := make([]string, 0, len(links))
	for _, link := range links {
		if link = strings.TrimSpace(link); link != "" {
			out = append(out, link)
		}
	}
	return out
}
