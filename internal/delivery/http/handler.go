package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/savetide/backend/internal/domain"
	"github.com/savetide/backend/internal/infrastructure/logger"
)

const (
	serviceName    = "savetide-backend"
	serviceVersion = "1.0.0"
)

// ComparisonService is the comparison use case as seen by the handlers
type ComparisonService interface {
	Compare(ctx context.Context, request *domain.CompareRequest) (*domain.ResultSet, error)
}

// BarcodeService is the barcode use case as seen by the handlers
type BarcodeService interface {
	Lookup(ctx context.Context, code string) (*domain.BarcodeProduct, error)
}

// errorResponse is the JSON body of every error reply
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	comparison ComparisonService
	barcode    BarcodeService
	merchants  []domain.MerchantIdentity
	log        logger.Logger
}

// NewHandler creates a new HTTP handler.
// A nil barcode service disables the barcode route's lookups (503).
func NewHandler(comparison ComparisonService, barcode BarcodeService, merchants []domain.Merchant, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	identities := make([]domain.MerchantIdentity, 0, len(merchants))
	for _, m := range merchants {
		identities = append(identities, *m.Identity())
	}
	return &Handler{
		comparison: comparison,
		barcode:    barcode,
		merchants:  identities,
		log:        log,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   serviceName,
		"version":   serviceVersion,
		"merchants": len(h.merchants),
	})
}

// Compare handles price comparison requests
func (h *Handler) Compare(c *gin.Context) {
	var req domain.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "invalid_request",
			Message: "Request body must be JSON with a \"query\" string",
		})
		return
	}

	result, err := h.comparison.Compare(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Barcode resolves an EAN/UPC code to a product title
func (h *Handler) Barcode(c *gin.Context) {
	if h.barcode == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{
			Error:   "barcode_disabled",
			Message: "Barcode lookup is not enabled",
		})
		return
	}

	product, err := h.barcode.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// Merchants lists the trusted merchant catalog
func (h *Handler) Merchants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"total":     len(h.merchants),
		"merchants": h.merchants,
	})
}

// writeError maps domain errors to HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	status, body := http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: "Failed to fetch prices",
	}

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status, body = http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "Query is required"}
	case errors.Is(err, domain.ErrProviderNotConfigured):
		status, body = http.StatusInternalServerError, errorResponse{Error: "provider_not_configured", Message: "Shopping provider API key is not configured"}
	case errors.Is(err, domain.ErrInvalidBarcode):
		status, body = http.StatusBadRequest, errorResponse{Error: "invalid_barcode", Message: "Barcode must be 8 to 14 digits"}
	case errors.Is(err, domain.ErrProductNotFound):
		status, body = http.StatusNotFound, errorResponse{Error: "not_found", Message: "No product found for this barcode"}
	case errors.Is(err, domain.ErrBarcodeLookupFailure):
		status, body = http.StatusBadGateway, errorResponse{Error: "upstream_error", Message: "Barcode database request failed"}
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	logger.FromContext(c.Request.Context(), h.log).Debug("request failed",
		logger.Int("status", status),
		logger.Error(err))
	c.JSON(status, body)
}
