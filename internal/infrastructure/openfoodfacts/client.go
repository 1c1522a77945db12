// Package openfoodfacts resolves product barcodes through the Open Food Facts API.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/savetide/backend/internal/domain"
	"github.com/savetide/backend/internal/infrastructure/logger"
)

const (
	defaultBaseURL = "https://world.openfoodfacts.org"
	defaultTimeout = 10 * time.Second
	maxBodySize    = 2 << 20
)

// Client handles communication with the Open Food Facts product API
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        logger.Logger
}

// NewClient creates a new Open Food Facts client
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log.With(logger.String("component", "openfoodfacts")),
	}
}

// LookupProduct fetches a product by EAN/UPC code
func (c *Client) LookupProduct(ctx context.Context, code string) (*domain.BarcodeProduct, error) {
	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrBarcodeLookupFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "SaveTide/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBarcodeLookupFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrBarcodeLookupFailure, resp.StatusCode)
	}

	var payload productResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrBarcodeLookupFailure, err)
	}

	product, ok := mapProduct(code, &payload)
	if !ok {
		c.log.Debug("barcode has no usable product", logger.String("code", code), logger.Int("status", payload.Status))
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}
