package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/savetide/backend/internal/domain"
	"github.com/savetide/backend/internal/infrastructure/logger"
)

// barcodePattern accepts EAN-8 through GTIN-14 codes
var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

// BarcodeService resolves EAN/UPC codes to product titles, with caching
type BarcodeService struct {
	cache    domain.CacheRepository
	client   domain.BarcodeClient
	metrics  domain.MetricsRecorder
	log      logger.Logger
	cacheTTL time.Duration
}

// NewBarcodeService creates a barcode service; cache and metrics may be nil
func NewBarcodeService(
	cache domain.CacheRepository,
	client domain.BarcodeClient,
	metrics domain.MetricsRecorder,
	log logger.Logger,
	cacheTTL time.Duration,
) *BarcodeService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &BarcodeService{
		cache:    cache,
		client:   client,
		metrics:  metrics,
		log:      log,
		cacheTTL: cacheTTL,
	}
}

// ValidBarcode reports whether code is an 8 to 14 digit EAN/UPC
func ValidBarcode(code string) bool {
	return barcodePattern.MatchString(code)
}

// Lookup resolves a barcode to a product description
func (s *BarcodeService) Lookup(ctx context.Context, code string) (*domain.BarcodeProduct, error) {
	code = strings.TrimSpace(code)
	if !ValidBarcode(code) {
		s.metrics.RecordBarcodeLookup("invalid")
		return nil, domain.ErrInvalidBarcode
	}

	cacheKey := "barcode:" + code
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var product domain.BarcodeProduct
			if err := json.Unmarshal(data, &product); err == nil {
				s.metrics.RecordBarcodeLookup("cache")
				return &product, nil
			}
		}
	}

	product, err := s.client.LookupProduct(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			s.metrics.RecordBarcodeLookup("not_found")
		} else {
			s.metrics.RecordBarcodeLookup("error")
			s.log.Warn("barcode lookup failed", logger.String("code", code), logger.Error(err))
		}
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(product); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL); err != nil {
				s.log.Warn("failed to cache barcode", logger.String("code", code), logger.Error(err))
			}
		}
	}

	s.metrics.RecordBarcodeLookup("found")
	return product, nil
}
