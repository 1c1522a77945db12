package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque encoded payloads so memory and Redis backends behave alike.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ShoppingClient defines the interface for the shopping-search provider
type ShoppingClient interface {
	Search(ctx context.Context, query string) ([]RawOffer, error)
}

// BarcodeClient defines the interface for the product barcode database
type BarcodeClient interface {
	LookupProduct(ctx context.Context, code string) (*BarcodeProduct, error)
}

// MetricsRecorder receives service-level measurements
type MetricsRecorder interface {
	RecordComparison(source string, report PipelineReport, duration time.Duration)
	RecordProviderError(reason string)
	RecordCacheLookup(hit bool)
	RecordBarcodeLookup(outcome string)
}
