package domain

import "errors"

var (
	// ErrUntrustedMerchant is returned when neither the source label nor the link host matches the catalog
	ErrUntrustedMerchant = errors.New("untrusted merchant")

	// ErrNoUsablePrice is returned when an offer carries no parseable price within bounds
	ErrNoUsablePrice = errors.New("no usable price")

	// ErrNoUsableLink is returned when no direct or constructible destination URL exists
	ErrNoUsableLink = errors.New("no usable link")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrProviderNotConfigured is returned when the shopping provider has no API key
	ErrProviderNotConfigured = errors.New("shopping provider API key not configured")

	// ErrProviderFailure is returned when the shopping provider request fails
	ErrProviderFailure = errors.New("shopping provider request failed")

	// ErrInvalidBarcode is returned when a code is not an 8 to 14 digit EAN/UPC
	ErrInvalidBarcode = errors.New("invalid barcode")

	// ErrProductNotFound is returned when the barcode database has no usable product
	ErrProductNotFound = errors.New("product not found")

	// ErrBarcodeLookupFailure is returned when the barcode database request fails
	ErrBarcodeLookupFailure = errors.New("barcode lookup failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
