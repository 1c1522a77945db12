package domain

import (
	"encoding/json"
	"math"
	"strings"
)

// RawOffer is a single shopping result as returned by the search provider.
// Nothing about its shape is guaranteed: any field may be missing, null or
// carry an unexpected JSON type.
type RawOffer map[string]interface{}

// String returns the trimmed string value stored under key.
// Returns "" when the field is absent or not a string.
func (r RawOffer) String(key string) string {
	v, ok := r[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// Number returns the numeric value stored under key.
// Only JSON numbers are accepted; numeric-looking strings are not.
func (r RawOffer) Number(key string) (float64, bool) {
	var f float64
	switch v := r[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CanonicalOffer is a validated, trust-confirmed offer ready for ranking
type CanonicalOffer struct {
	Title          string   `json:"title"`
	Price          float64  `json:"price"`
	PriceFormatted string   `json:"priceFormatted"`
	Source         string   `json:"source"`
	Link           string   `json:"link"`
	Image          *string  `json:"image"`
	Rating         *float64 `json:"rating"`
	Reviews        *int     `json:"reviews"`
	MerchantKey    string   `json:"merchantKey"`
}

// ResultSet is the ranked answer to one comparison query.
// Results are sorted ascending by price and Total always equals len(Results).
type ResultSet struct {
	Query     string           `json:"query"`
	Total     int              `json:"total"`
	Results   []CanonicalOffer `json:"results"`
	Source    string           `json:"source,omitempty"`    // "provider" or "cache"
	Timestamp string           `json:"timestamp,omitempty"` // RFC3339, set by the service
}

// CompareRequest represents a price comparison request
type CompareRequest struct {
	Query string `json:"query"`
}

// RejectReason names why a raw offer was dropped by the pipeline
type RejectReason string

const (
	ReasonUntrustedMerchant RejectReason = "untrusted_merchant"
	ReasonNoUsablePrice     RejectReason = "no_usable_price"
	ReasonNoUsableLink      RejectReason = "no_usable_link"
)

// PipelineReport summarizes a single pipeline run
type PipelineReport struct {
	Received   int                  `json:"received"`
	Accepted   int                  `json:"accepted"`
	Duplicates int                  `json:"duplicates"`
	Returned   int                  `json:"returned"`
	Rejected   map[RejectReason]int `json:"rejected"`
}

// BarcodeProduct is the product description resolved from an EAN/UPC code
type BarcodeProduct struct {
	Code  string  `json:"code"`
	Title string  `json:"title"`
	Brand string  `json:"brand,omitempty"`
	Image *string `json:"image"`
}
