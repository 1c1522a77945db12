package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/savetide/backend/internal/domain"
	"github.com/savetide/backend/internal/infrastructure/logger"
)

// Result set sources reported to callers
const (
	SourceProvider = "provider"
	SourceCache    = "cache"
)

// DefaultCacheTTL is how long a non-empty comparison stays cached
const DefaultCacheTTL = time.Hour

// ComparisonServiceConfig holds configuration for the comparison service
type ComparisonServiceConfig struct {
	CacheTTL time.Duration
}

// ComparisonService answers price comparison queries.
// Flow: clean query -> check cache -> search provider -> pipeline -> cache -> return
type ComparisonService struct {
	cache    domain.CacheRepository
	client   domain.ShoppingClient
	pipeline *OfferPipeline
	queries  *QueryPreprocessor
	metrics  domain.MetricsRecorder
	log      logger.Logger
	cacheTTL time.Duration
	now      func() time.Time
}

// NewComparisonService creates a comparison service.
// cache and metrics may be nil.
func NewComparisonService(
	cache domain.CacheRepository,
	client domain.ShoppingClient,
	pipeline *OfferPipeline,
	metrics domain.MetricsRecorder,
	log logger.Logger,
	config ComparisonServiceConfig,
) *ComparisonService {
	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &ComparisonService{
		cache:    cache,
		client:   client,
		pipeline: pipeline,
		queries:  NewQueryPreprocessor(log),
		metrics:  metrics,
		log:      log,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Compare returns the ranked trusted offers for a free-text query.
// Provider failures degrade to an empty ResultSet; only a missing provider
// credential or an empty query is reported as an error.
func (s *ComparisonService) Compare(ctx context.Context, request *domain.CompareRequest) (*domain.ResultSet, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}
	query := s.queries.Clean(request.Query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	start := time.Now()
	log := logger.FromContext(ctx, s.log).With(logger.String("query", query))
	cacheKey := s.queries.CacheKey(query)

	if cached, ok := s.getFromCache(ctx, cacheKey); ok {
		cached.Query = query
		cached.Source = SourceCache
		cached.Timestamp = s.now().UTC().Format(time.RFC3339)
		s.metrics.RecordComparison(SourceCache, domain.PipelineReport{Returned: cached.Total}, time.Since(start))
		log.Debug("comparison served from cache", logger.Int("total", cached.Total))
		return cached, nil
	}

	raw, err := s.client.Search(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrProviderNotConfigured) {
			return nil, err
		}
		reason := "upstream"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		s.metrics.RecordProviderError(reason)
		log.Warn("shopping provider failed, returning empty results",
			logger.String("reason", reason),
			logger.Error(err))
		raw = nil
	}

	result, report := s.pipeline.BuildReport(query, raw)
	result.Source = SourceProvider
	result.Timestamp = s.now().UTC().Format(time.RFC3339)

	log.Info("comparison built",
		logger.Int("received", report.Received),
		logger.Int("accepted", report.Accepted),
		logger.Int("duplicates", report.Duplicates),
		logger.Int("returned", report.Returned),
		logger.Int("untrusted", report.Rejected[domain.ReasonUntrustedMerchant]),
		logger.Int("no_price", report.Rejected[domain.ReasonNoUsablePrice]),
		logger.Int("no_link", report.Rejected[domain.ReasonNoUsableLink]))

	if result.Total > 0 {
		if err := s.setInCache(ctx, cacheKey, result); err != nil {
			log.Warn("failed to cache comparison", logger.Error(err))
		}
	}

	s.metrics.RecordComparison(SourceProvider, report, time.Since(start))
	return result, nil
}

// getFromCache retrieves a stored result set; any failure counts as a miss
func (s *ComparisonService) getFromCache(ctx context.Context, key string) (*domain.ResultSet, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.log.Warn("cache lookup failed", logger.String("key", key), logger.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
		return nil, false
	}

	var result domain.ResultSet
	if err := json.Unmarshal(data, &result); err != nil {
		s.log.Warn("discarding undecodable cache entry", logger.String("key", key), logger.Error(err))
		s.metrics.RecordCacheLookup(false)
		return nil, false
	}
	if result.Results == nil {
		result.Results = []domain.CanonicalOffer{}
	}

	s.metrics.RecordCacheLookup(true)
	return &result, true
}

// setInCache stores a result set without its per-response source and timestamp
func (s *ComparisonService) setInCache(ctx context.Context, key string, result *domain.ResultSet) error {
	if s.cache == nil {
		return nil
	}
	stored := *result
	stored.Source = ""
	stored.Timestamp = ""
	data, err := json.Marshal(&stored)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}

type nopMetrics struct{}

func (nopMetrics) RecordComparison(string, domain.PipelineReport, time.Duration) {}
func (nopMetrics) RecordProviderError(string) {}
func (nopMetrics) RecordCacheLookup(bool) {}
func (nopMetrics) RecordBarcodeLookup(string) {}
