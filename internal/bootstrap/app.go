// Package bootstrap wires configuration, infrastructure and use cases
// for the relay server and the pricectl tool.
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/savetide/backend/config"
	"github.com/savetide/backend/internal/domain"
	"github.com/savetide/backend/internal/infrastructure/cache"
	"github.com/savetide/backend/internal/infrastructure/logger"
	"github.com/savetide/backend/internal/infrastructure/metrics"
	"github.com/savetide/backend/internal/infrastructure/openfoodfacts"
	"github.com/savetide/backend/internal/infrastructure/serpapi"
	"github.com/savetide/backend/internal/usecase"
)

// redisKeyPrefix namespaces every key the relay writes to a shared Redis
const redisKeyPrefix = "savetide:"

// Services holds the wired application graph
type Services struct {
	Config     *config.Config
	Logger     logger.Logger
	Merchants  []domain.Merchant
	Pipeline   *usecase.OfferPipeline
	Comparison *usecase.ComparisonService
	Barcode    *usecase.BarcodeService
	Metrics    *metrics.Metrics
	Provider   *serpapi.Client

	closers []func() error
}

// CreateLogger creates the structured logger for the service
func CreateLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", "savetide")), nil
}

// NewServices builds every dependency from cfg. Call Close when done.
func NewServices(cfg *config.Config, log logger.Logger) (*Services, error) {
	if log == nil {
		log = logger.NewNop()
	}

	merchants, err := cfg.LoadMerchants()
	if err != nil {
		return nil, fmt.Errorf("merchants: %w", err)
	}

	pipeline, err := NewPipeline(cfg, merchants)
	if err != nil {
		return nil, err
	}

	s := &Services{
		Config:    cfg,
		Logger:    log,
		Merchants: merchants,
		Pipeline:  pipeline,
		Metrics:   metrics.New(),
	}

	store, err := s.setupCache()
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	s.Provider = serpapi.NewClient(serpapi.Config{
		APIKey:            cfg.Provider.APIKey,
		BaseURL:           cfg.Provider.BaseURL,
		Engine:            cfg.Provider.Engine,
		Country:           cfg.Provider.Country,
		Language:          cfg.Provider.Language,
		Location:          cfg.Provider.Location,
		NumResults:        cfg.Provider.NumResults,
		Timeout:           cfg.Provider.Timeout,
		MaxRetries:        cfg.Provider.MaxRetries,
		RequestsPerSecond: cfg.Provider.RequestsPerSecond,
	}, log)
	if !s.Provider.Configured() {
		log.Warn("shopping provider API key not configured; comparisons will fail")
	}

	s.Comparison = usecase.NewComparisonService(store, s.Provider, pipeline, s.Metrics, log,
		usecase.ComparisonServiceConfig{CacheTTL: cfg.Cache.TTL})

	barcodeClient := openfoodfacts.NewClient(cfg.Barcode.BaseURL, cfg.Barcode.Timeout, log)
	s.Barcode = usecase.NewBarcodeService(store, barcodeClient, s.Metrics, log, cfg.Cache.TTL)

	return s, nil
}

// NewPipeline builds the offer pipeline from the pricing and provider settings
func NewPipeline(cfg *config.Config, merchants []domain.Merchant) (*usecase.OfferPipeline, error) {
	currency, err := usecase.ParseCurrencyMode(cfg.Pricing.Currency)
	if err != nil {
		return nil, fmt.Errorf("pricing: %w", err)
	}
	return usecase.NewOfferPipeline(usecase.NewMerchantResolver(merchants), usecase.PipelineConfig{
		MaxResults:        cfg.Pricing.MaxResults,
		MaxPrice:          cfg.Pricing.MaxPrice,
		Currency:          currency,
		AggregatorDomains: cfg.Provider.AggregatorDomains,
		AffiliateIDs:      cfg.Affiliate.IDs,
	}), nil
}

func (s *Services) setupCache() (domain.CacheRepository, error) {
	switch s.Config.Cache.Type {
	case "redis":
		client, err := cache.NewRedisClient(s.Config.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		store := cache.NewRedisCache(client, redisKeyPrefix)
		s.closers = append(s.closers, store.Close)
		s.Logger.Info("using redis cache", logger.Duration("ttl", s.Config.Cache.TTL))
		return store, nil
	default:
		store := cache.NewMemoryCache()
		s.closers = append(s.closers, store.Close)
		s.Logger.Info("using in-memory cache", logger.Duration("ttl", s.Config.Cache.TTL))
		return store, nil
	}
}

// Close releases the cache backend
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}
