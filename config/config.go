package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Barcode   BarcodeConfig   `mapstructure:"barcode"`
	Log       LogConfig       `mapstructure:"log"`
	Affiliate AffiliateConfig `mapstructure:"affiliate"`
	Merchants MerchantsConfig `mapstructure:"merchants"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds the shopping-search provider (SerpAPI) configuration
type ProviderConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Engine            string        `mapstructure:"engine"`
	Country           string        `mapstructure:"country"`
	Language          string        `mapstructure:"language"`
	Location          string        `mapstructure:"location"`
	NumResults        int           `mapstructure:"num_results"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	AggregatorDomains []string      `mapstructure:"aggregator_domains"`
}

// PricingConfig holds price validation and ranking settings
type PricingConfig struct {
	Currency   string  `mapstructure:"currency"` // "USD" or "EUR"
	MaxPrice   float64 `mapstructure:"max_price"`
	MaxResults int     `mapstructure:"max_results"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// BarcodeConfig holds the product barcode database configuration
type BarcodeConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// AffiliateConfig maps merchant keys to affiliate ids
type AffiliateConfig struct {
	IDs map[string]string `mapstructure:"ids"`
}

// MerchantsConfig selects the trusted merchant catalog
type MerchantsConfig struct {
	File    string `mapstructure:"file"`    // YAML catalog path; overrides Catalog
	Catalog string `mapstructure:"catalog"` // embedded catalog name
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	return load("")
}

// LoadFile loads configuration using an explicit config file path
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configFile string) (*Config, error) {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/savetide/")
	}

	// Environment variable settings: SAVETIDE_PROVIDER_API_KEY -> provider.api_key
	v.SetEnvPrefix("SAVETIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// bindLegacyEnv keeps the bare variable names used by existing deployments working
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"provider.api_key":     {"SAVETIDE_PROVIDER_API_KEY", "SERPAPI_KEY", "SERP_API_KEY"},
		"server.port":          {"SAVETIDE_SERVER_PORT", "PORT"},
		"server.environment":   {"SAVETIDE_SERVER_ENVIRONMENT", "NODE_ENV"},
		"affiliate.ids.amazon": {"SAVETIDE_AFFILIATE_IDS_AMAZON", "AMAZON_TAG"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Provider defaults
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", "https://serpapi.com")
	v.SetDefault("provider.engine", "google_shopping")
	v.SetDefault("provider.country", "us")
	v.SetDefault("provider.language", "en")
	v.SetDefault("provider.location", "")
	v.SetDefault("provider.num_results", 20)
	v.SetDefault("provider.timeout", "30s")
	v.SetDefault("provider.max_retries", 3)
	v.SetDefault("provider.requests_per_second", 0)
	v.SetDefault("provider.aggregator_domains", []string{"google.com", "googleadservices.com", "serpapi.com"})

	// Pricing defaults
	v.SetDefault("pricing.currency", "USD")
	v.SetDefault("pricing.max_price", 100000)
	v.SetDefault("pricing.max_results", 10)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")

	// Barcode defaults
	v.SetDefault("barcode.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("barcode.timeout", "10s")

	v.SetDefault("log.level", "info")

	// Merchant catalog defaults
	v.SetDefault("merchants.file", "")
	v.SetDefault("merchants.catalog", "us")
}

// validate validates the configuration.
// A missing provider API key is allowed: the service starts and reports it per request.
func validate(config *Config) error {
	if strings.TrimSpace(config.Server.Port) == "" {
		return errors.New("server port is required")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return errors.New("redis URL is required when cache type is 'redis'")
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %s", config.Cache.TTL)
	}

	switch strings.ToUpper(config.Pricing.Currency) {
	case "USD", "EUR":
	default:
		return fmt.Errorf("pricing currency must be 'USD' or 'EUR', got: %s", config.Pricing.Currency)
	}

	if config.Pricing.MaxPrice <= 0 {
		return fmt.Errorf("pricing max_price must be positive, got: %v", config.Pricing.MaxPrice)
	}

	if config.Pricing.MaxResults <= 0 {
		return fmt.Errorf("pricing max_results must be positive, got: %d", config.Pricing.MaxResults)
	}

	if config.Provider.NumResults <= 0 || config.Provider.MaxRetries <= 0 || config.Provider.Timeout <= 0 {
		return errors.New("provider num_results, max_retries and timeout must be positive")
	}

	if config.Merchants.File == "" {
		if _, ok := embeddedCatalogs[config.Merchants.Catalog]; !ok {
			return fmt.Errorf("unknown merchant catalog %q (available: %s)", config.Merchants.Catalog, strings.Join(CatalogNames(), ", "))
		}
	}

	return nil
}
