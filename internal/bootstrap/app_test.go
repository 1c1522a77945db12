package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/savetide/backend/config"
	"github.com/savetide/backend/internal/domain"
	"github.com/savetide/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Environment: "test", AllowedOrigins: []string{"*"}},
		Provider:  config.ProviderConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second, MaxRetries: 1},
		Pricing:   config.PricingConfig{Currency: "USD", MaxPrice: 100000, MaxResults: 10},
		Cache:     config.CacheConfig{Type: "memory", TTL: time.Minute},
		Barcode:   config.BarcodeConfig{Timeout: time.Second},
		Merchants: config.MerchantsConfig{Catalog: "us"},
	}
}

func TestNewServices_Memory(t *testing.T) {
	services, err := NewServices(baseConfig(), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = services.Close() })

	assert.Len(t, services.Merchants, 10)
	assert.NotNil(t, services.Comparison)
	assert.NotNil(t, services.Barcode)
	assert.False(t, services.Provider.Configured())

	_, err = services.Comparison.Compare(context.Background(), &domain.CompareRequest{Query: "tv"})
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
}

func TestNewServices_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := baseConfig()
	cfg.Cache.Type = "redis"
	cfg.Cache.RedisURL = "redis://" + mr.Addr()

	services, err := NewServices(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, services.Close())
}

func TestNewServices_Errors(t *testing.T) {
	t.Run("unreachable redis", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Cache.Type = "redis"
		cfg.Cache.RedisURL = "redis://127.0.0.1:1"

		_, err := NewServices(cfg, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache")
	})

	t.Run("unknown catalog", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Merchants.Catalog = "mars"

		_, err := NewServices(cfg, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "merchants")
	})

	t.Run("bad currency", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Pricing.Currency = "GBP"

		_, err := NewServices(cfg, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pricing")
	})
}

func TestNewHTTPServer(t *testing.T) {
	services, err := NewServices(baseConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = services.Close() })

	srv := services.NewHTTPServer()
	assert.Equal(t, ":0", srv.Addr)

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"merchants":10`))
}

func TestRunWithGracefulShutdown_ContextCancel(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunWithGracefulShutdown(ctx, srv, logger.NewNop()) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after context cancellation")
	}
}
