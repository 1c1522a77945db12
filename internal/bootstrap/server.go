package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpDelivery "github.com/savetide/backend/internal/delivery/http"
	"github.com/savetide/backend/internal/infrastructure/logger"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 30 * time.Second
)

// NewHTTPServer creates the HTTP server with all handlers wired
func (s *Services) NewHTTPServer() *http.Server {
	handler := httpDelivery.NewHandler(s.Comparison, s.Barcode, s.Merchants, s.Logger)
	router := httpDelivery.SetupRouter(s.Config, handler, httpDelivery.RouterDeps{
		Logger:  s.Logger,
		Metrics: s.Metrics,
	})

	return &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// RunWithGracefulShutdown serves until SIGINT, SIGTERM or ctx cancellation,
// then drains in-flight requests
func RunWithGracefulShutdown(ctx context.Context, srv *http.Server, log logger.Logger) error {
	errCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Info("Shutdown signal received", logger.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("Context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info("HTTP server stopped gracefully")
	return nil
}

// Start loads configuration and runs the relay server
func Start(ctx context.Context) error {
	cfg, err := configLoad()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting SaveTide backend",
		logger.String("environment", cfg.Server.Environment),
		logger.String("port", cfg.Server.Port),
		logger.String("cache", cfg.Cache.Type),
		logger.String("currency", cfg.Pricing.Currency))

	services, err := NewServices(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := services.Close(); closeErr != nil {
			log.Error("Failed to close services", logger.Error(closeErr))
		}
	}()

	log.Info("Merchant catalog loaded", logger.Int("merchants", len(services.Merchants)))

	return RunWithGracefulShutdown(ctx, services.NewHTTPServer(), log)
}
