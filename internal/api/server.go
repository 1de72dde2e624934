// Package api provides the wordbreak REST and WebSocket API server.
package api

import (
	"fmt"
	"net/http"
	"os"

	"github.com/lexica-dev/wordbreak/core/cache"
	"github.com/lexica-dev/wordbreak/internal/logging"
	"github.com/lexica-dev/wordbreak/internal/store"
)

var (
	serverStore *store.Store
	dictCache   *cache.DictionaryCache
)

// Start opens the dictionary store and runs the API server with the
// given configuration. It blocks until the server exits.
func Start(cfg Config) error {
	if err := ValidateAuthConfig(cfg.Auth); err != nil {
		return fmt.Errorf("invalid auth config: %w", err)
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
		if _, err := os.Stat(cfg.TLS.CertFile); err != nil {
			return fmt.Errorf("TLS cert file not found: %w", err)
		}
		if _, err := os.Stat(cfg.TLS.KeyFile); err != nil {
			return fmt.Errorf("TLS key file not found: %w", err)
		}
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open dictionary store: %w", err)
	}
	defer s.Close()
	serverStore = s
	dictCache = cache.NewDefaultDictionaryCache()

	GlobalHub = NewHub()
	go GlobalHub.Run()

	handler := buildHandler(cfg)

	protocol := "http"
	if cfg.TLS.Enabled {
		protocol = "https"
		logging.Info("TLS enabled", "cert_file", cfg.TLS.CertFile)
	} else {
		logging.Warn("TLS disabled - using plain HTTP",
			"recommendation", "consider using TLS or reverse proxy for production")
	}
	logging.ServerStartup("rest_api", protocol, cfg.Addr,
		"db_path", cfg.DBPath)

	if cfg.Auth.Enabled {
		logging.Info("authentication enabled", "note", "API key required")
	} else {
		logging.Warn("authentication disabled", "note", "all requests allowed")
	}

	if cfg.TLS.Enabled {
		return http.ListenAndServeTLS(cfg.Addr, cfg.TLS.CertFile, cfg.TLS.KeyFile, handler)
	}
	return http.ListenAndServe(cfg.Addr, handler)
}

// buildHandler assembles the route mux and middleware chain.
func buildHandler(cfg Config) http.Handler {
	var handler http.Handler = setupRoutes()

	if cfg.Auth.Enabled {
		handler = AuthMiddleware(cfg.Auth, handler)
	}

	if cfg.RateLimitRequests > 0 {
		rateLimitConfig := RateLimiterConfig{
			RequestsPerMinute: cfg.RateLimitRequests,
			BurstSize:         cfg.RateLimitBurst,
		}
		if rateLimitConfig.BurstSize == 0 {
			rateLimitConfig.BurstSize = 10
		}
		rateLimiter := NewRateLimiter(rateLimitConfig)
		handler = rateLimiter.Middleware(handler)
		logging.Info("rate limiting enabled",
			"requests_per_minute", rateLimitConfig.RequestsPerMinute,
			"burst_size", rateLimitConfig.BurstSize)
	}

	handler = LoggingMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	return handler
}

// setupRoutes configures all HTTP routes.
func setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", handleRoot)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/segment", handleSegment)
	mux.HandleFunc("/dictionaries", handleDictionaries)
	mux.HandleFunc("/dictionaries/", handleDictionaryByName)
	mux.HandleFunc("/ws", handleWebSocket)

	return mux
}
