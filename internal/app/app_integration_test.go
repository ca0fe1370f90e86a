//go:build integration

package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/bundle-service/config"
	"github.com/guttosm/bundle-service/internal/testutil"
)

func TestInitializeApp_Integration(t *testing.T) {
	t.Parallel()

	uri := testutil.MongoURI()

	t.Run("MongoDB and Redis enabled", func(t *testing.T) {
		t.Parallel()
		cfg := config.Config{
			Server:   config.ServerConfig{Port: "8080", RateLimit: 100, RateWindow: time.Minute},
			Pricing:  config.PricingConfig{Decimals: 2, Currency: "EUR"},
			Cache:    config.CacheConfig{Size: 1000, TTL: 5 * time.Minute},
			Auth:     config.AuthConfig{CSRFSecret: "integration-secret", CSRFTokenTTL: time.Hour},
			Database: integrationDatabaseConfig(uri, testutil.DatabaseName(t)),
			Redis:    config.RedisConfig{Address: testutil.RedisAddress(t), Enabled: true, CartTTL: time.Hour},
		}

		router, cleanup := InitializeApp(cfg)
		require.NotNil(t, router)
		defer cleanup()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "mongodb")
		assert.Contains(t, w.Body.String(), "redis")

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("unreachable Redis falls back to memory carts", func(t *testing.T) {
		t.Parallel()
		cfg := config.Config{
			Server:   config.ServerConfig{Port: "8080"},
			Database: integrationDatabaseConfig(uri, testutil.DatabaseName(t)),
			Redis:    config.RedisConfig{Address: "127.0.0.1:1", Enabled: true},
		}

		router, cleanup := InitializeApp(cfg)
		require.NotNil(t, router)
		defer cleanup()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "redis")
	})

	t.Run("MongoDB disabled", func(t *testing.T) {
		t.Parallel()
		router, cleanup := InitializeApp(config.Config{Server: config.ServerConfig{Port: "8080"}})
		require.NotNil(t, router)
		cleanup()
	})
}
