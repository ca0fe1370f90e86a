//go:build !integration

package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/bundle-service/config"
)

func TestInitializeApp(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		cfg        config.Config
		adminPath  string
		wantStatus int
	}{
		{
			name: "in-memory stores with default config",
			cfg: config.Config{
				Server: config.ServerConfig{Port: "8080", RateLimit: 100, RateWindow: time.Minute},
				Cache:  config.CacheConfig{Size: 1000, TTL: 5 * time.Minute},
			},
			adminPath:  "/api/admin/bundles",
			wantStatus: http.StatusNotFound,
		},
		{
			name: "admin keys register authoring routes",
			cfg: config.Config{
				Server: config.ServerConfig{Port: "8080"},
				Auth:   config.AuthConfig{AdminAPIKeys: map[string]bool{"ops-key": true}, CSRFSecret: "s"},
			},
			adminPath:  "/api/admin/bundles",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "cache disabled",
			cfg: config.Config{
				Server: config.ServerConfig{Port: "8080"},
				Cache:  config.CacheConfig{Size: 0},
			},
			adminPath:  "/api/admin/bundles",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, cleanup := InitializeApp(tt.cfg)
			require.NotNil(t, router)
			require.NotNil(t, cleanup)
			defer cleanup()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, http.StatusOK, w.Code)

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
			assert.Equal(t, http.StatusOK, w.Code)

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.adminPath, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
