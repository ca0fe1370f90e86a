package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/bundle-service/internal/middleware"
	"github.com/guttosm/bundle-service/internal/repository"
	"github.com/guttosm/bundle-service/internal/service"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	products, bundleRepo := seedCatalog(t)
	carts := service.NewCartService(
		repository.NewMemoryCartStore(),
		repository.NewMemoryOrderRepository(),
		service.NewBundleService(bundleRepo),
		service.NewCatalogService(products),
	)
	return NewHandler(carts)
}

func TestNewRouter(t *testing.T) {
	handler := newTestHandler(t)
	healthHandler := NewHealthHandler()

	tests := []struct {
		name string
		cfg  RouterConfig
		test func(*testing.T, *gin.Engine)
	}{
		{
			name: "answers CORS preflight for the storefront origin",
			cfg:  DefaultRouterConfig(),
			test: func(t *testing.T, router *gin.Engine) {
				req := httptest.NewRequest(http.MethodOptions, "/api/cart/bundle", nil)
				req.Header.Set("Origin", "http://localhost:3000")
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
				req.Header.Set("Access-Control-Request-Headers", "X-CSRF-Token,Idempotency-Key")
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				assert.Equal(t, http.StatusNoContent, w.Code)
				assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
			},
		},
		{
			name: "uses the injected idempotency store",
			cfg: RouterConfig{
				EnableIdempotency: true,
				IdempotencyStore:  idempotencyStoreWith("replayed"),
			},
			test: func(t *testing.T, router *gin.Engine) {
				req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{}`))
				req.Header.Set(middleware.IdempotencyKeyHeader, "any")
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				assert.Equal(t, http.StatusCreated, w.Code)
				assert.Equal(t, "replayed", w.Body.String())
			},
		},
		{
			name: "creates router without rate limiting",
			cfg:  RouterConfig{},
			test: func(t *testing.T, router *gin.Engine) {
				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
				assert.Equal(t, http.StatusOK, w.Code)
				assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
			},
		},
		{
			name: "creates router with rate limiting",
			cfg: RouterConfig{
				RateLimit:  2,
				RateWindow: time.Minute,
			},
			test: func(t *testing.T, router *gin.Engine) {
				var last int
				for i := 0; i < 3; i++ {
					w := httptest.NewRecorder()
					router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
					last = w.Code
				}
				assert.Equal(t, http.StatusTooManyRequests, last)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(handler, healthHandler, tt.cfg)
			if tt.test != nil {
				tt.test(t, router)
			}
		})
	}
}

// fixedIdempotencyStore replays one response for every key.
type fixedIdempotencyStore struct{ resp *repository.StoredResponse }

func (s fixedIdempotencyStore) Get(context.Context, string) (*repository.StoredResponse, error) {
	return s.resp, nil
}

func (fixedIdempotencyStore) Put(context.Context, string, *repository.StoredResponse) error {
	return nil
}

func idempotencyStoreWith(body string) repository.IdempotencyStore {
	return fixedIdempotencyStore{resp: &repository.StoredResponse{
		StatusCode:  http.StatusCreated,
		ContentType: "text/plain",
		Body:        []byte(body),
	}}
}

func TestRouter_Endpoints(t *testing.T) {
	server := setupRouter(t)

	tests := []struct {
		name           string
		method         string
		path           string
		headers        map[string]string
		expectedStatus int
	}{
		{
			name:           "healthz endpoint",
			method:         http.MethodGet,
			path:           "/healthz",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "readyz endpoint",
			method:         http.MethodGet,
			path:           "/readyz",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "metrics endpoint",
			method:         http.MethodGet,
			path:           "/metrics",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "swagger endpoint",
			method:         http.MethodGet,
			path:           "/swagger/index.html",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "cart endpoint",
			method:         http.MethodGet,
			path:           "/api/cart",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "cart mutation without form token",
			method:         http.MethodPost,
			path:           "/api/cart/items",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "admin without api key",
			method:         http.MethodGet,
			path:           "/api/admin/bundles",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "admin with api key",
			method:         http.MethodGet,
			path:           "/api/admin/bundles",
			headers:        map[string]string{middleware.APIKeyHeader: testAdminKey},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "admin with wrong api key",
			method:         http.MethodGet,
			path:           "/api/admin/bundles",
			headers:        map[string]string{middleware.APIKeyHeader: "wrong"},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()

			server.router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRouter_SessionCookie(t *testing.T) {
	router := NewRouter(newTestHandler(t), NewHealthHandler(), DefaultRouterConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, session.SameSite)

	view := decodeData[service.CartView](t, w)
	assert.Equal(t, session.Value, view.SessionID)
}

func TestRouter_AdminRoutesDisabledWithoutKeys(t *testing.T) {
	products, bundleRepo := seedCatalog(t)
	cfg := DefaultRouterConfig()
	cfg.BundleService = service.NewBundleService(bundleRepo)
	cfg.CatalogService = service.NewCatalogService(products)

	router := NewRouter(newTestHandler(t), NewHealthHandler(), cfg)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/bundles", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_IdempotentAddBundle(t *testing.T) {
	products, bundleRepo := seedCatalog(t)
	carts := service.NewCartService(
		repository.NewMemoryCartStore(),
		repository.NewMemoryOrderRepository(),
		service.NewBundleService(bundleRepo),
		service.NewCatalogService(products),
	)
	cfg := DefaultRouterConfig()
	cfg.EnableIdempotency = true
	server := &testServer{router: NewRouter(NewHandler(carts), NewHealthHandler(), cfg)}

	s := &shopper{t: t, server: server}
	s.do(http.MethodGet, "/api/cart", "", "")
	require.NotNil(t, s.cookie)

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/cart/bundle", strings.NewReader(trainingSetJSON))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.IdempotencyKeyHeader, "double-click")
		req.AddCookie(s.cookie)
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, req)
		return w
	}

	first := post()
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := post()
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(middleware.IdempotencyReplayedHeader))
	assert.Equal(t, first.Body.String(), second.Body.String())

	cart := s.do(http.MethodGet, "/api/cart", "", "")
	assert.Len(t, decodeData[service.CartView](t, cart).Lines, 2, "a replayed submission adds nothing")
}
