package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartJSON = `{"lines":[{"product_id":201,"quantity":1}]}`

func compressedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	respond := func(c *gin.Context) { c.Data(http.StatusOK, "application/json", []byte(cartJSON)) }
	router.GET("/api/cart", respond)
	router.GET("/metrics", respond)
	router.GET("/swagger/*any", respond)
	return router
}

func decode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	if w.Header().Get("Content-Encoding") != "gzip" {
		return w.Body.String()
	}
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(body)
}

func TestCompression(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		acceptEncoding string
		wantGzip       bool
	}{
		{name: "cart gzipped", path: "/api/cart", acceptEncoding: "gzip", wantGzip: true},
		{name: "gzip among encodings", path: "/api/cart", acceptEncoding: "br, gzip;q=0.8", wantGzip: true},
		{name: "client without gzip", path: "/api/cart"},
		{name: "metrics left alone", path: "/metrics", acceptEncoding: "gzip"},
		{name: "swagger left alone", path: "/swagger/index.html", acceptEncoding: "gzip"},
	}

	router := compressedRouter(Compression())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantGzip, w.Header().Get("Content-Encoding") == "gzip")
			assert.JSONEq(t, cartJSON, decode(t, w))
		})
	}
}

func TestCompressionLevel_OutOfRangeFallsBack(t *testing.T) {
	for _, level := range []int{-7, 1, 9, 42} {
		router := compressedRouter(CompressionLevel(level))
		req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()

		assert.NotPanics(t, func() { router.ServeHTTP(w, req) })
		assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"), "level %d", level)
		assert.JSONEq(t, cartJSON, decode(t, w))
	}
}
