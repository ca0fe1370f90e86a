package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/bundle-service/internal/domain/dto"
	"github.com/guttosm/bundle-service/internal/i18n"
	"github.com/guttosm/bundle-service/internal/middleware"
)

func newBuilderContext(t *testing.T, body, acceptLanguage string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if acceptLanguage != "" {
		c.Request.Header.Set(i18n.AcceptLanguageHeader, acceptLanguage)
	}
	c.Set(string(middleware.RequestIDKey), "req-42")
	return c, w
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		check   func(*testing.T, *dto.AddBundleRequest)
	}{
		{
			name: "valid submission",
			body: `{"bundle_id":100,"quantity":2,"items":{"top":{"product_id":201,"variation_id":2011}}}`,
			check: func(t *testing.T, req *dto.AddBundleRequest) {
				assert.Equal(t, int64(100), req.BundleID)
				assert.Equal(t, 2, req.Quantity)
				assert.Equal(t, int64(2011), req.Items["top"].VariationID)
			},
		},
		{name: "malformed json", body: `{"bundle_id":`, wantErr: true},
		{name: "binding tag rejects missing bundle id", body: `{"quantity":1}`, wantErr: true},
		{name: "binding tag rejects negative quantity", body: `{"bundle_id":100,"quantity":-1}`, wantErr: true},
		{name: "Validate rejects negative ids", body: `{"bundle_id":100,"items":{"top":{"product_id":-1}}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newBuilderContext(t, tt.body, "")
			req, err := BindJSON[dto.AddBundleRequest](c)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, req)
				return
			}
			require.NoError(t, err)
			tt.check(t, req)
		})
	}
}

func TestBindJSON_WithoutValidator(t *testing.T) {
	c, _ := newBuilderContext(t, `{"product_id":401,"quantity":3}`, "")
	req, err := BindJSON[dto.AddItemRequest](c)
	require.NoError(t, err)
	assert.Equal(t, int64(401), req.ProductID)
	assert.Equal(t, 3, req.Quantity)
}

func TestBindQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
		check   func(*testing.T, *dto.AuditQuery)
	}{
		{
			name:  "filters and window",
			query: "action_type=parent_stripped&level=warn&since=2026-01-02T10:00:00Z&until=2026-01-03T10:00:00Z&limit=20",
			check: func(t *testing.T, q *dto.AuditQuery) {
				assert.Equal(t, "parent_stripped", q.ActionType)
				assert.Equal(t, "warn", q.Level)
				assert.Equal(t, 2, q.Since.Day())
				assert.Equal(t, 20, q.Limit)
			},
		},
		{name: "empty query", query: "", check: func(t *testing.T, q *dto.AuditQuery) { assert.True(t, q.Since.IsZero()) }},
		{name: "unknown level", query: "level=debug", wantErr: true},
		{name: "limit above max", query: "limit=501", wantErr: true},
		{name: "session must be a uuid", query: "session_id=abc", wantErr: true},
		{name: "bad timestamp", query: "since=yesterday", wantErr: true},
		{name: "inverted window", query: "since=2026-01-03T00:00:00Z&until=2026-01-02T00:00:00Z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newBuilderContext(t, "", "")
			c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/audit?"+tt.query, nil)

			q, err := BindQuery[dto.AuditQuery](c)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, q)
				return
			}
			require.NoError(t, err)
			tt.check(t, q)
		})
	}
}

func TestResponseBuilder_Success(t *testing.T) {
	tests := []struct {
		name   string
		send   func(*ResponseBuilder)
		status int
	}{
		{name: "ok", send: func(b *ResponseBuilder) { b.SuccessOK(gin.H{"item_count": 2}) }, status: http.StatusOK},
		{name: "created", send: func(b *ResponseBuilder) { b.SuccessCreated(gin.H{"item_count": 2}) }, status: http.StatusCreated},
		{name: "explicit status", send: func(b *ResponseBuilder) { b.Success(http.StatusAccepted, gin.H{"item_count": 2}) }, status: http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newBuilderContext(t, "", "")
			tt.send(NewResponseBuilder(c))

			assert.Equal(t, tt.status, w.Code)
			var resp struct {
				Data      map[string]int `json:"data"`
				RequestID string         `json:"request_id"`
				Timestamp string         `json:"timestamp"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, 2, resp.Data["item_count"])
			assert.Equal(t, "req-42", resp.RequestID)
			assert.NotEmpty(t, resp.Timestamp)
		})
	}
}

func TestResponseBuilder_Error(t *testing.T) {
	tests := []struct {
		name        string
		lang        string
		status      int
		key         string
		err         error
		details     map[string]string
		wantCode    string
		wantMessage string
	}{
		{
			name:        "translated to english by default",
			status:      http.StatusNotFound,
			key:         i18n.ErrKeyBundleNotFound,
			wantCode:    "not_found",
			wantMessage: "This bundle does not exist",
		},
		{
			name:        "portuguese",
			lang:        "pt-BR,pt;q=0.9",
			status:      http.StatusUnprocessableEntity,
			key:         i18n.ErrKeyMissingSize,
			err:         errors.New("slot top has no variation"),
			details:     map[string]string{"slot": "top"},
			wantCode:    "unprocessable_entity",
			wantMessage: "Escolha um tamanho para cada item do kit",
		},
		{
			name:        "unknown key is echoed",
			status:      http.StatusBadRequest,
			key:         "error.something_new",
			wantCode:    "invalid_request",
			wantMessage: "error.something_new",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newBuilderContext(t, "", tt.lang)
			NewResponseBuilder(c).ErrorWithDetails(tt.status, tt.key, tt.err, tt.details)

			assert.Equal(t, tt.status, w.Code)
			assert.True(t, c.IsAborted())

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.details, resp.Details)
			assert.Equal(t, "req-42", resp.RequestID)

			if tt.err != nil {
				require.Len(t, c.Errors, 1)
				assert.ErrorIs(t, c.Errors[0].Err, tt.err)
			} else {
				assert.Empty(t, c.Errors)
			}
		})
	}
}

func TestResponseBuilder_PooledEnvelopesDoNotLeak(t *testing.T) {
	c, _ := newBuilderContext(t, "", "")
	NewResponseBuilder(c).ErrorWithDetails(http.StatusUnprocessableEntity, i18n.ErrKeyMissingColor, nil, map[string]string{"slot": "bottom"})

	c2, w2 := newBuilderContext(t, "", "")
	c2.Set(string(middleware.RequestIDKey), "")
	NewResponseBuilder(c2).Error(http.StatusNotFound, i18n.ErrKeyLineNotFound, nil)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
	assert.Nil(t, resp.Details)
	assert.Empty(t, resp.RequestID)
}
