package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/internal/domain/model"
	"github.com/guttosm/bundle-service/internal/i18n"
	"github.com/guttosm/bundle-service/internal/service"
)

const (
	// CSRFHeader is the HTTP header carrying the form token.
	CSRFHeader = "X-CSRF-Token"
	// CSRFFormField is the form field carrying the form token.
	CSRFFormField = "_csrf"
)

// CSRFProtect returns a middleware that rejects state-changing requests without a
// form token bound to the caller's cart session. It must run after CartSession.
func CSRFProtect(tokens service.CSRFTokenService, sink service.AuditSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		token := c.GetHeader(CSRFHeader)
		if token == "" {
			token = c.PostForm(CSRFFormField)
		}

		if err := tokens.Verify(token, GetSessionID(c)); err != nil {
			AuditLogError(sink, c, model.ActionCSRFRejected, "Form token rejected", err, nil)
			abortTranslated(c, http.StatusForbidden, i18n.ErrKeyCSRFInvalid)
			return
		}

		c.Next()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
