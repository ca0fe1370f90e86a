package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/bundle-service/internal/domain/dto"
	"github.com/guttosm/bundle-service/internal/i18n"
)

// translatedError renders key in the caller's locale as an error body for status.
func translatedError(c *gin.Context, status int, key string) dto.ErrorResponse {
	message := i18n.GetTranslator().Translate(key, i18n.GetLocale(c))
	return dto.NewError(dto.ErrCodeFromStatus(status), message).WithRequestID(GetRequestID(c))
}

// abortTranslated stops the chain with a localized error body.
func abortTranslated(c *gin.Context, status int, key string) {
	c.AbortWithStatusJSON(status, translatedError(c, status, key))
}
