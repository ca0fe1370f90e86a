//go:build !integration

package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetTranslator_Shared(t *testing.T) {
	assert.Same(t, GetTranslator(), GetTranslator())
}

func TestTranslator_Translate(t *testing.T) {
	translator := NewTranslator()

	tests := []struct {
		name   string
		key    string
		locale string
		want   string
	}{
		{name: "english", key: ErrKeyMissingColor, locale: "en", want: "Please choose a color for every item of the bundle"},
		{name: "portuguese", key: ErrKeyOutOfStock, locale: "pt", want: "Um dos itens selecionados está esgotado"},
		{name: "dutch", key: ErrKeyOrderNotFound, locale: "nl", want: "Bestelling niet gevonden"},
		{name: "empty locale uses english", key: ErrKeyCartEmpty, locale: "", want: "Your cart is empty"},
		{name: "unknown locale uses english", key: ErrKeyCartEmpty, locale: "de", want: "Your cart is empty"},
		{name: "unknown key echoes key", key: "error.gift_wrap", locale: "pt", want: "error.gift_wrap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translator.Translate(tt.key, tt.locale))
		})
	}
}

func TestNegotiateLocale(t *testing.T) {
	translator := NewTranslator()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "empty header", header: "", want: DefaultLocale},
		{name: "region stripped", header: "pt-BR", want: "pt"},
		{name: "upper case", header: "NL", want: "nl"},
		{name: "first supported entry wins", header: "fr-FR, nl;q=0.8, en;q=0.5", want: "nl"},
		{name: "higher weight wins over order", header: "en;q=0.3, pt;q=0.9", want: "pt"},
		{name: "zero weight excluded", header: "pt;q=0, nl;q=0.1", want: "nl"},
		{name: "wildcard ignored", header: "*, pt;q=0.5", want: "pt"},
		{name: "malformed weight treated as one", header: "nl;q=abc", want: "nl"},
		{name: "nothing supported", header: "de, fr;q=0.9", want: DefaultLocale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NegotiateLocale(tt.header, translator))
		})
	}
}

func TestGetLocale_ReadsHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	assert.Equal(t, DefaultLocale, GetLocale(c))

	c.Request.Header.Set(AcceptLanguageHeader, "pt-BR,pt;q=0.9")
	assert.Equal(t, "pt", GetLocale(c))
}

func TestTranslator_EveryLocaleCoversEnglish(t *testing.T) {
	messages := getDefaultMessages()

	for locale := range messages {
		if locale == DefaultLocale {
			continue
		}
		t.Run(locale, func(t *testing.T) {
			for key := range messages[DefaultLocale] {
				assert.Contains(t, messages[locale], key, "missing %s translation", locale)
			}
		})
	}
}

func TestKeys_HaveEnglishCopy(t *testing.T) {
	translator := NewTranslator()

	for _, key := range []string{
		ErrKeyBundleQuantityLocked, ErrKeyBundleNotConfigured, ErrKeyMissingSize,
		ErrKeyNotPurchasable, ErrKeyCSRFInvalid, ErrKeyRateLimitExceeded,
	} {
		assert.NotEqual(t, key, translator.Translate(key, DefaultLocale), key)
	}
}
