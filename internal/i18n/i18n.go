// Package i18n provides internationalization support for the bundle service.
// It handles translation of user-facing messages and error messages.
package i18n

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLocale is the default language locale (English).
	DefaultLocale = "en"
	// AcceptLanguageHeader is the HTTP header name for language preference.
	AcceptLanguageHeader = "Accept-Language"
)

var (
	defaultTranslator *Translator
	translatorOnce    sync.Once
)

// Translator resolves message keys to storefront copy per locale.
type Translator struct {
	messages map[string]map[string]string
}

// NewTranslator creates a translator over the built-in catalogs.
func NewTranslator() *Translator {
	return &Translator{messages: getDefaultMessages()}
}

// GetTranslator returns the shared translator.
func GetTranslator() *Translator {
	translatorOnce.Do(func() {
		defaultTranslator = NewTranslator()
	})
	return defaultTranslator
}

// Supports reports whether locale has a catalog.
func (t *Translator) Supports(locale string) bool {
	_, ok := t.messages[locale]
	return ok
}

// Translate returns key in locale, then in DefaultLocale, then key itself.
func (t *Translator) Translate(key, locale string) string {
	for _, candidate := range []string{locale, DefaultLocale} {
		if msg, ok := t.messages[candidate][key]; ok {
			return msg
		}
	}
	return key
}

// GetLocale negotiates the response locale from Accept-Language.
// Entries are tried by descending q weight; the first supported base language wins.
func GetLocale(c *gin.Context) string {
	return NegotiateLocale(c.GetHeader(AcceptLanguageHeader), GetTranslator())
}

// NegotiateLocale picks the best supported locale for an Accept-Language value.
func NegotiateLocale(header string, t *Translator) string {
	type weighted struct {
		lang string
		q    float64
	}

	var prefs []weighted
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(strings.TrimSpace(part), ";")
		lang := strings.ToLower(strings.TrimSpace(fields[0]))
		if base, _, found := strings.Cut(lang, "-"); found {
			lang = base
		}
		if lang == "" || lang == "*" {
			continue
		}

		q := 1.0
		for _, param := range fields[1:] {
			if v, ok := strings.CutPrefix(strings.TrimSpace(param), "q="); ok {
				if parsed, err := strconv.ParseFloat(v, 64); err == nil {
					q = parsed
				}
			}
		}
		if q > 0 {
			prefs = append(prefs, weighted{lang: lang, q: q})
		}
	}

	sort.SliceStable(prefs, func(i, j int) bool { return prefs[i].q > prefs[j].q })
	for _, p := range prefs {
		if t.Supports(p.lang) {
			return p.lang
		}
	}
	return DefaultLocale
}

// getDefaultMessages returns the default message translations.
func getDefaultMessages() map[string]map[string]string {
	return map[string]map[string]string{
		"en": {
			// Error messages
			"error.invalid_request":         "Invalid request",
			"error.invalid_request_body":    "Invalid request body",
			"error.internal_error":          "An unexpected error occurred",
			"error.unauthorized":            "Unauthorized",
			"error.api_key_required":        "API key is required",
			"error.invalid_api_key":         "Invalid API key",
			"error.forbidden":               "Forbidden",
			"error.not_found":               "Not found",
			"error.rate_limit_exceeded":     "Too many requests, please try again later",
			"error.conflict":                "Conflict",
			"error.timeout":                 "The request timed out",
			"error.service_unavailable":     "Service temporarily unavailable",
			"error.csrf_invalid":            "Your session has expired, please reload the page and try again",
			"error.session_required":        "A cart session is required",
			"error.bundle_not_found":        "This bundle does not exist",
			"error.bundle_not_configured":   "This bundle is not configured and cannot be purchased",
			"error.bundle_quantity_locked":  "Bundle item quantity cannot be changed",
			"error.missing_color":           "Please choose a color for every item of the bundle",
			"error.missing_size":            "Please choose a size for every item of the bundle",
			"error.out_of_stock":            "One of the selected items is out of stock",
			"error.not_purchasable":         "One of the selected items cannot be purchased",
			"error.invalid_quantity":        "Invalid quantity",
			"error.cart_empty":              "Your cart is empty",
			"error.line_not_found":          "This item is no longer in your cart",
			"error.product_not_found":       "Product not found",
			"error.product_not_purchasable": "This product cannot be purchased",
			"error.order_not_found":         "Order not found",
			"error.invalid_bundle":          "Invalid bundle definition",
			"error.invalid_product":         "Invalid product",

			// Success messages
			"success.bundle_added": "Bundle added to your cart",
			"success.order_placed": "Your order has been placed",
		},
		"pt": {
			// Error messages
			"error.invalid_request":         "Requisição inválida",
			"error.invalid_request_body":    "Corpo da requisição inválido",
			"error.internal_error":          "Ocorreu um erro inesperado",
			"error.unauthorized":            "Não autorizado",
			"error.api_key_required":        "Chave de API é obrigatória",
			"error.invalid_api_key":         "Chave de API inválida",
			"error.forbidden":               "Proibido",
			"error.not_found":               "Não encontrado",
			"error.rate_limit_exceeded":     "Muitas requisições, tente novamente mais tarde",
			"error.conflict":                "Conflito",
			"error.timeout":                 "A requisição expirou",
			"error.service_unavailable":     "Serviço temporariamente indisponível",
			"error.csrf_invalid":            "Sua sessão expirou, recarregue a página e tente novamente",
			"error.session_required":        "É necessária uma sessão de carrinho",
			"error.bundle_not_found":        "Este kit não existe",
			"error.bundle_not_configured":   "Este kit não está configurado e não pode ser comprado",
			"error.bundle_quantity_locked":  "A quantidade de itens do kit não pode ser alterada",
			"error.missing_color":           "Escolha uma cor para cada item do kit",
			"error.missing_size":            "Escolha um tamanho para cada item do kit",
			"error.out_of_stock":            "Um dos itens selecionados está esgotado",
			"error.not_purchasable":         "Um dos itens selecionados não pode ser comprado",
			"error.invalid_quantity":        "Quantidade inválida",
			"error.cart_empty":              "Seu carrinho está vazio",
			"error.line_not_found":          "Este item não está mais no seu carrinho",
			"error.product_not_found":       "Produto não encontrado",
			"error.product_not_purchasable": "Este produto não pode ser comprado",
			"error.order_not_found":         "Pedido não encontrado",
			"error.invalid_bundle":          "Definição de kit inválida",
			"error.invalid_product":         "Produto inválido",

			// Success messages
			"success.bundle_added": "Kit adicionado ao seu carrinho",
			"success.order_placed": "Seu pedido foi realizado",
		},
		"nl": {
			// Error messages
			"error.invalid_request":         "Ongeldig verzoek",
			"error.invalid_request_body":    "Ongeldige aanvraag body",
			"error.internal_error":          "Er is een onverwachte fout opgetreden",
			"error.unauthorized":            "Niet geautoriseerd",
			"error.api_key_required":        "API-sleutel is vereist",
			"error.invalid_api_key":         "Ongeldige API-sleutel",
			"error.forbidden":               "Verboden",
			"error.not_found":               "Niet gevonden",
			"error.rate_limit_exceeded":     "Te veel verzoeken, probeer het later opnieuw",
			"error.conflict":                "Conflict",
			"error.timeout":                 "Het verzoek is verlopen",
			"error.service_unavailable":     "Service tijdelijk niet beschikbaar",
			"error.csrf_invalid":            "Je sessie is verlopen, herlaad de pagina en probeer het opnieuw",
			"error.session_required":        "Een winkelwagensessie is vereist",
			"error.bundle_not_found":        "Deze bundel bestaat niet",
			"error.bundle_not_configured":   "Deze bundel is niet geconfigureerd en kan niet worden gekocht",
			"error.bundle_quantity_locked":  "Het aantal van bundelartikelen kan niet worden gewijzigd",
			"error.missing_color":           "Kies een kleur voor elk artikel van de bundel",
			"error.missing_size":            "Kies een maat voor elk artikel van de bundel",
			"error.out_of_stock":            "Een van de gekozen artikelen is niet op voorraad",
			"error.not_purchasable":         "Een van de gekozen artikelen kan niet worden gekocht",
			"error.invalid_quantity":        "Ongeldig aantal",
			"error.cart_empty":              "Je winkelwagen is leeg",
			"error.line_not_found":          "Dit artikel zit niet meer in je winkelwagen",
			"error.product_not_found":       "Product niet gevonden",
			"error.product_not_purchasable": "Dit product kan niet worden gekocht",
			"error.order_not_found":         "Bestelling niet gevonden",
			"error.invalid_bundle":          "Ongeldige bundeldefinitie",
			"error.invalid_product":         "Ongeldig product",

			// Success messages
			"success.bundle_added": "Bundel toegevoegd aan je winkelwagen",
			"success.order_placed": "Je bestelling is geplaatst",
		},
	}
}
