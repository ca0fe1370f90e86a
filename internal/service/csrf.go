package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/guttosm/bundle-service/config"
)

// CSRFTokenService issues and verifies form tokens bound to a cart session.
type CSRFTokenService interface {
	// Issue returns a signed token for the session.
	Issue(sessionID string) (string, error)
	// Verify checks the signature, expiry and session binding of a token.
	Verify(token, sessionID string) error
}

// CSRFConfig holds configuration for the form token service.
type CSRFConfig struct {
	Secret string
	TTL    time.Duration
}

// NewCSRFConfigFromAuthConfig creates CSRFConfig from config.AuthConfig.
func NewCSRFConfigFromAuthConfig(authConfig config.AuthConfig) CSRFConfig {
	return CSRFConfig{
		Secret: authConfig.CSRFSecret,
		TTL:    authConfig.CSRFTokenTTL,
	}
}

// csrfClaims binds a token to one session.
type csrfClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// CSRFTokenServiceImpl implements CSRFTokenService with HMAC signed JWTs.
type CSRFTokenServiceImpl struct {
	secretKey []byte
	ttl       time.Duration
}

// NewCSRFTokenService creates a new form token service.
func NewCSRFTokenService(cfg CSRFConfig) *CSRFTokenServiceImpl {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &CSRFTokenServiceImpl{
		secretKey: []byte(cfg.Secret),
		ttl:       ttl,
	}
}

func (s *CSRFTokenServiceImpl) Issue(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("session id is required")
	}

	issuedAt := time.Now()
	claims := &csrfClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign form token: %w", err)
	}
	return signed, nil
}

func (s *CSRFTokenServiceImpl) Verify(tokenString, sessionID string) error {
	if tokenString == "" || sessionID == "" {
		return ErrCSRFInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &csrfClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	})
	if err != nil {
		return ErrCSRFInvalid
	}

	claims, ok := token.Claims.(*csrfClaims)
	if !ok || !token.Valid || claims.SessionID != sessionID {
		return ErrCSRFInvalid
	}
	return nil
}
