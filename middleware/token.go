package middleware

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/paylane/gateway/models"
)

// TokenHeader is the fixed header bearer tokens arrive on.
const TokenHeader = "X-Token"

// TokenVerifier validates bearer tokens against the process-wide secret.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier creates a verifier for HS256 tokens signed with secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parses the token, checks the signature and expiry, and returns the
// claims. Callers map any failure to a plain Unauthorized; the error carries
// detail for logging only.
func (v *TokenVerifier) Verify(token string) (*models.Claims, error) {
	claims := &models.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
