package middleware

import (
	"context"

	"github.com/paylane/gateway/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// ClaimsKey is the context key for verified token claims
	ClaimsKey contextKey = "claims"

	// MerchantIDKey is the context key for the identity resolved from a
	// signed machine-to-machine request
	MerchantIDKey contextKey = "merchant_id"
)

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetClaimsFromContext retrieves verified token claims from context
func GetClaimsFromContext(ctx context.Context) *models.Claims {
	if val := ctx.Value(ClaimsKey); val != nil {
		if claims, ok := val.(*models.Claims); ok {
			return claims
		}
	}
	return nil
}

// WithClaims adds verified token claims to the context
func WithClaims(ctx context.Context, claims *models.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetMerchantIDFromContext retrieves the signed-request merchant identity
// from context
func GetMerchantIDFromContext(ctx context.Context) string {
	if val := ctx.Value(MerchantIDKey); val != nil {
		if merchantID, ok := val.(string); ok {
			return merchantID
		}
	}
	return ""
}

// WithMerchantID adds the signed-request merchant identity to the context
func WithMerchantID(ctx context.Context, merchantID string) context.Context {
	return context.WithValue(ctx, MerchantIDKey, merchantID)
}

// PrincipalID returns the subject of whichever identity the pipeline
// attached: token claims first, then a signed-merchant identity.
func PrincipalID(ctx context.Context) string {
	if claims := GetClaimsFromContext(ctx); claims != nil {
		return claims.Subject
	}
	return GetMerchantIDFromContext(ctx)
}
