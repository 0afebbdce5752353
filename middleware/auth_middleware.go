package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/paylane/gateway/models"
	"github.com/paylane/gateway/services"
	"github.com/paylane/gateway/utils"
)

// TrustResolver answers the block-status and key questions the gates ask.
type TrustResolver interface {
	TraderBlocked(ctx context.Context, traderID string) (bool, error)
	MerchantBlocked(ctx context.Context, merchantID string) (bool, error)
	MerchantPublicKey(ctx context.Context, merchantID string) (string, error)
	VerifySignature(publicKeyPEM, signature, canonicalLine string) (bool, error)
}

// AuthMiddleware composes the request gates. Each gate reads the token from
// the fixed header, verifies it, checks the role, and consults the trust
// resolver for block status. Denied requests log detail; the response body
// never carries it.
type AuthMiddleware struct {
	verifier *TokenVerifier
	trust    TrustResolver
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier *TokenVerifier, trust TrustResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		trust:    trust,
		logger:   logger,
	}
}

// verifyToken reads and verifies the bearer token, mapping every failure to
// a logged plain Unauthorized. The bool reports whether the request may
// proceed.
func (m *AuthMiddleware) verifyToken(w http.ResponseWriter, r *http.Request) (*models.Claims, bool) {
	token := r.Header.Get(TokenHeader)
	if token == "" {
		m.logger.Warn("missing token",
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path))
		_ = utils.WriteUnauthorized(w)
		return nil, false
	}

	claims, err := m.verifier.Verify(token)
	if err != nil {
		m.logger.Warn("token verification failed",
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		_ = utils.WriteUnauthorized(w)
		return nil, false
	}
	return claims, true
}

// OnlyTrader admits trader tokens. Impersonating admins bypass the block
// check; a blocked trader is denied with Unauthorized.
func (m *AuthMiddleware) OnlyTrader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.verifyToken(w, r)
		if !ok {
			return
		}
		if claims.Role != models.RoleTrader {
			m.logger.Warn("role mismatch",
				zap.String("required_role", models.RoleTrader),
				zap.String("role", claims.Role))
			_ = utils.WriteForbidden(w)
			return
		}

		if !claims.Impersonated() {
			blocked, err := m.trust.TraderBlocked(r.Context(), claims.Subject)
			if err != nil {
				_ = utils.WriteDomainError(w, err)
				return
			}
			if blocked {
				m.logger.Warn("blocked trader denied", zap.String("trader_id", claims.Subject))
				_ = utils.WriteUnauthorized(w)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// OnlyMerchant admits merchant tokens. The role compare is case-insensitive.
// A "not found" from block resolution downgrades to Forbidden so the
// response does not reveal whether the merchant exists.
func (m *AuthMiddleware) OnlyMerchant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.verifyToken(w, r)
		if !ok {
			return
		}
		if !strings.EqualFold(claims.Role, models.RoleMerchant) {
			m.logger.Warn("role mismatch",
				zap.String("required_role", models.RoleMerchant),
				zap.String("role", claims.Role))
			_ = utils.WriteForbidden(w)
			return
		}

		if !claims.Impersonated() {
			blocked, err := m.trust.MerchantBlocked(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, services.ErrMerchantNotFound) || errors.Is(err, services.ErrNotFound) {
					m.logger.Warn("unknown merchant denied", zap.String("merchant_id", claims.Subject))
					_ = utils.WriteForbidden(w)
					return
				}
				_ = utils.WriteDomainError(w, err)
				return
			}
			if blocked {
				m.logger.Warn("blocked merchant denied", zap.String("merchant_id", claims.Subject))
				_ = utils.WriteUnauthorized(w)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// OnlyAdmin admits tokens whose role equals admin exactly. Admins are not
// subject to blocking, so there is no trust lookup.
func (m *AuthMiddleware) OnlyAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.verifyToken(w, r)
		if !ok {
			return
		}
		if claims.Role != models.RoleAdmin {
			m.logger.Warn("role mismatch",
				zap.String("required_role", models.RoleAdmin),
				zap.String("role", claims.Role))
			_ = utils.WriteForbidden(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// AllUsers admits any valid token. A missing token is Forbidden here, not
// Unauthorized, and so is a blocked trader; shared endpoints deny with the
// coarser signal.
func (m *AuthMiddleware) AllUsers(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(TokenHeader)
		if token == "" {
			m.logger.Warn("missing token",
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
				zap.String("path", r.URL.Path))
			_ = utils.WriteForbidden(w)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Warn("token verification failed",
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w)
			return
		}

		// case-insensitive so a role-cased token cannot dodge the block check
		if strings.EqualFold(claims.Role, models.RoleTrader) && !claims.Impersonated() {
			blocked, err := m.trust.TraderBlocked(r.Context(), claims.Subject)
			if err != nil {
				_ = utils.WriteDomainError(w, err)
				return
			}
			if blocked {
				m.logger.Warn("blocked trader denied", zap.String("trader_id", claims.Subject))
				_ = utils.WriteForbidden(w)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}
