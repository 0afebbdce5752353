package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/paylane/gateway/services"
	"github.com/paylane/gateway/utils"
)

// Headers carrying the machine caller identity.
const (
	MerchantIDHeader = "X-Merchant-ID"
	TimestampHeader  = "X-Timestamp"
	SignatureHeader  = "X-Signature"
)

// replayWindow bounds how far a signed request's timestamp may drift from
// the current time in either direction.
const replayWindow = 5 * time.Minute

// SignedMerchant admits merchant machine-to-machine traffic authenticated by
// an RSA signature instead of a token. The signature covers a canonical line
// of method, merchant id, timestamp and, for POST, the raw body; the body is
// fully re-buffered for downstream handlers.
func (m *AuthMiddleware) SignedMerchant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		merchantID := r.Header.Get(MerchantIDHeader)
		timestamp := r.Header.Get(TimestampHeader)
		signature := r.Header.Get(SignatureHeader)
		if merchantID == "" || timestamp == "" || signature == "" {
			m.logger.Warn("signed request missing identity headers",
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w)
			return
		}

		ts, err := time.Parse(time.RFC3339, timestamp)
		if err != nil {
			m.logger.Warn("signed request timestamp unparsable",
				zap.String("merchant_id", merchantID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w)
			return
		}
		if drift := time.Since(ts); drift > replayWindow || drift < -replayWindow {
			m.logger.Warn("signed request outside replay window",
				zap.String("merchant_id", merchantID),
				zap.Duration("drift", drift))
			_ = utils.WriteUnauthorized(w)
			return
		}

		line, ok := m.canonicalLine(w, r, merchantID, timestamp)
		if !ok {
			return
		}

		publicKey, err := m.trust.MerchantPublicKey(r.Context(), merchantID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrMerchantNotFound) {
				m.logger.Warn("signed request for merchant without key",
					zap.String("merchant_id", merchantID))
				_ = utils.WriteUnauthorized(w)
				return
			}
			_ = utils.WriteDomainError(w, err)
			return
		}

		valid, err := m.trust.VerifySignature(publicKey, signature, line)
		if err != nil || !valid {
			m.logger.Warn("signature verification failed",
				zap.String("merchant_id", merchantID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w)
			return
		}

		blocked, err := m.trust.MerchantBlocked(r.Context(), merchantID)
		if err != nil {
			_ = utils.WriteDomainError(w, err)
			return
		}
		if blocked {
			m.logger.Warn("blocked merchant denied", zap.String("merchant_id", merchantID))
			_ = utils.WriteForbidden(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithMerchantID(r.Context(), merchantID)))
	})
}

// canonicalLine builds the signed line for the request method, restoring the
// body for downstream handlers after reading it. The bool reports whether
// the request may proceed.
func (m *AuthMiddleware) canonicalLine(w http.ResponseWriter, r *http.Request, merchantID, timestamp string) (string, bool) {
	switch r.Method {
	case http.MethodGet:
		return "GET\n" + merchantID + "\n" + timestamp, true
	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			m.logger.Warn("signed request body read failed",
				zap.String("merchant_id", merchantID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w)
			return "", false
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		return "POST\n" + merchantID + "\n" + timestamp + "\n" + string(body), true
	default:
		m.logger.Warn("signed request method not allowed",
			zap.String("merchant_id", merchantID),
			zap.String("method", r.Method))
		_ = utils.WriteUnauthorized(w)
		return "", false
	}
}
