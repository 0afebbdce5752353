package trust

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/paylane/gateway/services"
)

// VerifySignature checks a base64 RSA PKCS#1 v1.5 signature over the SHA-256
// digest of canonicalLine against a PEM public key. Every verification
// failure, malformed key included, comes back as (false, nil) so that all
// failure paths produce the same outward signal; only an undecodable
// signature is an error, and it maps to Unauthorized.
func (s *Service) VerifySignature(publicKeyPEM, signature, canonicalLine string) (bool, error) {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false, services.ErrUnauthorized.WithCause(err)
	}

	publicKey, err := parsePublicKey(publicKeyPEM)
	if err != nil {
		s.logger.Error("malformed merchant public key", zap.Error(err))
		return false, nil
	}

	digest := sha256.Sum256([]byte(canonicalLine))
	if err := rsa.VerifyPKCS1v15(publicKey, crypto.SHA256, digest[:], sig); err != nil {
		s.logger.Warn("signature verification failed", zap.Error(err))
		return false, nil
	}
	return true, nil
}

// parsePublicKey accepts both PKCS#1 ("RSA PUBLIC KEY") and PKIX
// ("PUBLIC KEY") PEM encodings.
func parsePublicKey(pemData string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	switch block.Type {
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	case "PUBLIC KEY":
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("not an RSA key: %T", key)
		}
		return rsaKey, nil
	default:
		return nil, fmt.Errorf("unexpected PEM block type %q", block.Type)
	}
}
