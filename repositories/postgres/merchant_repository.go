package postgres

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/paylane/gateway/repositories"
	"github.com/paylane/gateway/services"
	"github.com/paylane/gateway/services/remote"
)

// MerchantRepository implements repositories.MerchantStore
type MerchantRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewMerchantRepository creates a new merchant repository
func NewMerchantRepository(db *DB, logger *zap.Logger) repositories.MerchantStore {
	return &MerchantRepository{
		db:     db,
		logger: logger,
	}
}

// IsBlocked resolves the merchant's block flag from the authoritative store
func (r *MerchantRepository) IsBlocked(ctx context.Context, merchantID string) (bool, error) {
	query := `SELECT is_blocked FROM merchants WHERE id=$1`

	blocked, err := remote.Do(ctx, r.logger, remote.DefaultPolicy, remote.IsConnectionError,
		func(ctx context.Context) (bool, error) {
			var blocked bool
			err := r.db.QueryRowContext(ctx, query, merchantID).Scan(&blocked)
			return blocked, err
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, services.ErrMerchantNotFound
		}
		r.logger.Error("check merchant is blocked failed",
			zap.String("merchant_id", merchantID),
			zap.Error(err))
		return false, services.AsDomain(err)
	}
	return blocked, nil
}

// PublicKey returns the merchant's PEM-encoded public key. A merchant row
// without a key is ErrNotFound, distinct from a missing merchant.
func (r *MerchantRepository) PublicKey(ctx context.Context, merchantID string) (string, error) {
	query := `SELECT public_key FROM merchants WHERE id=$1`

	key, err := remote.Do(ctx, r.logger, remote.DefaultPolicy, remote.IsConnectionError,
		func(ctx context.Context) (sql.NullString, error) {
			var key sql.NullString
			err := r.db.QueryRowContext(ctx, query, merchantID).Scan(&key)
			return key, err
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", services.ErrMerchantNotFound
		}
		r.logger.Error("get merchant public key failed",
			zap.String("merchant_id", merchantID),
			zap.Error(err))
		return "", services.AsDomain(err)
	}
	if !key.Valid || key.String == "" {
		return "", services.ErrNotFound
	}
	return key.String, nil
}

// SetPublicKey rotates the merchant's public key
func (r *MerchantRepository) SetPublicKey(ctx context.Context, merchantID, publicKey string) error {
	query := `UPDATE merchants SET public_key=$1 WHERE id=$2 RETURNING id`

	_, err := remote.Do(ctx, r.logger, remote.DefaultPolicy, remote.IsConnectionError,
		func(ctx context.Context) (string, error) {
			var id string
			err := r.db.QueryRowContext(ctx, query, publicKey, merchantID).Scan(&id)
			return id, err
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return services.ErrMerchantNotFound
		}
		r.logger.Error("set merchant public key failed",
			zap.String("merchant_id", merchantID),
			zap.Error(err))
		return services.AsDomain(err)
	}
	return nil
}
