// Package repositories defines the data-access contracts consumed by the
// services layer. Implementations live in the postgres and rediscache
// subpackages.
package repositories

import (
	"context"

	"github.com/paylane/gateway/models"
)

// BlockEntity selects which principal table and cache key family a
// block-status lookup targets.
type BlockEntity string

const (
	BlockEntityTrader   BlockEntity = "trader"
	BlockEntityMerchant BlockEntity = "merchant"
)

// TraderStore is the authoritative (relational) view of trader trust state
type TraderStore interface {
	// IsBlocked returns the trader's block flag, or ErrTraderNotFound when
	// no such trader exists.
	IsBlocked(ctx context.Context, traderID string) (bool, error)
}

// MerchantStore is the authoritative (relational) view of merchant trust state
type MerchantStore interface {
	// IsBlocked returns the merchant's block flag, or ErrMerchantNotFound
	// when no such merchant exists.
	IsBlocked(ctx context.Context, merchantID string) (bool, error)

	// PublicKey returns the merchant's PEM public key. A missing merchant is
	// ErrMerchantNotFound; an existing merchant without a key is ErrNotFound.
	PublicKey(ctx context.Context, merchantID string) (string, error)

	// SetPublicKey rotates the merchant's PEM public key
	SetPublicKey(ctx context.Context, merchantID, publicKey string) error
}

// PaymentStore lists payments for the role-scoped read models
type PaymentStore interface {
	ListForMerchant(ctx context.Context, merchantID string, filter *models.MerchantPaymentsFilter) ([]models.MerchantPayment, error)
	ListForTrader(ctx context.Context, traderID string, filter *models.TraderPaymentsFilter) ([]models.TraderPayment, error)
}

// TrustCache hands out connections to the key-value trust-state cache.
// Acquisition failure means the cache tier is unavailable and the caller goes
// straight to the relational store.
type TrustCache interface {
	Acquire(ctx context.Context) (TrustCacheConn, error)
}

// TrustCacheConn is one usable cache handle. Get methods return
// (value, present, error): a read error and a plain miss are distinct
// conditions with different backfill behavior upstream.
type TrustCacheConn interface {
	GetBlocked(ctx context.Context, entity BlockEntity, id string) (blocked bool, present bool, err error)
	SetBlocked(ctx context.Context, entity BlockEntity, id string, blocked bool) error
	GetPublicKey(ctx context.Context, merchantID string) (key string, present bool, err error)
	SetPublicKey(ctx context.Context, merchantID, key string) error
}
