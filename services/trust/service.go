// Package trust resolves block status and merchant public keys through the
// cache-aside layer: key-value cache first, relational store on miss or cache
// failure, with best-effort backfill. The relational store is authoritative;
// the cache only ever saves a round trip.
package trust

import (
	"context"

	"go.uber.org/zap"

	"github.com/paylane/gateway/repositories"
	"github.com/paylane/gateway/workerpool"
)

// TaskRunner admits best-effort background jobs. Satisfied by workerpool.Pool.
type TaskRunner interface {
	Submit(ctx context.Context, job workerpool.Job) error
}

// Service implements the trust-state lookups the pipeline gates depend on
type Service struct {
	cache     repositories.TrustCache
	traders   repositories.TraderStore
	merchants repositories.MerchantStore
	tasks     TaskRunner
	logger    *zap.Logger
}

// NewService creates a trust resolution service
func NewService(
	cache repositories.TrustCache,
	traders repositories.TraderStore,
	merchants repositories.MerchantStore,
	tasks TaskRunner,
	logger *zap.Logger,
) *Service {
	return &Service{
		cache:     cache,
		traders:   traders,
		merchants: merchants,
		tasks:     tasks,
		logger:    logger,
	}
}

// TraderBlocked resolves the trader's block flag
func (s *Service) TraderBlocked(ctx context.Context, traderID string) (bool, error) {
	return s.blocked(ctx, repositories.BlockEntityTrader, traderID, s.traders.IsBlocked)
}

// MerchantBlocked resolves the merchant's block flag
func (s *Service) MerchantBlocked(ctx context.Context, merchantID string) (bool, error) {
	return s.blocked(ctx, repositories.BlockEntityMerchant, merchantID, s.merchants.IsBlocked)
}

func (s *Service) blocked(
	ctx context.Context,
	entity repositories.BlockEntity,
	id string,
	fromStore func(context.Context, string) (bool, error),
) (bool, error) {
	conn, err := s.cache.Acquire(ctx)
	if err != nil {
		// cache tier down: answer from the store, no further cache
		// interaction
		s.logger.Error("trust cache unavailable, falling back to store",
			zap.String("entity", string(entity)),
			zap.Error(err))
		return fromStore(ctx, id)
	}

	blocked, present, err := conn.GetBlocked(ctx, entity, id)
	if err == nil && present {
		return blocked, nil
	}
	if err != nil {
		s.logger.Warn("trust cache read failed",
			zap.String("entity", string(entity)),
			zap.String("id", id),
			zap.Error(err))
	} else {
		s.logger.Debug("trust cache miss",
			zap.String("entity", string(entity)),
			zap.String("id", id))
	}

	blocked, err = fromStore(ctx, id)
	if err != nil {
		return false, err
	}

	// backfill without blocking the request; its failure is the cache's
	// problem, never the caller's
	if err := s.tasks.Submit(ctx, func(jobCtx context.Context) {
		if err := conn.SetBlocked(jobCtx, entity, id, blocked); err != nil {
			s.logger.Warn("trust cache backfill failed",
				zap.String("entity", string(entity)),
				zap.String("id", id),
				zap.Error(err))
		}
	}); err != nil {
		s.logger.Warn("trust cache backfill not scheduled",
			zap.String("entity", string(entity)),
			zap.String("id", id),
			zap.Error(err))
	}
	return blocked, nil
}

// MerchantPublicKey resolves the merchant's PEM public key. Unlike the block
// lookups, the write-back on a miss is synchronous; a cache read error skips
// the write-back entirely.
func (s *Service) MerchantPublicKey(ctx context.Context, merchantID string) (string, error) {
	conn, err := s.cache.Acquire(ctx)
	if err != nil {
		s.logger.Error("trust cache unavailable, falling back to store",
			zap.String("merchant_id", merchantID),
			zap.Error(err))
		return s.merchants.PublicKey(ctx, merchantID)
	}

	key, present, err := conn.GetPublicKey(ctx, merchantID)
	if err != nil {
		s.logger.Warn("public key cache read failed",
			zap.String("merchant_id", merchantID),
			zap.Error(err))
		return s.merchants.PublicKey(ctx, merchantID)
	}
	if present {
		return key, nil
	}

	s.logger.Warn("public key not in cache", zap.String("merchant_id", merchantID))
	key, err = s.merchants.PublicKey(ctx, merchantID)
	if err != nil {
		return "", err
	}
	if err := conn.SetPublicKey(ctx, merchantID, key); err != nil {
		s.logger.Warn("public key cache write failed",
			zap.String("merchant_id", merchantID),
			zap.Error(err))
	}
	return key, nil
}

// RotateMerchantPublicKey stores a new key in the relational store and
// refreshes the cache copy best-effort.
func (s *Service) RotateMerchantPublicKey(ctx context.Context, merchantID, publicKey string) error {
	if err := s.merchants.SetPublicKey(ctx, merchantID, publicKey); err != nil {
		return err
	}

	conn, err := s.cache.Acquire(ctx)
	if err != nil {
		s.logger.Warn("trust cache unavailable, stale public key may be cached",
			zap.String("merchant_id", merchantID),
			zap.Error(err))
		return nil
	}
	if err := conn.SetPublicKey(ctx, merchantID, publicKey); err != nil {
		s.logger.Warn("public key cache refresh failed",
			zap.String("merchant_id", merchantID),
			zap.Error(err))
	}
	return nil
}
