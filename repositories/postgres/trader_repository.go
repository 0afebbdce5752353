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

// TraderRepository implements repositories.TraderStore
type TraderRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTraderRepository creates a new trader repository
func NewTraderRepository(db *DB, logger *zap.Logger) repositories.TraderStore {
	return &TraderRepository{
		db:     db,
		logger: logger,
	}
}

// IsBlocked resolves the trader's block flag from the authoritative store.
// Connectivity failures are retried; zero rows is a domain answer, not an
// infrastructure one.
func (r *TraderRepository) IsBlocked(ctx context.Context, traderID string) (bool, error) {
	query := `SELECT is_blocked FROM traders WHERE id=$1`

	blocked, err := remote.Do(ctx, r.logger, remote.DefaultPolicy, remote.IsConnectionError,
		func(ctx context.Context) (bool, error) {
			var blocked bool
			err := r.db.QueryRowContext(ctx, query, traderID).Scan(&blocked)
			return blocked, err
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, services.ErrTraderNotFound
		}
		r.logger.Error("check trader is blocked failed",
			zap.String("trader_id", traderID),
			zap.Error(err))
		return false, services.AsDomain(err)
	}
	return blocked, nil
}
