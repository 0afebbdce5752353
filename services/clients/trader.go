package clients

import (
	"context"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paylane/gateway/services/remote"
)

const traderServicePath = "/trader.v1.TraderService/"

type traderHandle struct {
	changeBalance *connect.Client[changeTraderBalanceRequest, changeTraderBalanceResponse]
	getMargin     *connect.Client[getMarginRequest, getMarginResponse]
}

// TraderClient calls the trader service. Balance operations carry an
// idempotency key generated once per logical call, so every retry of the
// same call replays the same mutation.
type TraderClient struct {
	pool   *remote.Pool[*traderHandle]
	logger *zap.Logger
}

// NewTraderClient creates a trader service client with a handle pool of the
// given size.
func NewTraderClient(baseURL string, poolSize int, logger *zap.Logger) *TraderClient {
	httpClient := newHTTPClient()
	return &TraderClient{
		pool: remote.NewPool(poolSize, func() (*traderHandle, error) {
			return &traderHandle{
				changeBalance: newProcedure[changeTraderBalanceRequest, changeTraderBalanceResponse](httpClient, baseURL, traderServicePath+"ChangeBalance"),
				getMargin:     newProcedure[getMarginRequest, getMarginResponse](httpClient, baseURL, traderServicePath+"GetMargin"),
			}, nil
		}),
		logger: logger,
	}
}

// ChangeBalance adjusts the trader balance by amount and returns the new
// balance.
func (c *TraderClient) ChangeBalance(ctx context.Context, traderID string, amount float64, currency string) (float64, error) {
	handle, err := c.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer c.pool.Release(handle)

	req := &changeTraderBalanceRequest{
		TraderID:       traderID,
		Amount:         amount,
		Currency:       currency,
		IdempotencyKey: uuid.Must(uuid.NewV7()).String(),
	}
	res, err := call(ctx, c.logger, remote.BalancePolicy, handle.changeBalance, "trader.ChangeBalance", req, slowCallThreshold)
	if err != nil {
		return 0, err
	}
	return res.Balance, nil
}

// GetMargin returns the trader's available margin.
func (c *TraderClient) GetMargin(ctx context.Context, traderID string) (float64, error) {
	handle, err := c.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer c.pool.Release(handle)

	res, err := call(ctx, c.logger, remote.BalancePolicy, handle.getMargin, "trader.GetMargin", &getMarginRequest{TraderID: traderID}, slowCallThreshold)
	if err != nil {
		return 0, err
	}
	return res.Margin, nil
}
