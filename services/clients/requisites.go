package clients

import (
	"context"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"github.com/paylane/gateway/services/remote"
)

const requisitesServicePath = "/requisites.v1.RequisitesService/"

// RequisitesClient selects payment requisites. It sits on the payment
// creation hot path, hence the larger pool and the tight slow-call
// threshold.
type RequisitesClient struct {
	pool   *remote.Pool[*connect.Client[getRequisitesRequest, Requisites]]
	logger *zap.Logger
}

func NewRequisitesClient(baseURL string, poolSize int, logger *zap.Logger) *RequisitesClient {
	httpClient := newHTTPClient()
	return &RequisitesClient{
		pool: remote.NewPool(poolSize, func() (*connect.Client[getRequisitesRequest, Requisites], error) {
			return newProcedure[getRequisitesRequest, Requisites](httpClient, baseURL, requisitesServicePath+"GetForPayment"), nil
		}),
		logger: logger,
	}
}

// GetForPayment selects requisites able to receive the given amount.
// A downstream NotFound with the "no available requisites" message surfaces
// as NoAvailableRequisites.
func (c *RequisitesClient) GetForPayment(ctx context.Context, amount float64, currency, methodID string) (*Requisites, error) {
	handle, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer c.pool.Release(handle)

	req := &getRequisitesRequest{Amount: amount, Currency: currency, MethodID: methodID}
	return call(ctx, c.logger, remote.DefaultPolicy, handle, "requisites.GetForPayment", req, slowRequisitesThreshold)
}
