package clients

import (
	"context"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"github.com/paylane/gateway/services/remote"
)

const paymentsServicePath = "/payments.v1.PaymentsService/"

type paymentsHandle struct {
	getByID         *connect.Client[getPaymentRequest, RemotePayment]
	getByExternalID *connect.Client[getPaymentByExternalIDRequest, RemotePayment]
	closePayment    *connect.Client[closePaymentRequest, closePaymentResponse]
}

// PaymentsClient calls the payments service for single-payment lookups and
// closing; bulk listings go through the local read model instead.
type PaymentsClient struct {
	pool   *remote.Pool[*paymentsHandle]
	logger *zap.Logger
}

func NewPaymentsClient(baseURL string, poolSize int, logger *zap.Logger) *PaymentsClient {
	httpClient := newHTTPClient()
	return &PaymentsClient{
		pool: remote.NewPool(poolSize, func() (*paymentsHandle, error) {
			return &paymentsHandle{
				getByID:         newProcedure[getPaymentRequest, RemotePayment](httpClient, baseURL, paymentsServicePath+"GetByID"),
				getByExternalID: newProcedure[getPaymentByExternalIDRequest, RemotePayment](httpClient, baseURL, paymentsServicePath+"GetByExternalID"),
				closePayment:    newProcedure[closePaymentRequest, closePaymentResponse](httpClient, baseURL, paymentsServicePath+"Close"),
			}, nil
		}),
		logger: logger,
	}
}

// GetByID fetches a payment by its internal identifier.
func (c *PaymentsClient) GetByID(ctx context.Context, id string) (*RemotePayment, error) {
	handle, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer c.pool.Release(handle)

	return call(ctx, c.logger, remote.DefaultPolicy, handle.getByID, "payments.GetByID", &getPaymentRequest{ID: id}, slowCallThreshold)
}

// GetByExternalID fetches a payment by the identifier the merchant assigned.
func (c *PaymentsClient) GetByExternalID(ctx context.Context, externalID, merchantID string) (*RemotePayment, error) {
	handle, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer c.pool.Release(handle)

	req := &getPaymentByExternalIDRequest{ExternalID: externalID, MerchantID: merchantID}
	return call(ctx, c.logger, remote.DefaultPolicy, handle.getByExternalID, "payments.GetByExternalID", req, slowCallThreshold)
}

// Close moves a payment into the given terminal status.
func (c *PaymentsClient) Close(ctx context.Context, id, status string) error {
	handle, err := c.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer c.pool.Release(handle)

	_, err = call(ctx, c.logger, remote.DefaultPolicy, handle.closePayment, "payments.Close", &closePaymentRequest{ID: id, Status: status}, slowCallThreshold)
	return err
}
