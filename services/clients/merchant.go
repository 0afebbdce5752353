package clients

import (
	"context"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paylane/gateway/services/remote"
)

const merchantServicePath = "/merchant.v1.MerchantService/"

type merchantHandle struct {
	changeBalance *connect.Client[changeMerchantBalanceRequest, changeMerchantBalanceResponse]
	getMethod     *connect.Client[getPaymentMethodRequest, PaymentMethod]
	listMethods   *connect.Client[listPaymentMethodsRequest, listPaymentMethodsResponse]
}

// MerchantClient calls the merchant service.
type MerchantClient struct {
	pool   *remote.Pool[*merchantHandle]
	logger *zap.Logger
}

// NewMerchantClient creates a merchant service client with a handle pool of
// the given size.
func NewMerchantClient(baseURL string, poolSize int, logger *zap.Logger) *MerchantClient {
	httpClient := newHTTPClient()
	return &MerchantClient{
		pool: remote.NewPool(poolSize, func() (*merchantHandle, error) {
			return &merchantHandle{
				changeBalance: newProcedure[changeMerchantBalanceRequest, changeMerchantBalanceResponse](httpClient, baseURL, merchantServicePath+"ChangeBalance"),
				getMethod:     newProcedure[getPaymentMethodRequest, PaymentMethod](httpClient, baseURL, merchantServicePath+"GetPaymentMethod"),
				listMethods:   newProcedure[listPaymentMethodsRequest, listPaymentMethodsResponse](httpClient, baseURL, merchantServicePath+"ListPaymentMethods"),
			}, nil
		}),
		logger: logger,
	}
}

// ChangeBalance adjusts the merchant balance by amount and returns the new
// balance. Retried harder than ordinary reads because a dropped adjustment
// desynchronizes settlement.
func (c *MerchantClient) ChangeBalance(ctx context.Context, merchantID string, amount float64, currency string) (float64, error) {
	handle, err := c.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer c.pool.Release(handle)

	req := &changeMerchantBalanceRequest{
		MerchantID:     merchantID,
		Amount:         amount,
		Currency:       currency,
		IdempotencyKey: uuid.Must(uuid.NewV7()).String(),
	}
	res, err := call(ctx, c.logger, remote.BalancePolicy, handle.changeBalance, "merchant.ChangeBalance", req, slowCallThreshold)
	if err != nil {
		return 0, err
	}
	return res.Balance, nil
}

// GetPaymentMethod resolves a single payment method for the merchant.
func (c *MerchantClient) GetPaymentMethod(ctx context.Context, merchantID, methodID string) (*PaymentMethod, error) {
	handle, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer c.pool.Release(handle)

	req := &getPaymentMethodRequest{MerchantID: merchantID, MethodID: methodID}
	return call(ctx, c.logger, remote.DefaultPolicy, handle.getMethod, "merchant.GetPaymentMethod", req, slowCallThreshold)
}

// ListPaymentMethods returns every payment method enabled for the merchant.
func (c *MerchantClient) ListPaymentMethods(ctx context.Context, merchantID string) ([]PaymentMethod, error) {
	handle, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer c.pool.Release(handle)

	res, err := call(ctx, c.logger, remote.DefaultPolicy, handle.listMethods, "merchant.ListPaymentMethods", &listPaymentMethodsRequest{MerchantID: merchantID}, slowCallThreshold)
	if err != nil {
		return nil, err
	}
	return res.Methods, nil
}
