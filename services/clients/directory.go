package clients

import (
	"context"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"github.com/paylane/gateway/services/remote"
)

// Clients for the small read-mostly directory services: banks, exchange
// rates and trader devices. They share the default pool size and policy.

const (
	bankServicePath     = "/bank.v1.BankService/"
	exchangeServicePath = "/exchange.v1.ExchangeService/"
	deviceServicePath   = "/device.v1.DeviceService/"
)

// BankClient resolves bank directory entries.
type BankClient struct {
	pool   *remote.Pool[*connect.Client[getBankInfoRequest, BankInfo]]
	logger *zap.Logger
}

func NewBankClient(baseURL string, poolSize int, logger *zap.Logger) *BankClient {
	httpClient := newHTTPClient()
	return &BankClient{
		pool: remote.NewPool(poolSize, func() (*connect.Client[getBankInfoRequest, BankInfo], error) {
			return newProcedure[getBankInfoRequest, BankInfo](httpClient, baseURL, bankServicePath+"GetBankInfo"), nil
		}),
		logger: logger,
	}
}

// GetBankInfo returns the directory entry for the bank.
func (c *BankClient) GetBankInfo(ctx context.Context, bankID string) (*BankInfo, error) {
	handle, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer c.pool.Release(handle)

	return call(ctx, c.logger, remote.DefaultPolicy, handle, "bank.GetBankInfo", &getBankInfoRequest{BankID: bankID}, slowCallThreshold)
}

// ExchangeClient resolves currency conversion rates.
type ExchangeClient struct {
	pool   *remote.Pool[*connect.Client[getRateRequest, getRateResponse]]
	logger *zap.Logger
}

func NewExchangeClient(baseURL string, poolSize int, logger *zap.Logger) *ExchangeClient {
	httpClient := newHTTPClient()
	return &ExchangeClient{
		pool: remote.NewPool(poolSize, func() (*connect.Client[getRateRequest, getRateResponse], error) {
			return newProcedure[getRateRequest, getRateResponse](httpClient, baseURL, exchangeServicePath+"GetRate"), nil
		}),
		logger: logger,
	}
}

// GetRate returns the conversion rate from one currency to another.
func (c *ExchangeClient) GetRate(ctx context.Context, from, to string) (float64, error) {
	handle, err := c.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer c.pool.Release(handle)

	res, err := call(ctx, c.logger, remote.DefaultPolicy, handle, "exchange.GetRate", &getRateRequest{From: from, To: to}, slowCallThreshold)
	if err != nil {
		return 0, err
	}
	return res.Rate, nil
}

// DeviceClient reports trader device liveness.
type DeviceClient struct {
	pool   *remote.Pool[*connect.Client[getDeviceStatusRequest, DeviceStatus]]
	logger *zap.Logger
}

func NewDeviceClient(baseURL string, poolSize int, logger *zap.Logger) *DeviceClient {
	httpClient := newHTTPClient()
	return &DeviceClient{
		pool: remote.NewPool(poolSize, func() (*connect.Client[getDeviceStatusRequest, DeviceStatus], error) {
			return newProcedure[getDeviceStatusRequest, DeviceStatus](httpClient, baseURL, deviceServicePath+"GetStatus"), nil
		}),
		logger: logger,
	}
}

// GetStatus returns the liveness of a trader device.
func (c *DeviceClient) GetStatus(ctx context.Context, deviceID string) (*DeviceStatus, error) {
	handle, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer c.pool.Release(handle)

	return call(ctx, c.logger, remote.DefaultPolicy, handle, "device.GetStatus", &getDeviceStatusRequest{DeviceID: deviceID}, slowCallThreshold)
}
