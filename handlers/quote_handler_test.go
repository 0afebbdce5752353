package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/paylane/gateway/services"
	"github.com/paylane/gateway/services/clients"
)

// MockRateAPI is a mock implementation of RateAPI
type MockRateAPI struct {
	mock.Mock
}

func (m *MockRateAPI) GetRate(ctx context.Context, from, to string) (float64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(float64), args.Error(1)
}

// MockRequisitesAPI is a mock implementation of RequisitesAPI
type MockRequisitesAPI struct {
	mock.Mock
}

func (m *MockRequisitesAPI) GetForPayment(ctx context.Context, amount float64, currency, methodID string) (*clients.Requisites, error) {
	args := m.Called(ctx, amount, currency, methodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.Requisites), args.Error(1)
}

// MockBankAPI is a mock implementation of BankAPI
type MockBankAPI struct {
	mock.Mock
}

func (m *MockBankAPI) GetBankInfo(ctx context.Context, bankID string) (*clients.BankInfo, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.BankInfo), args.Error(1)
}

func TestHandleQuote(t *testing.T) {
	newHandler := func() (*QuoteHandler, *MockRateAPI, *MockRequisitesAPI, *MockBankAPI) {
		exchange := new(MockRateAPI)
		requisites := new(MockRequisitesAPI)
		banks := new(MockBankAPI)
		return NewQuoteHandler(exchange, requisites, banks, zap.NewNop()), exchange, requisites, banks
	}

	t.Run("combines rate, requisites and bank info", func(t *testing.T) {
		h, exchange, requisites, banks := newHandler()
		exchange.On("GetRate", mock.Anything, "RUB", "USDT").Return(92.5, nil)
		requisites.On("GetForPayment", mock.Anything, 1000.0, "RUB", "card").
			Return(&clients.Requisites{ID: "r1", TraderID: "t1", BankID: "b1", CardNumber: "4111"}, nil)
		banks.On("GetBankInfo", mock.Anything, "b1").
			Return(&clients.BankInfo{ID: "b1", Name: "Test Bank"}, nil)

		req := claimsRequest("GET", "/merchant/quote?amount=1000&currency=RUB&method_id=card", "m1", "merchant")
		rec := httptest.NewRecorder()
		h.HandleQuote(rec, req)

		require.Equal(t, 200, rec.Code)
		var resp QuoteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 92.5, resp.Rate)
		assert.Equal(t, 1000.0, resp.FiatAmount)
		assert.InDelta(t, 1000.0/92.5, resp.CryptoAmount, 1e-9)
		require.NotNil(t, resp.Requisites)
		assert.Equal(t, "r1", resp.Requisites.ID)
		require.NotNil(t, resp.Bank)
		assert.Equal(t, "Test Bank", resp.Bank.Name)
	})

	t.Run("rejects a missing or non-positive amount", func(t *testing.T) {
		h, exchange, requisites, _ := newHandler()
		for _, target := range []string{
			"/merchant/quote?currency=RUB&method_id=card",
			"/merchant/quote?amount=-5&currency=RUB&method_id=card",
			"/merchant/quote?amount=abc&currency=RUB&method_id=card",
		} {
			rec := httptest.NewRecorder()
			h.HandleQuote(rec, claimsRequest("GET", target, "m1", "merchant"))
			assert.Equal(t, 400, rec.Code, target)
		}
		exchange.AssertNotCalled(t, "GetRate")
		requisites.AssertNotCalled(t, "GetForPayment")
	})

	t.Run("rejects missing currency and method", func(t *testing.T) {
		h, _, _, _ := newHandler()
		for _, target := range []string{
			"/merchant/quote?amount=100&method_id=card",
			"/merchant/quote?amount=100&currency=RUB",
		} {
			rec := httptest.NewRecorder()
			h.HandleQuote(rec, claimsRequest("GET", target, "m1", "merchant"))
			assert.Equal(t, 400, rec.Code, target)
		}
	})

	t.Run("propagates no available requisites", func(t *testing.T) {
		h, exchange, requisites, banks := newHandler()
		exchange.On("GetRate", mock.Anything, "RUB", "USDT").Return(92.5, nil)
		requisites.On("GetForPayment", mock.Anything, 1000.0, "RUB", "card").
			Return(nil, services.ErrNoAvailableRequisites)

		rec := httptest.NewRecorder()
		h.HandleQuote(rec, claimsRequest("GET", "/merchant/quote?amount=1000&currency=RUB&method_id=card", "m1", "merchant"))

		assert.Equal(t, services.ErrNoAvailableRequisites.Status, rec.Code)
		banks.AssertNotCalled(t, "GetBankInfo")
	})

	t.Run("non-positive rate denies the quote", func(t *testing.T) {
		h, exchange, requisites, _ := newHandler()
		exchange.On("GetRate", mock.Anything, "RUB", "USDT").Return(0.0, nil)

		rec := httptest.NewRecorder()
		h.HandleQuote(rec, claimsRequest("GET", "/merchant/quote?amount=1000&currency=RUB&method_id=card", "m1", "merchant"))

		assert.Equal(t, 500, rec.Code)
		requisites.AssertNotCalled(t, "GetForPayment")
	})

	t.Run("rate failure denies the quote", func(t *testing.T) {
		h, exchange, requisites, _ := newHandler()
		exchange.On("GetRate", mock.Anything, "RUB", "USDT").Return(0.0, services.ErrInternal)

		rec := httptest.NewRecorder()
		h.HandleQuote(rec, claimsRequest("GET", "/merchant/quote?amount=1000&currency=RUB&method_id=card", "m1", "merchant"))

		assert.Equal(t, 500, rec.Code)
		requisites.AssertNotCalled(t, "GetForPayment")
	})

	t.Run("bank directory failure degrades the quote", func(t *testing.T) {
		h, exchange, requisites, banks := newHandler()
		exchange.On("GetRate", mock.Anything, "RUB", "USDT").Return(92.5, nil)
		requisites.On("GetForPayment", mock.Anything, 1000.0, "RUB", "card").
			Return(&clients.Requisites{ID: "r1", BankID: "b1"}, nil)
		banks.On("GetBankInfo", mock.Anything, "b1").Return(nil, services.ErrInternal)

		rec := httptest.NewRecorder()
		h.HandleQuote(rec, claimsRequest("GET", "/merchant/quote?amount=1000&currency=RUB&method_id=card", "m1", "merchant"))

		require.Equal(t, 200, rec.Code)
		var resp QuoteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Requisites)
		assert.Nil(t, resp.Bank)
	})
}
