package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/paylane/gateway/middleware"
	"github.com/paylane/gateway/services"
	"github.com/paylane/gateway/services/clients"
	"github.com/paylane/gateway/utils"
)

// RateAPI resolves currency conversion rates.
type RateAPI interface {
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// RequisitesAPI selects payment requisites for an amount.
type RequisitesAPI interface {
	GetForPayment(ctx context.Context, amount float64, currency, methodID string) (*clients.Requisites, error)
}

// BankAPI resolves bank directory entries.
type BankAPI interface {
	GetBankInfo(ctx context.Context, bankID string) (*clients.BankInfo, error)
}

// settlementCurrency is the crypto side every fiat quote converts into.
const settlementCurrency = "USDT"

// QuoteResponse is the pre-payment quote: the rate applied, the crypto
// amount it yields, and the requisites the payer would be told to use.
type QuoteResponse struct {
	Rate         float64             `json:"rate"`
	FiatAmount   float64             `json:"fiat_amount"`
	CryptoAmount float64             `json:"crypto_amount"`
	Requisites   *clients.Requisites `json:"requisites"`
	Bank         *clients.BankInfo   `json:"bank"`
}

// QuoteHandler answers merchant pre-payment quotes: whether requisites are
// available for an amount, at what rate, and through which bank.
type QuoteHandler struct {
	exchange   RateAPI
	requisites RequisitesAPI
	banks      BankAPI
	logger     *zap.Logger
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(exchange RateAPI, requisites RequisitesAPI, banks BankAPI, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		exchange:   exchange,
		requisites: requisites,
		banks:      banks,
		logger:     logger,
	}
}

// HandleQuote handles GET /merchant/quote?amount=&currency=&method_id=
func (h *QuoteHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.PrincipalID(r.Context())

	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil || amount <= 0 {
		_ = utils.WriteDomainError(w, services.ErrInvalidAmount)
		return
	}
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		_ = utils.WriteBadRequest(w, "missing currency")
		return
	}
	methodID := r.URL.Query().Get("method_id")
	if methodID == "" {
		_ = utils.WriteBadRequest(w, "missing method_id")
		return
	}

	rate, err := h.exchange.GetRate(r.Context(), currency, settlementCurrency)
	if err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}
	if rate <= 0 {
		h.logger.Error("exchange returned a non-positive rate",
			zap.String("currency", currency),
			zap.Float64("rate", rate))
		_ = utils.WriteDomainError(w, services.ErrInternal)
		return
	}

	requisites, err := h.requisites.GetForPayment(r.Context(), amount, currency, methodID)
	if err != nil {
		h.logger.Warn("quote requisites selection failed",
			zap.String("merchant_id", merchantID),
			zap.Float64("amount", amount),
			zap.Error(err))
		_ = utils.WriteDomainError(w, err)
		return
	}

	// the bank entry is display data; a directory failure degrades the
	// quote, it does not deny it
	bank, err := h.banks.GetBankInfo(r.Context(), requisites.BankID)
	if err != nil {
		h.logger.Warn("bank directory lookup failed",
			zap.String("bank_id", requisites.BankID),
			zap.Error(err))
		bank = nil
	}

	_ = utils.WriteOK(w, QuoteResponse{
		Rate:         rate,
		FiatAmount:   amount,
		CryptoAmount: amount / rate,
		Requisites:   requisites,
		Bank:         bank,
	})
}
