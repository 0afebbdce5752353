package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/paylane/gateway/events"
	"github.com/paylane/gateway/middleware"
	"github.com/paylane/gateway/services"
	"github.com/paylane/gateway/utils"
	"github.com/paylane/gateway/workerpool"
)

// TraderBalanceAPI is the trader-service surface the admin handler needs.
type TraderBalanceAPI interface {
	ChangeBalance(ctx context.Context, traderID string, amount float64, currency string) (float64, error)
	GetMargin(ctx context.Context, traderID string) (float64, error)
}

// BalanceEventPublisher publishes balance-change events; delivery is
// best-effort.
type BalanceEventPublisher interface {
	PublishBalanceChange(ctx context.Context, event events.BalanceEvent)
}

// KeyRotator rotates merchant public keys.
type KeyRotator interface {
	RotateMerchantPublicKey(ctx context.Context, merchantID, publicKeyPEM string) error
}

// TaskRunner admits the fire-and-forget event publish jobs.
type TaskRunner interface {
	Submit(ctx context.Context, job workerpool.Job) error
}

// ChangeBalanceRequest represents an admin balance adjustment
type ChangeBalanceRequest struct {
	Amount   float64 `json:"amount" validate:"required"`
	Currency string  `json:"currency" validate:"omitempty,len=3|len=4"`
}

// RotateKeyRequest represents a merchant public-key rotation
type RotateKeyRequest struct {
	PublicKey string `json:"public_key" validate:"required"`
}

// AdminHandler serves the admin-gated trader and merchant management
// endpoints
type AdminHandler struct {
	traders  TraderBalanceAPI
	rotator  KeyRotator
	producer BalanceEventPublisher
	tasks    TaskRunner
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	traders TraderBalanceAPI,
	rotator KeyRotator,
	producer BalanceEventPublisher,
	tasks TaskRunner,
	validate *validator.Validate,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		traders:  traders,
		rotator:  rotator,
		producer: producer,
		tasks:    tasks,
		validate: validate,
		logger:   logger,
	}
}

// HandleChangeTraderBalance handles POST /admin/traders/{id}/balance.
// Debits are checked against the trader's margin before the adjustment;
// the resulting event publish is fire-and-forget.
func (h *AdminHandler) HandleChangeTraderBalance(w http.ResponseWriter, r *http.Request) {
	traderID := chi.URLParam(r, "id")
	if traderID == "" {
		_ = utils.WriteBadRequest(w, "missing trader id")
		return
	}

	var req ChangeBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteDomainError(w, services.ErrInvalidAmount)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		_ = utils.WriteDomainError(w, services.ErrInvalidAmount)
		return
	}
	if req.Currency == "" {
		req.Currency = "USDT"
	}

	if req.Amount < 0 {
		margin, err := h.traders.GetMargin(r.Context(), traderID)
		if err != nil {
			_ = utils.WriteDomainError(w, err)
			return
		}
		if margin+req.Amount < 0 {
			h.logger.Warn("balance debit exceeds margin",
				zap.String("trader_id", traderID),
				zap.Float64("amount", req.Amount),
				zap.Float64("margin", margin))
			_ = utils.WriteDomainError(w, services.ErrInsufficientFunds)
			return
		}
	}

	balance, err := h.traders.ChangeBalance(r.Context(), traderID, req.Amount, req.Currency)
	if err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}

	event := events.BalanceEvent{
		TraderID:   traderID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Balance:    balance,
		AdjustedBy: middleware.PrincipalID(r.Context()),
		OccurredAt: time.Now().UTC(),
	}
	if err := h.tasks.Submit(r.Context(), func(jobCtx context.Context) {
		h.producer.PublishBalanceChange(jobCtx, event)
	}); err != nil {
		h.logger.Warn("balance event submission failed",
			zap.String("trader_id", traderID),
			zap.Error(err))
	}

	_ = utils.WriteOK(w, map[string]interface{}{"balance": balance})
}

// HandleRotateMerchantKey handles PUT /admin/merchants/{id}/public-key
func (h *AdminHandler) HandleRotateMerchantKey(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "id")
	if merchantID == "" {
		_ = utils.WriteBadRequest(w, "missing merchant id")
		return
	}

	var req RotateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		_ = utils.WriteBadRequest(w, "public_key is required")
		return
	}

	if err := h.rotator.RotateMerchantPublicKey(r.Context(), merchantID, req.PublicKey); err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}

	h.logger.Info("merchant public key rotated",
		zap.String("merchant_id", merchantID),
		zap.String("rotated_by", middleware.PrincipalID(r.Context())))
	utils.WriteNoContent(w)
}
