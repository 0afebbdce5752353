package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/paylane/gateway/middleware"
	"github.com/paylane/gateway/services/clients"
	"github.com/paylane/gateway/utils"
)

// MerchantMethodsAPI is the merchant-service surface for payment methods.
type MerchantMethodsAPI interface {
	GetPaymentMethod(ctx context.Context, merchantID, methodID string) (*clients.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, merchantID string) ([]clients.PaymentMethod, error)
}

// MethodHandler serves the merchant's payment-method catalogue
type MethodHandler struct {
	methods MerchantMethodsAPI
	logger  *zap.Logger
}

// NewMethodHandler creates a new MethodHandler
func NewMethodHandler(methods MerchantMethodsAPI, logger *zap.Logger) *MethodHandler {
	return &MethodHandler{
		methods: methods,
		logger:  logger,
	}
}

// HandleListMethods handles GET /merchant/methods
func (h *MethodHandler) HandleListMethods(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.PrincipalID(r.Context())

	methods, err := h.methods.ListPaymentMethods(r.Context(), merchantID)
	if err != nil {
		h.logger.Error("payment methods listing failed",
			zap.String("merchant_id", merchantID),
			zap.Error(err))
		_ = utils.WriteDomainError(w, err)
		return
	}
	_ = utils.WriteOK(w, map[string]interface{}{"methods": methods})
}

// HandleGetMethod handles GET /merchant/methods/{id}
func (h *MethodHandler) HandleGetMethod(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.PrincipalID(r.Context())
	methodID := chi.URLParam(r, "id")
	if methodID == "" {
		_ = utils.WriteBadRequest(w, "missing method id")
		return
	}

	method, err := h.methods.GetPaymentMethod(r.Context(), merchantID, methodID)
	if err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}
	_ = utils.WriteOK(w, method)
}
