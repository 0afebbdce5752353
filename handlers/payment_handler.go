package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/paylane/gateway/middleware"
	"github.com/paylane/gateway/models"
	"github.com/paylane/gateway/repositories"
	"github.com/paylane/gateway/services"
	"github.com/paylane/gateway/services/clients"
	"github.com/paylane/gateway/utils"
)

// PaymentLookup is the remote single-payment surface consumed by the
// handlers; the listing read model stays local.
type PaymentLookup interface {
	GetByID(ctx context.Context, id string) (*clients.RemotePayment, error)
	GetByExternalID(ctx context.Context, externalID, merchantID string) (*clients.RemotePayment, error)
	Close(ctx context.Context, id, status string) error
}

// PaymentHandler serves the role-scoped payment listings and lookups
type PaymentHandler struct {
	payments repositories.PaymentStore
	lookup   PaymentLookup
	validate *validator.Validate
	logger   *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments repositories.PaymentStore, lookup PaymentLookup, validate *validator.Validate, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		lookup:   lookup,
		validate: validate,
		logger:   logger,
	}
}

// HandleListTraderPayments handles GET /trader/payments
func (h *PaymentHandler) HandleListTraderPayments(w http.ResponseWriter, r *http.Request) {
	traderID := middleware.PrincipalID(r.Context())

	filter := &models.TraderPaymentsFilter{
		ID:          optionalString(r.URL.Query(), "id"),
		BankID:      optionalString(r.URL.Query(), "bank_id"),
		Status:      statusSet(r.URL.Query()),
		PaymentSide: optionalString(r.URL.Query(), "payment_side"),
		Limit:       intQuery(r.URL.Query(), "limit"),
		Page:        intQuery(r.URL.Query(), "page"),
	}
	if err := h.validate.Struct(filter); err != nil {
		_ = utils.WriteBadRequest(w, "invalid filter")
		return
	}

	payments, err := h.payments.ListForTrader(r.Context(), traderID, filter)
	if err != nil {
		h.logger.Error("trader payments listing failed",
			zap.String("trader_id", traderID),
			zap.Error(err))
		_ = utils.WriteDomainError(w, err)
		return
	}
	_ = utils.WriteOK(w, map[string]interface{}{"payments": payments})
}

// HandleListMerchantPayments handles GET /merchant/payments for both the
// token and signed gates; the principal comes from whichever identity the
// pipeline attached.
func (h *PaymentHandler) HandleListMerchantPayments(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.PrincipalID(r.Context())

	filter := &models.MerchantPaymentsFilter{
		ID:          optionalString(r.URL.Query(), "id"),
		ExternalID:  optionalString(r.URL.Query(), "external_id"),
		ClientID:    optionalString(r.URL.Query(), "client_id"),
		Status:      statusSet(r.URL.Query()),
		PaymentSide: optionalString(r.URL.Query(), "payment_side"),
		Limit:       intQuery(r.URL.Query(), "limit"),
		Page:        intQuery(r.URL.Query(), "page"),
	}
	var err error
	if filter.From, err = timeQuery(r.URL.Query(), "from"); err != nil {
		_ = utils.WriteBadRequest(w, "invalid from timestamp")
		return
	}
	if filter.To, err = timeQuery(r.URL.Query(), "to"); err != nil {
		_ = utils.WriteBadRequest(w, "invalid to timestamp")
		return
	}
	if err := h.validate.Struct(filter); err != nil {
		_ = utils.WriteBadRequest(w, "invalid filter")
		return
	}

	payments, err := h.payments.ListForMerchant(r.Context(), merchantID, filter)
	if err != nil {
		h.logger.Error("merchant payments listing failed",
			zap.String("merchant_id", merchantID),
			zap.Error(err))
		_ = utils.WriteDomainError(w, err)
		return
	}
	_ = utils.WriteOK(w, map[string]interface{}{"payments": payments})
}

// HandleGetPayment handles GET /merchant/payments/{id}: a single-payment
// lookup against the payments service, scoped to the calling merchant.
func (h *PaymentHandler) HandleGetPayment(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.PrincipalID(r.Context())
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		_ = utils.WriteBadRequest(w, "missing payment id")
		return
	}

	payment, err := h.lookup.GetByID(r.Context(), paymentID)
	if err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}
	if payment.MerchantID != merchantID {
		// Another merchant's payment is indistinguishable from a missing one.
		_ = utils.WriteDomainError(w, services.ErrNotFound)
		return
	}
	_ = utils.WriteOK(w, payment)
}

// HandleGetPaymentByExternalID handles GET /merchant/payments/external/{external_id}
func (h *PaymentHandler) HandleGetPaymentByExternalID(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.PrincipalID(r.Context())
	externalID := chi.URLParam(r, "external_id")
	if externalID == "" {
		_ = utils.WriteBadRequest(w, "missing external id")
		return
	}

	payment, err := h.lookup.GetByExternalID(r.Context(), externalID, merchantID)
	if err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}
	_ = utils.WriteOK(w, payment)
}

// HandleCancelPayment handles POST /merchant/payments/{id}/cancel. Only the
// owning merchant may cancel, and only payments the remote side still treats
// as open; anything else surfaces as the payments service reports it.
func (h *PaymentHandler) HandleCancelPayment(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.PrincipalID(r.Context())
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		_ = utils.WriteBadRequest(w, "missing payment id")
		return
	}

	payment, err := h.lookup.GetByID(r.Context(), paymentID)
	if err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}
	if payment.MerchantID != merchantID {
		// Another merchant's payment is indistinguishable from a missing one.
		_ = utils.WriteDomainError(w, services.ErrNotFound)
		return
	}

	if err := h.lookup.Close(r.Context(), paymentID, "canceled"); err != nil {
		h.logger.Error("payment cancellation failed",
			zap.String("payment_id", paymentID),
			zap.String("merchant_id", merchantID),
			zap.Error(err))
		_ = utils.WriteDomainError(w, err)
		return
	}
	utils.WriteNoContent(w)
}

func optionalString(q url.Values, key string) *string {
	if value := q.Get(key); value != "" {
		return &value
	}
	return nil
}

// statusSet accepts both repeated status params and one comma-separated value
func statusSet(q url.Values) []string {
	var statuses []string
	for _, raw := range q["status"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, s)
			}
		}
	}
	return statuses
}

func intQuery(q url.Values, key string) int {
	value, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return 0
	}
	return value
}

func timeQuery(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
