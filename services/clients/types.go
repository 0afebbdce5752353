package clients

import "time"

// Wire payloads for the downstream services. Only the status code and
// message of an error reply are contractual; these shapes are owned here.

type changeTraderBalanceRequest struct {
	TraderID       string  `json:"trader_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	IdempotencyKey string  `json:"idempotency_key"`
}

type changeTraderBalanceResponse struct {
	Balance float64 `json:"balance"`
}

type getMarginRequest struct {
	TraderID string `json:"trader_id"`
}

type getMarginResponse struct {
	Margin float64 `json:"margin"`
}

type changeMerchantBalanceRequest struct {
	MerchantID     string  `json:"merchant_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	IdempotencyKey string  `json:"idempotency_key"`
}

type changeMerchantBalanceResponse struct {
	Balance float64 `json:"balance"`
}

// PaymentMethod describes a payment rail a merchant is allowed to use.
type PaymentMethod struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Currency  string  `json:"currency"`
	MinAmount float64 `json:"min_amount"`
	MaxAmount float64 `json:"max_amount"`
	Enabled   bool    `json:"enabled"`
}

type getPaymentMethodRequest struct {
	MerchantID string `json:"merchant_id"`
	MethodID   string `json:"method_id"`
}

type listPaymentMethodsRequest struct {
	MerchantID string `json:"merchant_id"`
}

type listPaymentMethodsResponse struct {
	Methods []PaymentMethod `json:"methods"`
}

// BankInfo is the bank directory entry resolved for requisites display.
type BankInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	BIC     string `json:"bic"`
}

type getBankInfoRequest struct {
	BankID string `json:"bank_id"`
}

type getRateRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type getRateResponse struct {
	Rate float64 `json:"rate"`
}

// Requisites is the destination a payer is told to send funds to.
type Requisites struct {
	ID         string `json:"id"`
	TraderID   string `json:"trader_id"`
	BankID     string `json:"bank_id"`
	CardNumber string `json:"card_number"`
	Holder     string `json:"holder"`
}

type getRequisitesRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	MethodID string  `json:"method_id"`
}

// RemotePayment mirrors the payment record owned by the payments service.
type RemotePayment struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	MerchantID string    `json:"merchant_id"`
	TraderID   string    `json:"trader_id"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type getPaymentRequest struct {
	ID string `json:"id"`
}

type getPaymentByExternalIDRequest struct {
	ExternalID string `json:"external_id"`
	MerchantID string `json:"merchant_id"`
}

type closePaymentRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type closePaymentResponse struct {
	Status string `json:"status"`
}

// DeviceStatus reports trader device liveness.
type DeviceStatus struct {
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}

type getDeviceStatusRequest struct {
	DeviceID string `json:"device_id"`
}
