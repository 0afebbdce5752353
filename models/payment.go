package models

import (
	"time"
)

// Payment statuses as stored in the payments table. Slim statuses are the
// subset external callers may filter by.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusActive    = "active"
	PaymentStatusCompleted = "completed"
	PaymentStatusCanceled  = "canceled"
	PaymentStatusDisputed  = "disputed"
)

// Payment sides
const (
	PaymentSideIn  = "in"
	PaymentSideOut = "out"
)

// MerchantPayment is the merchant-facing read model of a payment row. Trader
// and settlement columns are deliberately absent.
type MerchantPayment struct {
	ID            string     `json:"id"`
	ExternalID    string     `json:"external_id"`
	MerchantID    string     `json:"merchant_id"`
	ClientID      *string    `json:"client_id,omitempty"`
	Status        string     `json:"status"`
	PaymentSide   string     `json:"payment_side"`
	Currency      string     `json:"currency"`
	TargetAmount  float64    `json:"target_amount"`
	FiatAmount    float64    `json:"fiat_amount"`
	CryptoAmount  float64    `json:"crypto_amount"`
	FeeType       string     `json:"fee_type"`
	Margin        float64    `json:"margin"`
	ExchangeRate  float64    `json:"exchange_rate"`
	FiatFee       float64    `json:"fiat_fee"`
	CryptoFee     float64    `json:"crypto_fee"`
	HolderName    string     `json:"holder_name"`
	HolderAccount string     `json:"holder_account"`
	BankName      string     `json:"bank_name"`
	Method        string     `json:"method"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	Deadline      time.Time  `json:"deadline"`
}

// TraderPayment is the trader-facing read model of a payment row
type TraderPayment struct {
	ID            string     `json:"id"`
	TraderID      string     `json:"trader_id"`
	BankID        string     `json:"bank_id"`
	Status        string     `json:"status"`
	PaymentSide   string     `json:"payment_side"`
	Currency      string     `json:"currency"`
	FiatAmount    float64    `json:"fiat_amount"`
	CryptoAmount  float64    `json:"crypto_amount"`
	ExchangeRate  float64    `json:"exchange_rate"`
	HolderName    string     `json:"holder_name"`
	HolderAccount string     `json:"holder_account"`
	BankName      string     `json:"bank_name"`
	Method        string     `json:"method"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	Deadline      time.Time  `json:"deadline"`
}

// MerchantPaymentsFilter narrows a merchant's payment listing. Limit is
// clamped to 20 server-side regardless of the requested value.
type MerchantPaymentsFilter struct {
	ID          *string    `json:"id" validate:"omitempty,min=1"`
	ExternalID  *string    `json:"external_id" validate:"omitempty,min=1"`
	ClientID    *string    `json:"client_id" validate:"omitempty,min=1"`
	Status      []string   `json:"status" validate:"omitempty,dive,oneof=pending active completed canceled disputed"`
	PaymentSide *string    `json:"payment_side" validate:"omitempty,oneof=in out"`
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
	Limit       int        `json:"limit" validate:"omitempty,min=1"`
	Page        int        `json:"page" validate:"omitempty,min=1"`
}

// TraderPaymentsFilter narrows a trader's payment listing
type TraderPaymentsFilter struct {
	ID          *string  `json:"id" validate:"omitempty,min=1"`
	BankID      *string  `json:"bank_id" validate:"omitempty,min=1"`
	Status      []string `json:"status" validate:"omitempty,dive,oneof=pending active completed canceled disputed"`
	PaymentSide *string  `json:"payment_side" validate:"omitempty,oneof=in out"`
	Limit       int      `json:"limit" validate:"omitempty,min=1"`
	Page        int      `json:"page" validate:"omitempty,min=1"`
}
