package services

import (
	"errors"
	"fmt"
)

// Kind identifies one member of the closed error taxonomy every deny path
// and every remote-call failure is mapped onto.
type Kind string

const (
	KindUnauthorized          Kind = "unauthorized"
	KindForbidden             Kind = "forbidden"
	KindNotFound              Kind = "not_found"
	KindTraderNotFound        Kind = "trader_not_found"
	KindMerchantNotFound      Kind = "merchant_not_found"
	KindInsufficientFunds     Kind = "insufficient_funds"
	KindInvalidAmount         Kind = "invalid_amount"
	KindNoAvailableRequisites Kind = "no_available_requisites"
	KindConflict              Kind = "conflict"
	KindInternal              Kind = "internal_error"
)

// DomainError is a taxonomy member carrying the fixed external status code and
// message for that kind. Internal detail lives in Err and is logged, never
// written to a response.
type DomainError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches two domain errors by kind, so errors.Is(err, ErrMerchantNotFound)
// works for wrapped copies.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithCause returns a copy of the taxonomy member carrying err as internal
// detail. The sentinel itself is never mutated.
func (e *DomainError) WithCause(err error) *DomainError {
	return &DomainError{Kind: e.Kind, Status: e.Status, Message: e.Message, Err: err}
}

// The closed taxonomy. Status codes and message texts are part of the external
// contract and must not change.
var (
	ErrUnauthorized          = &DomainError{Kind: KindUnauthorized, Status: 401, Message: "Unauthorized"}
	ErrForbidden             = &DomainError{Kind: KindForbidden, Status: 403, Message: "Forbidden"}
	ErrNotFound              = &DomainError{Kind: KindNotFound, Status: 404, Message: "Not Found"}
	ErrTraderNotFound        = &DomainError{Kind: KindTraderNotFound, Status: 404, Message: "Trader not found"}
	ErrMerchantNotFound      = &DomainError{Kind: KindMerchantNotFound, Status: 404, Message: "Merchant not found"}
	ErrInsufficientFunds     = &DomainError{Kind: KindInsufficientFunds, Status: 400, Message: "Insufficient Funds"}
	ErrInvalidAmount         = &DomainError{Kind: KindInvalidAmount, Status: 400, Message: "Invalid Amount"}
	ErrNoAvailableRequisites = &DomainError{Kind: KindNoAvailableRequisites, Status: 500, Message: "No Available Requisites"}
	ErrConflict              = &DomainError{Kind: KindConflict, Status: 409, Message: "Conflict"}
	ErrInternal              = &DomainError{Kind: KindInternal, Status: 500, Message: "Internal Error"}
)

// AsDomain extracts the taxonomy member from err, degrading anything outside
// the taxonomy to ErrInternal.
func AsDomain(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return ErrInternal.WithCause(err)
}

// IsNotFound reports whether err is any of the not-found kinds.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTraderNotFound) ||
		errors.Is(err, ErrMerchantNotFound)
}
