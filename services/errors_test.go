package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorIs(t *testing.T) {
	t.Run("matches same kind through wrapping", func(t *testing.T) {
		wrapped := ErrMerchantNotFound.WithCause(errors.New("zero rows"))
		assert.True(t, errors.Is(wrapped, ErrMerchantNotFound))
		assert.False(t, errors.Is(wrapped, ErrTraderNotFound))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("resolve block status: %w", ErrUnauthorized)
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})

	t.Run("does not match plain errors", func(t *testing.T) {
		assert.False(t, errors.Is(errors.New("boom"), ErrInternal))
	})
}

func TestWithCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := ErrInternal.WithCause(cause)

	assert.Equal(t, ErrInternal.Kind, err.Kind)
	assert.Equal(t, 500, err.Status)
	assert.Equal(t, "Internal Error", err.Message)
	assert.Equal(t, cause, errors.Unwrap(err))
	// the sentinel must stay untouched
	assert.Nil(t, ErrInternal.Err)
}

func TestAsDomain(t *testing.T) {
	t.Run("passes taxonomy members through", func(t *testing.T) {
		err := AsDomain(fmt.Errorf("gate: %w", ErrForbidden))
		assert.Equal(t, KindForbidden, err.Kind)
		assert.Equal(t, 403, err.Status)
	})

	t.Run("degrades unknown errors to internal", func(t *testing.T) {
		err := AsDomain(errors.New("sql: database is closed"))
		assert.Equal(t, KindInternal, err.Kind)
		assert.Equal(t, "Internal Error", err.Message)
	})
}

func TestExternalContract(t *testing.T) {
	// status code + message pairs are frozen; a change here is a breaking
	// change for every API consumer
	fixed := map[*DomainError]struct {
		status  int
		message string
	}{
		ErrUnauthorized:          {401, "Unauthorized"},
		ErrForbidden:             {403, "Forbidden"},
		ErrNotFound:              {404, "Not Found"},
		ErrTraderNotFound:        {404, "Trader not found"},
		ErrMerchantNotFound:      {404, "Merchant not found"},
		ErrInsufficientFunds:     {400, "Insufficient Funds"},
		ErrInvalidAmount:         {400, "Invalid Amount"},
		ErrNoAvailableRequisites: {500, "No Available Requisites"},
		ErrConflict:              {409, "Conflict"},
		ErrInternal:              {500, "Internal Error"},
	}
	for err, want := range fixed {
		assert.Equal(t, want.status, err.Status, err.Kind)
		assert.Equal(t, want.message, err.Message, err.Kind)
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(ErrTraderNotFound.WithCause(errors.New("x"))))
	assert.True(t, IsNotFound(ErrMerchantNotFound))
	assert.False(t, IsNotFound(ErrForbidden))
}
