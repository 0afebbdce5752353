package remote

import (
	"errors"
	"strings"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"github.com/paylane/gateway/services"
)

// messageOverrides maps status code plus exact (lowercased) message text to a
// fine-grained taxonomy kind. Matching peers by message text couples us to
// their exact wording; an upstream rewording silently degrades these to
// Internal Error.
var messageOverrides = map[connect.Code]map[string]*services.DomainError{
	connect.CodeNotFound: {
		"no available requisites": services.ErrNoAvailableRequisites,
	},
	connect.CodeInvalidArgument: {
		"insufficient funds": services.ErrInsufficientFunds,
		"invalid amount":     services.ErrInvalidAmount,
	},
}

// codeFallbacks is the coarse per-code mapping applied when no message
// override matches. Codes absent here degrade to Internal Error.
var codeFallbacks = map[connect.Code]*services.DomainError{
	connect.CodeInternal:        services.ErrInternal,
	connect.CodeNotFound:        services.ErrNotFound,
	connect.CodeInvalidArgument: services.ErrInternal,
	connect.CodeCanceled:        services.ErrConflict,
}

// MapRPCError translates a remote call's failure into the taxonomy. Taxonomy
// members pass through untouched (the retry wrapper already produces them on
// exhaustion); everything unrecognized becomes Internal Error with the
// original detail logged, never exposed.
func MapRPCError(logger *zap.Logger, err error) *services.DomainError {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		logger.Error("rpc failed outside the status contract", zap.Error(err))
		return services.ErrInternal.WithCause(err)
	}

	logger.Error("rpc client error",
		zap.String("code", connectErr.Code().String()),
		zap.String("message", connectErr.Message()))

	if byMessage, ok := messageOverrides[connectErr.Code()]; ok {
		if mapped, ok := byMessage[strings.ToLower(connectErr.Message())]; ok {
			return mapped.WithCause(err)
		}
	}
	if mapped, ok := codeFallbacks[connectErr.Code()]; ok {
		return mapped.WithCause(err)
	}
	return services.ErrInternal.WithCause(err)
}
