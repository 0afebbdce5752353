package utils

import (
	"encoding/json"
	"net/http"

	"github.com/paylane/gateway/services"
)

// ErrorResponse is the fixed machine-readable deny body. Error carries the
// numeric status code, mirroring it from the HTTP layer for clients that only
// read the body.
type ErrorResponse struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with the payload as the body
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteDomainError writes the fixed external shape for a taxonomy member.
// Anything outside the taxonomy degrades to Internal Error; the original error
// is the caller's to log, never the client's to see.
func WriteDomainError(w http.ResponseWriter, err error) error {
	domainErr := services.AsDomain(err)
	return WriteJSON(w, domainErr.Status, ErrorResponse{
		Error:   domainErr.Status,
		Message: domainErr.Message,
	})
}

// WriteUnauthorized writes the fixed 401 deny body
func WriteUnauthorized(w http.ResponseWriter) error {
	return WriteDomainError(w, services.ErrUnauthorized)
}

// WriteForbidden writes the fixed 403 deny body
func WriteForbidden(w http.ResponseWriter) error {
	return WriteDomainError(w, services.ErrForbidden)
}

// WriteBadRequest writes a 400 response for malformed input that never reaches
// a gate decision (unparsable query parameters and bodies).
func WriteBadRequest(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   http.StatusBadRequest,
		Message: message,
	})
}
