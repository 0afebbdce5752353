package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/paylane/gateway/middleware"
	"github.com/paylane/gateway/utils"
)

// ProfileResponse is the identity echo for the shared profile endpoint
type ProfileResponse struct {
	ID             string `json:"id"`
	Role           string `json:"role"`
	ImpersonatedBy string `json:"impersonated_by,omitempty"`
}

// ProfileHandler serves the universal profile endpoint
type ProfileHandler struct {
	logger *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{logger: logger}
}

// HandleProfile handles GET /profile for any authenticated role
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		_ = utils.WriteUnauthorized(w)
		return
	}
	_ = utils.WriteOK(w, ProfileResponse{
		ID:             claims.Subject,
		Role:           claims.Role,
		ImpersonatedBy: claims.ImpersonatedBy,
	})
}
