package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/paylane/gateway/services"
	"github.com/paylane/gateway/services/clients"
	"github.com/paylane/gateway/utils"
)

// DeviceStatusAPI reports trader device liveness.
type DeviceStatusAPI interface {
	GetStatus(ctx context.Context, deviceID string) (*clients.DeviceStatus, error)
}

// DeviceHandler serves trader device status lookups.
type DeviceHandler struct {
	devices DeviceStatusAPI
	logger  *zap.Logger
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(devices DeviceStatusAPI, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{devices: devices, logger: logger}
}

// HandleGetDeviceStatus handles GET /trader/devices/{id}/status
func (h *DeviceHandler) HandleGetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")
	if deviceID == "" {
		_ = utils.WriteDomainError(w, services.ErrNotFound)
		return
	}

	status, err := h.devices.GetStatus(r.Context(), deviceID)
	if err != nil {
		h.logger.Warn("device status lookup failed",
			zap.String("device_id", deviceID),
			zap.Error(err))
		_ = utils.WriteDomainError(w, err)
		return
	}

	_ = utils.WriteOK(w, status)
}
