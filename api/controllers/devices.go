package controllers

import (
	"net/http"

	"github.com/angelmondragon/authdash-backend/api/responses"
	"github.com/angelmondragon/authdash-backend/api/validators"
	"github.com/angelmondragon/authdash-backend/internal/devices"
	"github.com/angelmondragon/authdash-backend/pkg/logger"
)

// SaveDevice backs both /saveDeviceData and /storeDeviceInfo.
func SaveDevice(svc devices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req devices.Input
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithFields(logg.WithEmail(r.Context(), req.Email), map[string]any{"device_id": req.DeviceID})

		if _, err := svc.Save(ctx, req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, "Device data saved successfully.")
	}
}
