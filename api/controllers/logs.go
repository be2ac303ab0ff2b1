package controllers

import (
	"net/http"

	"github.com/angelmondragon/authdash-backend/api/responses"
	"github.com/angelmondragon/authdash-backend/internal/auditlog"
	"github.com/angelmondragon/authdash-backend/pkg/logger"
)

// Logs serves the newest audit rows as a bare array.
func Logs(svc auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.Recent(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, entries)
	}
}
