package handlers

import (
	"net/http"

	"github.com/noterag/noterag/internal/api"
	"github.com/noterag/noterag/internal/telemetry"
)

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if api.DomainErrorToHTTP(err) == http.StatusInternalServerError {
		telemetry.CaptureError(r.Context(), err)
	}
	api.HandleError(w, err)
}
