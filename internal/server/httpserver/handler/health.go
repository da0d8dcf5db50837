package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
	"github.com/yndnr/issuemesh-go/internal/infra/buildinfo"
)

// readyTimeout bounds the readiness check's round trip through the service.
const readyTimeout = 2 * time.Second

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, r, map[string]string{
		"status":  "healthy",
		"version": buildinfo.Get().Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready. The service is ready when its actor answers.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if _, err := h.issues.Snapshot(ctx); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		WriteError(w, r, domain.ErrServiceUnavailable)
		return
	}

	h.writeData(w, r, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
