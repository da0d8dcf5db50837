package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

// IssueReader reads the current state.
type IssueReader interface {
	Snapshot(ctx context.Context) (*domain.Document, error)
}

// Handler serves the HTTP endpoints. Routing lives in httpserver.
type Handler struct {
	issues IssueReader
	logger *slog.Logger
}

// New creates a Handler. A nil logger means slog.Default().
func New(issues IssueReader, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{issues: issues, logger: logger.With("component", "http")}
}

// fail logs errors outside the domain taxonomy on the handler's logger and
// writes the error response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !domain.IsDomainError(err, "") {
		h.logger.ErrorContext(r.Context(), "internal error", "path", r.URL.Path, "error", err)
		err = domain.ErrInternalServer
	}
	WriteError(w, r, err)
}
