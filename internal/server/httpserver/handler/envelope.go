package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
	"github.com/yndnr/issuemesh-go/internal/telemetry/logger"
)

// CodeOK is the envelope code of every successful response.
const CodeOK = "OK"

// Envelope wraps every JSON body the server writes. /metrics is the only
// endpoint that does not use it.
type Envelope struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// IssueList is the data of GET /api/v1/issues.
type IssueList struct {
	NextID int64           `json:"nextId"`
	Count  int             `json:"count"`
	Issues []*domain.Issue `json:"issues"`
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env Envelope) error {
	env.RequestID = logger.RequestIDFromContext(r.Context())
	env.Timestamp = time.Now().UnixMilli()

	w.Header().Set("Content-Type", "application/json")
	if env.Code != CodeOK {
		w.Header().Set("X-Error-Code", env.Code)
	}
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(env)
}

func (h *Handler) writeData(w http.ResponseWriter, r *http.Request, data any) {
	err := writeEnvelope(w, r, http.StatusOK, Envelope{Code: CodeOK, Message: "Success", Data: data})
	if err != nil {
		h.logger.DebugContext(r.Context(), "response not written", "error", err)
	}
}

// WriteError answers with the status and code of err. Errors outside the
// domain taxonomy are logged and reported as internal errors.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := domain.AsDomainError(err)
	if !ok {
		slog.Default().ErrorContext(r.Context(), "internal error", "path", r.URL.Path, "error", err)
		de = domain.ErrInternalServer
	}
	_ = writeEnvelope(w, r, de.Status(), Envelope{Code: de.Code, Message: de.ClientMessage()})
}
