// Package wsserver provides the websocket transport for issuemesh.
package wsserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
	"github.com/yndnr/issuemesh-go/internal/core/service"
	"github.com/yndnr/issuemesh-go/internal/telemetry/logger"
)

// Defaults for Config.
const (
	DefaultSendBuffer      = 64
	DefaultWriteTimeout    = 10 * time.Second
	DefaultPingInterval    = 30 * time.Second
	DefaultMaxMessageBytes = 1 << 20
)

// IssueService is the part of the issue service the transport drives.
type IssueService interface {
	CreateIssue(ctx context.Context, req *service.CreateIssueRequest) (*domain.Issue, error)
	UpdateIssue(ctx context.Context, req *service.UpdateIssueRequest) (*domain.Issue, error)
	AddComment(ctx context.Context, req *service.AddCommentRequest) (*domain.Comment, error)
	Subscribe(ctx context.Context, o domain.Observer) error
	Unsubscribe(ctx context.Context, id string)
}

// Config configures the websocket handler.
type Config struct {
	SendBuffer      int
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	MaxMessageBytes int64

	// AllowedOrigins restricts browser upgrades. Empty allows any origin;
	// requests without an Origin header are always allowed.
	AllowedOrigins []string

	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.SendBuffer <= 0 {
		c.SendBuffer = DefaultSendBuffer
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.PingInterval <= 0 {
		c.PingInterval = DefaultPingInterval
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = DefaultMaxMessageBytes
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Handler upgrades HTTP requests to observer connections.
type Handler struct {
	svc      IssueService
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[string]*Conn
	closed bool
	wg     sync.WaitGroup
}

// New creates a websocket handler.
func New(svc IssueService, cfg Config) *Handler {
	cfg.applyDefaults()
	h := &Handler{
		svc:    svc,
		cfg:    cfg,
		logger: cfg.Logger.With("component", "wsserver"),
		conns:  make(map[string]*Conn),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range h.cfg.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	h.logger.Warn("websocket origin rejected", "origin", origin, "remote_addr", r.RemoteAddr)
	return false
}

// ServeHTTP implements http.Handler. It returns when the connection closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. Refuse new connections once shutdown started
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, domain.ErrServiceUnavailable.Message, http.StatusServiceUnavailable)
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()
	defer h.wg.Done()

	// 2. Upgrade (the upgrader writes the HTTP error itself)
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	c := newConn(ulid.Make().String(), ws, &h.cfg, h.logger)
	ctx := logger.WithObserverID(r.Context(), c.id)

	// 3. Register and queue the init event before any write happens
	subCtx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
	err = h.svc.Subscribe(subCtx, c)
	cancel()
	if err != nil {
		c.logger.Warn("subscribe failed", "error", err)
		_ = c.writeNow(domain.NewErrorEvent(domain.ClientMessage(err)))
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, ""),
			time.Now().Add(h.cfg.WriteTimeout))
		_ = ws.Close()
		return
	}

	h.track(c)
	go c.writePump()
	c.logger.Info("observer connected", "remote_addr", r.RemoteAddr)

	// 4. Serve requests until the peer goes away
	c.readPump(func(data []byte) {
		h.dispatch(ctx, c, data)
	})

	h.svc.Unsubscribe(ctx, c.id)
	c.closeWith(websocket.CloseNormalClosure)
	<-c.writerDone
	h.untrack(c)

	c.logger.Info("observer disconnected")
}

// dispatch runs one client request. Failures are reported to this
// connection only. A request abandoned because ctx ended gets no error
// event: the connection is going away, and the actor may already have
// applied and broadcast the change.
func (h *Handler) dispatch(ctx context.Context, c *Conn, data []byte) {
	req, err := decodeRequest(data)
	if err == nil {
		err = h.execute(ctx, req)
	}
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.logger.Debug("request abandoned", "type", req.Type, "error", err)
		return
	}

	c.logger.Debug("request rejected", "code", domain.GetErrorCode(err), "error", err)
	if sendErr := c.Send(domain.NewErrorEvent(domain.ClientMessage(err))); sendErr != nil {
		c.logger.Debug("error event not delivered", "error", sendErr)
	}
}

func (h *Handler) execute(ctx context.Context, req *decodedRequest) error {
	var err error
	switch req.Type {
	case RequestCreateIssue:
		_, err = h.svc.CreateIssue(ctx, req.Create)
	case RequestUpdateIssue:
		_, err = h.svc.UpdateIssue(ctx, req.Update)
	case RequestAddComment:
		_, err = h.svc.AddComment(ctx, req.Comment)
	}
	return err
}

func (h *Handler) track(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.id] = c
	if h.closed {
		c.closeWith(websocket.CloseGoingAway)
	}
}

func (h *Handler) untrack(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c.id)
}

// Connections returns the number of open connections.
func (h *Handler) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Shutdown closes every connection with a going-away frame and waits for
// their handlers to return. http.Server.Shutdown does not cover hijacked
// connections, so this must be called alongside it.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	for _, c := range h.conns {
		c.closeWith(websocket.CloseGoingAway)
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
