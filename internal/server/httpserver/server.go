// Package httpserver serves the issuemesh HTTP API and websocket endpoint.
//
// Routing uses gorilla/mux on top of net/http.
package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Connection timeouts. Write and read body timeouts are left unset since
// websocket connections stay open for as long as the observer watches.
const (
	ReadHeaderTimeout = 10 * time.Second
	IdleTimeout       = 2 * time.Minute
)

// Server owns the listener and the net/http server.
type Server struct {
	srv   *http.Server
	log   *slog.Logger
	errCh chan error
}

// New returns a server for addr. A nil log uses slog.Default.
func New(addr string, h http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: ReadHeaderTimeout,
			IdleTimeout:       IdleTimeout,
			ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		},
		log:   log,
		errCh: make(chan error, 1),
	}
}

// Start binds the address and serves in the background, over TLS when
// tlsConfig is non-nil. tlsConfig must carry the certificate itself
// (Certificates or GetCertificate).
//
// A nil error means the address is bound. A later serve failure is logged
// and sent on Err.
func (s *Server) Start(tlsConfig *tls.Config) (net.Addr, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, err
	}
	if tlsConfig != nil {
		s.srv.TLSConfig = tlsConfig
		ln = tls.NewListener(ln, tlsConfig)
	}

	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		s.log.Error("http server stopped", "error", err)
		s.errCh <- err
	}()
	return ln.Addr(), nil
}

// Err delivers the error that ended serving. Nothing is sent after a
// clean Shutdown.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Shutdown stops accepting connections and waits for active requests
// until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
