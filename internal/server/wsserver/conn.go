// Package wsserver provides the websocket transport for issuemesh.
package wsserver

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

// Connection errors returned by Conn.Send.
var (
	ErrConnClosed     = errors.New("wsserver: connection closed")
	ErrSendBufferFull = errors.New("wsserver: send buffer full")
)

// Conn is a websocket observer. Send never blocks: events are queued for
// the write pump, and a full queue closes the connection.
type Conn struct {
	id     string
	ws     *websocket.Conn
	cfg    *Config
	logger *slog.Logger

	send chan domain.Event

	closeOnce  sync.Once
	closeCode  int
	done       chan struct{}
	writerDone chan struct{}
}

func newConn(id string, ws *websocket.Conn, cfg *Config, logger *slog.Logger) *Conn {
	return &Conn{
		id:         id,
		ws:         ws,
		cfg:        cfg,
		logger:     logger.With("observer_id", id),
		send:       make(chan domain.Event, cfg.SendBuffer),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

// ID implements domain.Observer.
func (c *Conn) ID() string {
	return c.id
}

// Send implements domain.Observer.
func (c *Conn) Send(ev domain.Event) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- ev:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		c.logger.Warn("send buffer full, closing slow connection", "buffer", cap(c.send))
		c.closeWith(websocket.CloseTryAgainLater)
		return ErrSendBufferFull
	}
}

// Done is closed once the connection starts closing.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// closeWith starts closing the connection. The first code wins; the write
// pump sends it in the close frame.
func (c *Conn) closeWith(code int) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		close(c.done)
	})
}

// readTimeout is how long the peer may stay silent, pongs included.
func (c *Conn) readTimeout() time.Duration {
	return c.cfg.PingInterval + c.cfg.WriteTimeout
}

// readPump delivers client frames to handle until the connection fails or
// is closed.
func (c *Conn) readPump(handle func(data []byte)) {
	c.ws.SetReadLimit(c.cfg.MaxMessageBytes)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.readTimeout()))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.readTimeout()))
	})

	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(c.readTimeout()))

		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		handle(data)
	}
}

// writePump owns all writes to the socket.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
		close(c.writerDone)
	}()

	for {
		select {
		case ev := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.ws.WriteJSON(ev); err != nil {
				c.logger.Debug("websocket write failed", "event", ev.Type, "error", err)
				c.closeWith(websocket.CloseAbnormalClosure)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("websocket ping failed", "error", err)
				c.closeWith(websocket.CloseAbnormalClosure)
				return
			}

		case <-c.done:
			if c.closeCode != websocket.CloseAbnormalClosure {
				msg := websocket.FormatCloseMessage(c.closeCode, "")
				_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.cfg.WriteTimeout))
			}
			return
		}
	}
}

// writeNow writes ev directly. Only valid before the write pump starts.
func (c *Conn) writeNow(ev domain.Event) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.ws.WriteJSON(ev)
}
