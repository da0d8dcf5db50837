// Package connection provides connection management for issuemesh-cli.
package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
	"github.com/yndnr/issuemesh-go/internal/infra/buildinfo"
)

// Request types understood by the server.
const (
	RequestCreateIssue = "create_issue"
	RequestUpdateIssue = "update_issue"
	RequestAddComment  = "add_comment"
)

// WebSocketPath is the observer endpoint.
const WebSocketPath = "/ws"

// ErrUnexpectedEvent is returned when the server does not open with init.
var ErrUnexpectedEvent = errors.New("connection: unexpected event")

// ServerError is an error event received from the server. Error events
// are only ever sent to the client whose request failed.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server: " + e.Message
}

// CreateIssue is the create_issue payload.
type CreateIssue struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"`
}

// UpdateIssue is the update_issue payload.
type UpdateIssue struct {
	ID        int64              `json:"id"`
	Fields    domain.IssueFields `json:"fields"`
	UpdatedBy string             `json:"updatedBy,omitempty"`
}

// AddComment is the add_comment payload.
type AddComment struct {
	ID      int64 `json:"id"`
	Comment struct {
		Author string `json:"author,omitempty"`
		Text   string `json:"text"`
	} `json:"comment"`
}

type request struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// WSClient is an observer connection to the server.
type WSClient struct {
	conn *websocket.Conn
	init *domain.Document

	writeMu sync.Mutex
}

// WebSocketURL maps a server address to its observer endpoint:
// http becomes ws, https becomes wss. ws and wss URLs are used as given.
func WebSocketURL(server string) string {
	s := strings.TrimRight(server, "/")
	switch {
	case strings.HasPrefix(s, "ws://"), strings.HasPrefix(s, "wss://"):
		return s
	case strings.HasPrefix(s, "https://"):
		return "wss://" + strings.TrimPrefix(s, "https://") + WebSocketPath
	default:
		return "ws://" + strings.TrimPrefix(s, "http://") + WebSocketPath
	}
}

// DialWS connects to the server and waits for the init snapshot.
func DialWS(ctx context.Context, server string, opts ...Option) (*WSClient, error) {
	o := applyOptions(opts)
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: DefaultTimeout,
		TLSClientConfig:  o.tlsConfig,
	}

	url := WebSocketURL(server)
	header := http.Header{"User-Agent": []string{buildinfo.UserAgent("issuemesh-cli")}}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connect %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("connect %s: %w", url, err)
	}

	c := &WSClient{conn: conn}
	ev, err := c.Next(ctx)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	switch {
	case ev.Type == domain.EventError:
		_ = conn.Close()
		return nil, &ServerError{Message: ev.Message}
	case ev.Type != domain.EventInit || ev.Data == nil:
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %s before init", ErrUnexpectedEvent, ev.Type)
	}
	c.init = ev.Data
	return c, nil
}

// Init returns the snapshot received on connect.
func (c *WSClient) Init() *domain.Document {
	return c.init
}

// Send writes one request.
func (c *WSClient) Send(ctx context.Context, typ string, payload any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}
	_ = c.conn.SetWriteDeadline(deadline)

	if err := c.conn.WriteJSON(request{Type: typ, Payload: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

// Next reads the next event. It returns when ctx ends.
func (c *WSClient) Next(ctx context.Context) (domain.Event, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	var ev domain.Event
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return ev, ctx.Err()
		}
		return ev, fmt.Errorf("read: %w", err)
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}

// Await reads events until match accepts one or the server reports an
// error. Events that do not match belong to other clients and are skipped.
func (c *WSClient) Await(ctx context.Context, match func(domain.Event) bool) (domain.Event, error) {
	for {
		ev, err := c.Next(ctx)
		if err != nil {
			return ev, err
		}
		if ev.Type == domain.EventError {
			return ev, &ServerError{Message: ev.Message}
		}
		if match(ev) {
			return ev, nil
		}
	}
}

// Close sends a normal close frame and closes the connection.
func (c *WSClient) Close() error {
	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}
