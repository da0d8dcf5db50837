// Package connection provides connection management for issuemesh-cli.
package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/issuemesh-go/internal/infra/buildinfo"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// HTTPClient reads from the server's REST API.
type HTTPClient struct {
	base   string
	client *http.Client
}

// NewHTTPClient returns a client for server, which may omit the scheme.
func NewHTTPClient(server string, opts ...Option) *HTTPClient {
	return &HTTPClient{
		base: BaseURL(server),
		client: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: applyOptions(opts).transport(),
		},
	}
}

// BaseURL turns a server address into an http(s) URL with no trailing
// slash. Plain host:port addresses get http.
func BaseURL(server string) string {
	u := strings.TrimRight(server, "/")
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "http://" + u
}

// BaseURL returns the normalized server URL.
func (c *HTTPClient) BaseURL() string {
	return c.base
}

// Get sends a GET for path, which starts with "/".
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent("issuemesh-cli"))
	return c.client.Do(req)
}

// APIError is an error envelope returned by the REST API.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

// ParseResponse closes resp.Body and decodes the envelope's data into
// target, which may be nil. Error statuses become an *APIError.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, RequestID: resp.Header.Get("X-Request-ID")}
		if decodeErr == nil && env.Code != "" {
			apiErr.Code, apiErr.Message = env.Code, env.Message
			if env.RequestID != "" {
				apiErr.RequestID = env.RequestID
			}
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("parse response: %w", decodeErr)
	}
	if target == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("parse response data: %w", err)
	}
	return nil
}
