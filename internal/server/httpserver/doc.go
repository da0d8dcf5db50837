// Package httpserver provides the HTTP/HTTPS server for issuemesh.
//
// Routes (gorilla/mux):
//
//   - /ws and / (upgrade): websocket observers, see internal/server/wsserver
//   - /api/v1/issues, /api/v1/issues/{id}: read-only issue API
//   - /health, /ready, /metrics
//   - / (plain GET): optional static assets
//
// Middleware chain: Recover, RequestID, Audit, then RateLimit and CORS on
// the routes that use them.
package httpserver
