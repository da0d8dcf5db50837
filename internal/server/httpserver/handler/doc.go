// Package handler provides HTTP request handlers for issuemesh.
//
// The HTTP surface is read-only: mutations go through the websocket
// protocol so that every change is broadcast. Endpoints:
//
//   - GET /health: liveness
//   - GET /ready: the issue service accepts requests
//   - GET /api/v1/issues: the current document
//   - GET /api/v1/issues/{id}: a single issue
package handler
