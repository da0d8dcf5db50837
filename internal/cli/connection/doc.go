// Package connection provides the issuemesh-cli clients for a server.
//
//   - http.go: read-only HTTP API client (/api/v1, /health)
//   - ws.go: websocket observer client used for mutations and watching
//
// The websocket client speaks the same protocol as the browser client: it
// receives init on connect, sends create_issue, update_issue and
// add_comment, and reads the broadcast that follows.
package connection
