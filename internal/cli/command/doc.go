// Package command provides CLI command definitions for issuemesh.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, CLI config fallback
//   - issue.go: issue list, get, create, update, comment
//   - watch.go: live event stream
//   - config.go: local CLI configuration
//   - shell.go: interactive mode
//
// Reads go through the HTTP API; changes go through the websocket
// protocol, the same way the browser client makes them, and complete when
// the server's broadcast of the change comes back.
package command
