// Package main provides the entry point for issuemesh-cli.
//
// The CLI talks to an issuemesh server:
//
//   - Listing and inspecting issues over the HTTP API
//   - Creating, updating and commenting over the WebSocket protocol
//   - Streaming live changes with watch
//   - Local defaults in ~/.issuemesh/cli.yaml
//
// Usage:
//
//	issuemesh-cli [global flags] command [flags] [args]
//	issuemesh-cli -s localhost:3000 issue list --status open
//	issuemesh-cli -u alice issue create -t "Login broken"
//	issuemesh-cli watch
//
// The CLI supports both single-command mode and an interactive shell.
package main
