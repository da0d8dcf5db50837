// Package main provides the entry point for issuemesh-server.
//
// The server keeps a shared collection of issues in memory and provides:
//
//   - WebSocket endpoint (/ws, and upgrades on /) for observers
//   - Read-only HTTP API, health and readiness checks, Prometheus metrics
//   - A JSON snapshot file rewritten on every change
//   - Git history of the snapshot, optionally pushed to a remote
//
// Usage:
//
//	issuemesh-server [flags]
//	issuemesh-server -config /path/to/config.yaml
//
// Configuration comes from defaults, the optional YAML file and ISSUEMESH_*
// environment variables. PORT and AUTO_PUSH are honored for compatibility
// with existing deployments.
package main
