// Package buildinfo reports which build of issuemesh is running.
//
// Release builds stamp the version with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/issuemesh-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Binaries built from a checkout or with go install fall back to the VCS
// revision and module version recorded by the toolchain. The server logs
// it at startup and serves it from /health; the CLI sends it as its
// User-Agent.
package buildinfo
