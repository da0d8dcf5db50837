// Package config defines the server configuration structure.
package config

import (
	"net"
	"strings"
)

// Legacy environment variables understood for compatibility with existing
// deployments.
const (
	LegacyEnvPort     = "PORT"
	LegacyEnvAutoPush = "AUTO_PUSH"
)

// ApplyLegacyEnv maps PORT and AUTO_PUSH onto cfg. A legacy variable is
// ignored when explicit(key) reports that the koanf key it feeds was set by
// a prefixed variable or a flag. lookup is usually os.LookupEnv.
func ApplyLegacyEnv(cfg *ServerConfig, explicit func(key string) bool, lookup func(string) (string, bool)) {
	if port, ok := lookup(LegacyEnvPort); ok && port != "" && !explicit("server.http.addr") {
		host, _, err := net.SplitHostPort(cfg.Server.HTTP.Addr)
		if err != nil {
			host = ""
		}
		cfg.Server.HTTP.Addr = net.JoinHostPort(host, port)
	}

	if v, ok := lookup(LegacyEnvAutoPush); ok && !explicit("history.auto_push") {
		cfg.History.AutoPush = strings.ToLower(strings.TrimSpace(v)) != "false"
	}
}
