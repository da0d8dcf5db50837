// Package config defines the server configuration structure.
package config

import (
	"slices"

	"github.com/yndnr/issuemesh-go/internal/telemetry/logger"
)

// Sanitize returns a copy of cfg safe to log: credentials in the history
// remote URL are masked and slices are cloned.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	out := *cfg
	out.Server.HTTP.AllowedOrigins = slices.Clone(cfg.Server.HTTP.AllowedOrigins)
	out.History.RemoteURL = logger.RedactString(cfg.History.RemoteURL)
	return &out
}
