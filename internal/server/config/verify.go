// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/yndnr/issuemesh-go/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyHistory(&cfg.History); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr %q: %w", cfg.HTTP.Addr, err)
	}

	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	for _, f := range []string{cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("tls file: %w", err)
		}
	}

	if cfg.HTTP.RateLimit < 0 {
		return errors.New("server.http.rate_limit must not be negative")
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.RateBurst < 1 {
		return errors.New("server.http.rate_burst must be at least 1 when rate_limit is set")
	}

	if dir := cfg.HTTP.StaticDir; dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("server.http.static_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("server.http.static_dir %q is not a directory", dir)
		}
	}

	ws := cfg.WebSocket
	if ws.SendBuffer < 1 {
		return errors.New("server.websocket.send_buffer must be at least 1")
	}
	if ws.WriteTimeout <= 0 {
		return errors.New("server.websocket.write_timeout must be positive")
	}
	if ws.PingInterval <= 0 {
		return errors.New("server.websocket.ping_interval must be positive")
	}
	if ws.MaxMessageBytes < 1024 {
		return errors.New("server.websocket.max_message_bytes must be at least 1024")
	}

	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.SnapshotPath == "" {
		return errors.New("storage.snapshot_path is required")
	}

	// Check if the snapshot directory exists or can be created
	if err := os.MkdirAll(filepath.Dir(cfg.SnapshotPath), 0750); err != nil {
		return errors.New("cannot create snapshot directory: " + err.Error())
	}

	return nil
}

func verifyHistory(cfg *HistorySection) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.QueueSize < 1 {
		return errors.New("history.queue_size must be at least 1")
	}
	if cfg.PushTimeout <= 0 {
		return errors.New("history.push_timeout must be positive")
	}
	if cfg.PushInterval < 0 {
		return errors.New("history.push_interval must not be negative")
	}
	if cfg.AutoPush && cfg.Remote == "" {
		return errors.New("history.remote is required when auto_push is enabled")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format %q must be json or text", cfg.Format)
	}
	return nil
}
