// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for issuemesh-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	History HistorySection `koanf:"history"`
	Log     LogSection     `koanf:"log"`
	Metrics MetricsSection `koanf:"metrics"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP      HTTPConfig      `koanf:"http"`
	WebSocket WebSocketConfig `koanf:"websocket"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// RateLimit is the per-IP request rate (requests/second). Zero disables it.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// TrustProxy takes client IPs from X-Forwarded-For / X-Real-IP for
	// rate limiting and audit logs. Only safe behind a reverse proxy.
	TrustProxy bool `koanf:"trust_proxy"`

	// AllowedOrigins restricts websocket upgrades by Origin header.
	// Empty allows any origin.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// StaticDir is served on / for browsers. Empty serves nothing.
	StaticDir string `koanf:"static_dir"`
}

// WebSocketConfig configures observer connections.
type WebSocketConfig struct {
	// SendBuffer is the number of events queued per connection before the
	// connection is dropped as too slow.
	SendBuffer      int           `koanf:"send_buffer"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	PingInterval    time.Duration `koanf:"ping_interval"`
	MaxMessageBytes int64         `koanf:"max_message_bytes"`
}

// StorageSection configures the snapshot file.
type StorageSection struct {
	SnapshotPath string `koanf:"snapshot_path"`

	// StrictLoad refuses to start on a corrupt snapshot instead of
	// quarantining it and starting empty.
	StrictLoad bool `koanf:"strict_load"`

	// Watch reloads the snapshot when it is edited out of band.
	Watch bool `koanf:"watch"`
}

// HistorySection configures the git version history.
type HistorySection struct {
	Enabled bool `koanf:"enabled"`

	// RepoDir defaults to the directory holding the snapshot.
	RepoDir string `koanf:"repo_dir"`
	Init    bool   `koanf:"init"`

	AutoPush     bool          `koanf:"auto_push"`
	Remote       string        `koanf:"remote"`
	RemoteURL    string        `koanf:"remote_url"`
	QueueSize    int           `koanf:"queue_size"`
	PushTimeout  time.Duration `koanf:"push_timeout"`
	PushInterval time.Duration `koanf:"push_interval"`

	AuthorName  string `koanf:"author_name"`
	AuthorEmail string `koanf:"author_email"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}
