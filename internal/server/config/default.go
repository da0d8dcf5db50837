// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr  = "127.0.0.1:3000"
	DefaultRateBurst = 20

	DefaultSendBuffer      = 64
	DefaultWriteTimeout    = 10 * time.Second
	DefaultPingInterval    = 30 * time.Second
	DefaultMaxMessageBytes = 1 << 20

	DefaultSnapshotPath = "issues.json"

	DefaultHistoryRemote      = "origin"
	DefaultHistoryQueueSize   = 256
	DefaultHistoryPushTimeout = 30 * time.Second
	DefaultHistoryAuthorName  = "issuemesh"
	DefaultHistoryAuthorEmail = "issuemesh@localhost"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath = "/metrics"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:      DefaultHTTPAddr,
				RateBurst: DefaultRateBurst,
			},
			WebSocket: WebSocketConfig{
				SendBuffer:      DefaultSendBuffer,
				WriteTimeout:    DefaultWriteTimeout,
				PingInterval:    DefaultPingInterval,
				MaxMessageBytes: DefaultMaxMessageBytes,
			},
		},
		Storage: StorageSection{
			SnapshotPath: DefaultSnapshotPath,
			Watch:        true,
		},
		History: HistorySection{
			Enabled:     true,
			AutoPush:    true,
			Remote:      DefaultHistoryRemote,
			QueueSize:   DefaultHistoryQueueSize,
			PushTimeout: DefaultHistoryPushTimeout,
			AuthorName:  DefaultHistoryAuthorName,
			AuthorEmail: DefaultHistoryAuthorEmail,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
	}
}
