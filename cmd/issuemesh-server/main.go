// Package main provides the entry point for issuemesh-server.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yndnr/issuemesh-go/internal/core/hub"
	"github.com/yndnr/issuemesh-go/internal/core/service"
	"github.com/yndnr/issuemesh-go/internal/history"
	"github.com/yndnr/issuemesh-go/internal/infra/buildinfo"
	"github.com/yndnr/issuemesh-go/internal/infra/confloader"
	"github.com/yndnr/issuemesh-go/internal/infra/fswatch"
	"github.com/yndnr/issuemesh-go/internal/infra/shutdown"
	"github.com/yndnr/issuemesh-go/internal/infra/tlsroots"
	"github.com/yndnr/issuemesh-go/internal/server/config"
	"github.com/yndnr/issuemesh-go/internal/server/httpserver"
	"github.com/yndnr/issuemesh-go/internal/server/wsserver"
	"github.com/yndnr/issuemesh-go/internal/storage/memory"
	"github.com/yndnr/issuemesh-go/internal/storage/snapshot"
	"github.com/yndnr/issuemesh-go/internal/telemetry/logger"
	"github.com/yndnr/issuemesh-go/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command line flags
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		listenAddr  = flag.String("addr", "", "Listen address, overrides server.http.addr")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("issuemesh-server %s\n", buildinfo.String())
		return nil
	}

	// 1. Configuration
	src := configSource{file: *configFile}
	if *listenAddr != "" {
		src.overrides = map[string]any{"server.http.addr": *listenAddr}
	}
	cfg, changed, err := src.load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Logger
	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting issuemesh-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg), "changed", changed)

	// 3. Metrics
	var metrics *metric.Registry
	if cfg.Metrics.Enabled {
		metrics = metric.NewRegistry()
	}

	// 4. Snapshot and store
	snapshots, err := snapshot.NewManager(snapshot.Config{
		Path:       cfg.Storage.SnapshotPath,
		StrictLoad: cfg.Storage.StrictLoad,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("init snapshot: %w", err)
	}
	doc, err := snapshots.Load()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	store := memory.New(doc)
	log.Info("snapshot loaded",
		"path", snapshots.Path(),
		"issues", store.Len(),
		"next_id", store.NextID())

	// 5. History
	recorder := initHistory(cfg, log, metrics)

	// 6. Service
	observers := hub.New(log)
	svc := service.NewIssueService(store, snapshots, observers,
		service.WithReloader(snapshots),
		service.WithHistory(recorder),
		service.WithLogger(log),
		service.WithMetrics(metrics),
	)
	svc.Start()

	if metrics != nil {
		if err := metrics.Register(metric.NewCollector(svc.Stats)); err != nil {
			return fmt.Errorf("register collector: %w", err)
		}
	}

	// 7. Transport
	ws := wsserver.New(svc, wsserver.Config{
		SendBuffer:      cfg.Server.WebSocket.SendBuffer,
		WriteTimeout:    cfg.Server.WebSocket.WriteTimeout,
		PingInterval:    cfg.Server.WebSocket.PingInterval,
		MaxMessageBytes: cfg.Server.WebSocket.MaxMessageBytes,
		AllowedOrigins:  cfg.Server.HTTP.AllowedOrigins,
		Logger:          log,
	})

	routerCfg := httpserver.DefaultRouterConfig()
	routerCfg.Issues = svc
	routerCfg.WebSocket = ws
	routerCfg.Metrics = metrics
	routerCfg.MetricsPath = cfg.Metrics.Path
	routerCfg.StaticDir = cfg.Server.HTTP.StaticDir
	routerCfg.Logger = log
	routerCfg.CORSAllowedOrigins = cfg.Server.HTTP.AllowedOrigins
	routerCfg.RateLimit = cfg.Server.HTTP.RateLimit
	routerCfg.RateBurst = cfg.Server.HTTP.RateBurst
	routerCfg.TrustProxyHeaders = cfg.Server.HTTP.TrustProxy

	keypair, err := initTLS(cfg, log)
	if err != nil {
		return err
	}
	var tlsConfig *tls.Config
	if keypair != nil {
		tlsConfig = keypair.ServerConfig()
	}

	httpServer := httpserver.New(cfg.Server.HTTP.Addr, httpserver.NewRouter(routerCfg), log)
	addr, err := httpServer.Start(tlsConfig)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.HTTP.Addr, err)
	}
	log.Info("HTTP server listening",
		"addr", addr.String(),
		"tls", tlsConfig != nil)

	// 8. File watchers
	watcher, err := initWatcher(cfg, src, svc, keypair, log)
	if err != nil {
		// Watching is a convenience; the server works without it.
		log.Warn("file watching disabled", "error", err)
	}

	// Steps run newest first: stop accepting work, then flush state.
	stopper := shutdown.New(shutdownTimeout, shutdown.WithLogger(log))
	stopper.Register("history", recorder.Close)
	stopper.Register("issue_service", svc.Stop)
	if watcher != nil {
		stopper.Register("fswatch", func(context.Context) error {
			return watcher.Stop()
		})
	}
	stopper.Register("http", httpServer.Shutdown)
	stopper.Register("websocket", ws.Shutdown)

	go func() {
		if err := <-httpServer.Err(); err != nil {
			stopper.Stop(err.Error())
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := stopper.Wait(context.Background()); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// configSource records how the configuration was assembled so a reload
// applies the same file and flag overrides.
type configSource struct {
	file      string
	overrides map[string]any
}

// load builds the configuration from defaults, file, environment and flags.
// changed lists the keys set above the defaults as "key=source".
func (s configSource) load() (cfg *config.ServerConfig, changed []string, err error) {
	cfg = config.Default()

	opts := []confloader.Option{
		confloader.WithDefaults(cfg),
		confloader.WithStrictKeys(),
		confloader.WithOverrides(s.overrides),
	}
	if s.file != "" {
		opts = append(opts, confloader.WithConfigFile(s.file))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	config.ApplyLegacyEnv(cfg, func(key string) bool {
		src, _ := loader.Origin(key)
		return src == confloader.SourceEnv || src == confloader.SourceOverride
	}, os.LookupEnv)

	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader.Changed(), nil
}

// initLogger initializes the structured logger and makes it the default.
func initLogger(cfg *config.ServerConfig) (*slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  os.Stdout,
		Service: "issuemesh-server",
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)
	return log, nil
}

// initHistory opens the git recorder. Failing to open the repository only
// disables history.
func initHistory(cfg *config.ServerConfig, log *slog.Logger, metrics *metric.Registry) history.Recorder {
	if !cfg.History.Enabled {
		log.Info("history disabled")
		return history.Nop{}
	}

	rec, err := history.NewGitRecorder(history.GitConfig{
		Path:         cfg.Storage.SnapshotPath,
		RepoDir:      cfg.History.RepoDir,
		Init:         cfg.History.Init,
		AutoPush:     cfg.History.AutoPush,
		Remote:       cfg.History.Remote,
		RemoteURL:    cfg.History.RemoteURL,
		PushTimeout:  cfg.History.PushTimeout,
		PushInterval: cfg.History.PushInterval,
		QueueSize:    cfg.History.QueueSize,
		AuthorName:   cfg.History.AuthorName,
		AuthorEmail:  cfg.History.AuthorEmail,
		Logger:       log,
		Metrics:      metrics,
	})
	if err != nil {
		log.Warn("history unavailable, changes will not be versioned", "error", err)
		return history.Nop{}
	}
	return rec
}

// initTLS loads the server key pair. It returns nil when TLS is off.
func initTLS(cfg *config.ServerConfig, log *slog.Logger) (*tlsroots.Keypair, error) {
	if cfg.Server.HTTP.TLSCertFile == "" {
		return nil, nil
	}
	keypair, err := tlsroots.LoadKeypair(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile, log)
	if err != nil {
		return nil, fmt.Errorf("tls: %w", err)
	}
	return keypair, nil
}

// initWatcher watches the snapshot for out-of-band edits, the config file
// for log level changes and the TLS key pair for renewals. It returns nil
// when nothing is watched.
func initWatcher(cfg *config.ServerConfig, src configSource, svc *service.IssueService, keypair *tlsroots.Keypair, log *slog.Logger) (*fswatch.Watcher, error) {
	if !cfg.Storage.Watch && src.file == "" && keypair == nil {
		return nil, nil
	}

	w, err := fswatch.New(fswatch.WithLogger(log))
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Watch {
		err := w.Watch(cfg.Storage.SnapshotPath, func(string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_, _ = svc.Resync(ctx)
		})
		if err != nil {
			_ = w.Stop()
			return nil, err
		}
	}

	if src.file != "" {
		err := w.Watch(src.file, func(path string) {
			reloaded, _, err := src.load()
			if err != nil {
				log.Warn("config reload rejected", "path", path, "error", err)
				return
			}
			prev := logger.GetLevel()
			if err := logger.SetLevel(reloaded.Log.Level); err != nil {
				log.Warn("log level not changed", "error", err)
				return
			}
			if cur := logger.GetLevel(); cur != prev {
				log.Info("log level changed", "from", prev, "to", cur)
			}
		})
		if err != nil {
			_ = w.Stop()
			return nil, err
		}
	}

	if keypair != nil {
		// Either file may be replaced first; a mismatched pair fails to
		// load and the next event retries.
		for _, path := range []string{keypair.CertFile(), keypair.KeyFile()} {
			if err := w.Watch(path, func(string) { _ = keypair.Reload() }); err != nil {
				_ = w.Stop()
				return nil, err
			}
		}
	}

	w.Start()
	return w, nil
}
