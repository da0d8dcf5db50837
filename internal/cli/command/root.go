// Package command provides CLI command definitions for issuemesh-cli.
//
// It uses urfave/cli/v2 for command parsing and supports both
// single-command mode and interactive shell mode.
package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/issuemesh-go/internal/cli/config"
	"github.com/yndnr/issuemesh-go/internal/cli/connection"
	"github.com/yndnr/issuemesh-go/internal/cli/output"
	"github.com/yndnr/issuemesh-go/internal/infra/buildinfo"
	"github.com/yndnr/issuemesh-go/internal/infra/tlsroots"
)

const (
	metaConfig     = "cliConfig"
	defaultTimeout = 30 * time.Second
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:     "issuemesh-cli",
		Usage:    "issuemesh command-line client",
		Version:  buildinfo.String(),
		Flags:    globalFlags(),
		Metadata: map[string]any{},
		Commands: []*cli.Command{
			IssueCommand(),
			WatchCommand(),
			ConfigCommand(),
			ShellCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("cli config: %w", err)
			}
			c.App.Metadata[metaConfig] = cfg
			return nil
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "issuemesh server address (default from CLI config, else " + config.DefaultServer + ")",
			EnvVars: []string{"ISSUEMESH_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			EnvVars: []string{"ISSUEMESH_OUTPUT"},
		},
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Usage:   "Name recorded as creator, updater or comment author",
			EnvVars: []string{"ISSUEMESH_USER"},
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:  "no-headers",
			Usage: "Omit the header row of tables",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Time limit for one request",
			Value: defaultTimeout,
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM file with extra CA certificates for https servers",
			EnvVars: []string{"ISSUEMESH_CA_FILE"},
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file",
			EnvVars: []string{"ISSUEMESH_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
	}
}

// GlobalFlags holds the resolved global options.
type GlobalFlags struct {
	Server    string
	User      string
	Output    output.Format
	Wide      bool
	NoHeaders bool
	Timeout   time.Duration
	CAFile    string
}

// ParseGlobalFlags resolves global flags, falling back to the CLI config
// for anything not given on the command line or in the environment.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg := cliConfig(c)

	flags := &GlobalFlags{
		Server:    firstNonEmpty(c.String("server"), cfg.Server, config.DefaultServer),
		User:      firstNonEmpty(c.String("user"), cfg.User),
		Wide:      c.Bool("wide"),
		NoHeaders: c.Bool("no-headers"),
		Timeout:   c.Duration("timeout"),
		CAFile:    firstNonEmpty(c.String("ca-file"), cfg.CAFile),
	}
	if flags.Timeout <= 0 {
		flags.Timeout = defaultTimeout
	}

	format, err := output.ParseFormat(firstNonEmpty(c.String("output"), cfg.Output))
	if err != nil {
		return nil, err
	}
	flags.Output = format
	return flags, nil
}

// Printer returns the printer for the selected output.
func (f *GlobalFlags) Printer() output.Printer {
	return output.Printer{Format: f.Output, Wide: f.Wide, NoHeaders: f.NoHeaders}
}

// connOptions returns the connection options for the server.
func (f *GlobalFlags) connOptions() ([]connection.Option, error) {
	tlsConfig, err := tlsroots.ClientConfig(f.CAFile)
	if err != nil {
		return nil, err
	}
	return []connection.Option{connection.WithTLSConfig(tlsConfig)}, nil
}

// requestContext bounds one command by the --timeout flag.
func (f *GlobalFlags) requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, f.Timeout)
}

func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
