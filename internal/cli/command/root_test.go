package command

import (
	"flag"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/issuemesh-go/internal/cli/config"
	"github.com/yndnr/issuemesh-go/internal/cli/output"
)

func TestApp(t *testing.T) {
	app := App()

	if app.Name != "issuemesh-cli" {
		t.Errorf("Name = %q, want issuemesh-cli", app.Name)
	}
	if app.Version == "" {
		t.Error("Version should not be empty")
	}

	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	for _, want := range []string{"issue", "watch", "config", "shell"} {
		if !slices.Contains(names, want) {
			t.Errorf("command %q not registered (have %v)", want, names)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	want := []string{"server", "output", "user", "wide", "timeout", "config"}

	var have []string
	for _, f := range globalFlags() {
		have = append(have, f.Names()[0])
	}
	for _, name := range want {
		if !slices.Contains(have, name) {
			t.Errorf("global flag %q missing (have %v)", name, have)
		}
	}
}

// newContext builds a cli.Context with the global flags parsed from args
// and cfg installed as the loaded CLI config.
func newContext(t *testing.T, cfg *config.CLIConfig, args ...string) *cli.Context {
	t.Helper()

	app := App()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range globalFlags() {
		if err := f.Apply(set); err != nil {
			t.Fatal(err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatal(err)
	}
	if cfg != nil {
		app.Metadata[metaConfig] = cfg
	}
	return cli.NewContext(app, set, nil)
}

func TestParseGlobalFlags(t *testing.T) {
	stored := &config.CLIConfig{Server: "stored:4000", Output: "yaml", User: "carol"}

	tests := []struct {
		name       string
		cfg        *config.CLIConfig
		args       []string
		wantServer string
		wantUser   string
		wantOutput output.Format
		wantErr    bool
	}{
		{
			name:       "defaults",
			wantServer: config.DefaultServer,
			wantOutput: output.FormatTable,
		},
		{
			name:       "from cli config",
			cfg:        stored,
			wantServer: "stored:4000",
			wantUser:   "carol",
			wantOutput: output.FormatYAML,
		},
		{
			name:       "flags win",
			cfg:        stored,
			args:       []string{"--server", "flag:5000", "-u", "dave", "-o", "json"},
			wantServer: "flag:5000",
			wantUser:   "dave",
			wantOutput: output.FormatJSON,
		},
		{
			name:    "bad output",
			args:    []string{"--output", "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, err := ParseGlobalFlags(newContext(t, tt.cfg, tt.args...))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGlobalFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if flags.Server != tt.wantServer {
				t.Errorf("Server = %q, want %q", flags.Server, tt.wantServer)
			}
			if flags.User != tt.wantUser {
				t.Errorf("User = %q, want %q", flags.User, tt.wantUser)
			}
			if flags.Output != tt.wantOutput {
				t.Errorf("Output = %q, want %q", flags.Output, tt.wantOutput)
			}
			if flags.Timeout != defaultTimeout {
				t.Errorf("Timeout = %v, want %v", flags.Timeout, defaultTimeout)
			}
		})
	}
}

func TestParseGlobalFlags_Timeout(t *testing.T) {
	flags, err := ParseGlobalFlags(newContext(t, nil, "--timeout", "2s", "--wide", "--no-headers"))
	if err != nil {
		t.Fatal(err)
	}
	if flags.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", flags.Timeout)
	}
	if !flags.Wide {
		t.Error("Wide should be set")
	}
	if p := flags.Printer(); !p.Wide || !p.NoHeaders || p.Format != output.FormatTable {
		t.Errorf("Printer() = %+v", p)
	}
}

func TestCommandPaths(t *testing.T) {
	paths := commandPaths(App().Commands)

	for _, want := range []string{"issue list", "issue create", "issue comment", "watch", "config set"} {
		if !slices.Contains(paths, want) {
			t.Errorf("path %q missing from %v", want, paths)
		}
	}
	for _, p := range paths {
		if p == "shell" {
			t.Error("shell should not be offered inside the shell")
		}
	}
}

func TestApp_BadCLIConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := writeFile(path, "server: [unterminated"); err != nil {
		t.Fatal(err)
	}

	app := App()
	app.Writer = &discard{}
	err := app.Run([]string{"issuemesh-cli", "--config", path, "config", "show"})
	if err == nil {
		t.Error("expected an error for a malformed CLI config")
	}
}

func TestPrintError(t *testing.T) {
	// Writes to stderr; only check it does not panic.
	PrintError("test error: %s", "message")
	PrintError("simple error")
}

func TestConnOptions(t *testing.T) {
	flags := &GlobalFlags{}
	opts, err := flags.connOptions()
	if err != nil || len(opts) != 1 {
		t.Errorf("connOptions() = %d options, %v", len(opts), err)
	}

	flags.CAFile = "/nonexistent/ca.pem"
	if _, err := flags.connOptions(); err == nil {
		t.Error("connOptions() expected error for a missing CA file")
	}
}
