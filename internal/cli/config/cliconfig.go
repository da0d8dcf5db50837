// Package config defines the CLI configuration structure.
package config

// CLIConfig is the configuration for issuemesh-cli.
// Flags and ISSUEMESH_* environment variables override it.
type CLIConfig struct {
	// Server is the default server address.
	Server string `json:"server" yaml:"server"`

	// Output is the default format: table, json or yaml.
	Output string `json:"output" yaml:"output"`

	// User is recorded as author, creator or updater of changes.
	User string `json:"user,omitempty" yaml:"user,omitempty"`

	// CAFile is a PEM bundle trusted in addition to the system roots when
	// the server uses https.
	CAFile string `json:"ca_file,omitempty" yaml:"ca_file,omitempty"`
}

// Defaults for CLIConfig.
const (
	DefaultServer = "localhost:3000"
	DefaultOutput = "table"
)

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: DefaultServer,
		Output: DefaultOutput,
	}
}
