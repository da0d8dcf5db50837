// Package command provides CLI command definitions for issuemesh-cli.
package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/issuemesh-go/internal/cli/config"
	"github.com/yndnr/issuemesh-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI local configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show CLI configuration",
				Action: configShow,
			},
			{
				Name:      "set",
				Usage:     "Set a configuration value",
				ArgsUsage: "KEY VALUE",
				Description: "Keys: server, output, user, ca_file. " +
					"An empty VALUE clears user and ca_file.",
				Action: configSet,
			},
			{
				Name:   "path",
				Usage:  "Print the configuration file path",
				Action: configPath,
			},
		},
	}
}

// configView renders the CLI configuration as key/value rows.
type configView struct {
	*config.CLIConfig
}

func (v configView) Table(bool) *output.Table {
	t := &output.Table{Headers: []string{"KEY", "VALUE"}}
	t.AddRow("server", v.Server)
	t.AddRow("output", v.Output)
	t.AddRow("user", v.User)
	t.AddRow("ca_file", v.CAFile)
	return t
}

func configShow(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	return flags.Printer().Print(c.App.Writer, configView{cliConfig(c)})
}

func configSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: config set KEY VALUE")
	}

	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(c.Args().Get(0), c.Args().Get(1)); err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	fmt.Fprintf(c.App.Writer, "%s updated.\n", c.Args().Get(0))
	return nil
}

func configPath(c *cli.Context) error {
	path := c.String("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	_, err := fmt.Fprintln(c.App.Writer, path)
	return err
}
