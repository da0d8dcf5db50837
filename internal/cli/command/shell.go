// Package command provides CLI command definitions for issuemesh-cli.
package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/issuemesh-go/internal/cli/repl"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Run commands interactively",
		Description: "Reads commands line by line and runs them with the global flags " +
			"given to the shell. Type help for a list and exit to leave.",
		Action: shell,
	}
}

func shell(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	base := []string{
		c.App.Name,
		"--server", flags.Server,
		"--output", string(flags.Output),
		"--timeout", flags.Timeout.String(),
		"--config", c.String("config"),
	}
	if flags.User != "" {
		base = append(base, "--user", flags.User)
	}
	if flags.CAFile != "" {
		base = append(base, "--ca-file", flags.CAFile)
	}
	if flags.Wide {
		base = append(base, "--wide")
	}

	exec := func(args []string) error {
		app := App()
		app.Writer = c.App.Writer
		app.ErrWriter = c.App.ErrWriter
		app.Reader = c.App.Reader
		return app.RunContext(c.Context, append(append([]string{}, base...), args...))
	}

	r := repl.New(exec,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithCommands(commandPaths(App().Commands)),
	)
	return r.Run()
}

// commandPaths lists "group sub" paths for help and suggestions.
func commandPaths(cmds []*cli.Command) []string {
	var paths []string
	for _, cmd := range cmds {
		if cmd.Name == "shell" || cmd.Hidden {
			continue
		}
		if len(cmd.Subcommands) == 0 {
			paths = append(paths, cmd.Name)
			continue
		}
		for _, sub := range cmd.Subcommands {
			paths = append(paths, cmd.Name+" "+sub.Name)
		}
	}
	return paths
}
