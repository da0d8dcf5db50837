// Package command provides CLI command definitions for issuemesh-cli.
package command

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/issuemesh-go/internal/cli/connection"
	"github.com/yndnr/issuemesh-go/internal/cli/output"
	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Stream changes as they happen",
		Description: "Connects as an observer and prints every event the server broadcasts " +
			"until interrupted. The initial snapshot is summarized, or printed in full with --snapshot.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "snapshot",
				Usage: "Print the current issues before streaming",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Exit after this many events (0 streams until interrupted)",
			},
		},
		Action: watch,
	}
}

func watch(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	conn, err := flags.connOptions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, flags.Timeout)
	ws, err := connection.DialWS(dialCtx, flags.Server, conn...)
	cancel()
	if err != nil {
		return err
	}
	defer ws.Close()

	events := output.NewEventWriter(c.App.Writer, flags.Output)
	if c.Bool("snapshot") {
		if err := flags.Printer().Print(c.App.Writer, output.Issues(ws.Init().Issues)); err != nil {
			return err
		}
	} else if err := events.Write(domain.NewInitEvent(ws.Init())); err != nil {
		return err
	}

	limit := c.Int("count")
	for seen := 0; limit == 0 || seen < limit; seen++ {
		ev, err := ws.Next(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		if err := events.Write(ev); err != nil {
			return err
		}
	}
	return nil
}
