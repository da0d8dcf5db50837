// Package main provides the entry point for issuemesh-cli.
package main

import (
	"os"

	"github.com/yndnr/issuemesh-go/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		command.PrintError("%v", err)
		os.Exit(1)
	}
}
