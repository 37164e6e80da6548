package main

import (
	"os"

	"github.com/yndnr/persistval/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		command.PrintError("%v", err)
		os.Exit(command.ExitCode(err))
	}
}
