// Command basm optimizes and runs tape-machine programs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/basm/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		code := cli.GetExitCode(err)
		// Failures have already been reported by the command.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || code != cli.ExitFailure {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(code)
	}
}
