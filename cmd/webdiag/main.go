package main

import (
	"os"

	"github.com/Iron-Ham/webdiag/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
