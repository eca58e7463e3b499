package main

import (
	"os"

	cliruntime "github.com/tomasbasham/cli-runtime"
	"github.com/tomasbasham/minigame-publish/internal/cmd"
)

func main() {
	command, options := cmd.NewRootCommand()
	if code := cliruntime.Run(command); code != 0 {
		os.Exit(code)
	}
	// Partial success and manual action are not command errors but still
	// need their own exit codes.
	os.Exit(options.ExitCode())
}
