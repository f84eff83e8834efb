// Command chemscreen is the entry point for the fragment-merging CLI.
package main

import (
	"os"

	"github.com/turtacn/ChemScreen/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	os.Exit(cli.Execute())
}
