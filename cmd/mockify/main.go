// mockify is the command-line client of the Mockify mock API platform.
package main

import (
	"os"

	"github.com/wasif-raza/mockify-cli/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	os.Exit(cli.Execute())
}
