// Command auditlocal runs an audit pipeline against local sample data.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/auditlocal/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
