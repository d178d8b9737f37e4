// Command tetrad runs the quadruple-consensus code review MCP server.
package main

import (
	"fmt"
	"os"

	"github.com/harrison/tetrad/internal/cmd"
)

// buildVersion is the current tetrad release; main copies it into
// cmd.Version before building the root command.
const buildVersion = "0.1.0"

func main() {
	cmd.Version = buildVersion
	root := cmd.NewRootCommand()

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
