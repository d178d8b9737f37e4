// Package cmd implements tetrad's CLI surface: serve, status, doctor,
// init, export, and import, grounded on the teacher's internal/cmd
// cobra-subcommand layout (one file per subcommand, a NewRootCommand
// wiring them all together).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the release string reported by --version; cmd/tetrad's main
// sets it at startup.
var Version = "dev"

// NewRootCommand builds the root "tetrad" cobra command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tetrad",
		Short: "Quadruple-consensus code review MCP server",
		Long: `tetrad runs an MCP server that fans code, plan, and test review
requests out to three reviewer CLIs (Codex, Gemini, Qwen), reconciles their
verdicts by consensus, and learns from outcomes via a persistent reasoning
bank.`,
		Version:      Version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringP("config", "c", "tetrad.toml", "path to tetrad.toml")

	root.AddCommand(newServeCommand())
	root.AddCommand(newStatusCommand())
	root.AddCommand(newDoctorCommand())
	root.AddCommand(newInitCommand())
	root.AddCommand(newExportCommand())
	root.AddCommand(newImportCommand())

	return root
}

func fail(cmd *cobra.Command, err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	cmd.SilenceErrors = true
	return err
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
