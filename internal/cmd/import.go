package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harrison/tetrad/internal/config"
	"github.com/harrison/tetrad/internal/reasoning"
)

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge an exported pattern document into the reasoning bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0])
		},
	}
	return cmd
}

func runImport(cmd *cobra.Command, path string) error {
	cfg, err := config.LoadConfig(configPath(cmd))
	if err != nil {
		return fail(cmd, err)
	}
	if !cfg.Reasoning.Enabled {
		return fail(cmd, fmt.Errorf("reasoning bank is disabled in configuration"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(cmd, err)
	}

	var doc reasoning.ExportDocument
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return fail(cmd, fmt.Errorf("parsing %s: %w", path, err))
	}

	bank, err := reasoning.NewStore(cfg.Reasoning.DBPath)
	if err != nil {
		return fail(cmd, err)
	}
	defer bank.Close()

	report, err := bank.Import(doc)
	if err != nil {
		return fail(cmd, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d, merged %d, skipped %d\n", report.Imported, report.Merged, report.Skipped)
	return nil
}
