package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harrison/tetrad/internal/config"
	"github.com/harrison/tetrad/internal/reasoning"
)

func newExportCommand() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the reasoning bank's patterns and distilled knowledge",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, format, out)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	cmd.Flags().StringVar(&out, "out", "", "output file path (default: stdout)")
	return cmd
}

func runExport(cmd *cobra.Command, format, out string) error {
	cfg, err := config.LoadConfig(configPath(cmd))
	if err != nil {
		return fail(cmd, err)
	}
	if !cfg.Reasoning.Enabled {
		return fail(cmd, fmt.Errorf("reasoning bank is disabled in configuration"))
	}

	bank, err := reasoning.NewStore(cfg.Reasoning.DBPath)
	if err != nil {
		return fail(cmd, err)
	}
	defer bank.Close()

	doc, err := bank.Export()
	if err != nil {
		return fail(cmd, err)
	}

	var data []byte
	switch format {
	case "json":
		data, err = doc.ToJSON()
	case "yaml":
		data, err = yaml.Marshal(doc)
	default:
		return fail(cmd, fmt.Errorf("unknown format %q: must be json or yaml", format))
	}
	if err != nil {
		return fail(cmd, err)
	}

	if out == "" {
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(out, data, 0o644)
}
