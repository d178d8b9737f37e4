package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/harrison/tetrad/internal/config"
)

func newInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default tetrad.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	path := configPath(cmd)
	if _, err := os.Stat(path); err == nil && !force {
		return fail(cmd, fmt.Errorf("%s already exists; pass --force to overwrite", path))
	}

	f, err := os.Create(path)
	if err != nil {
		return fail(cmd, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config.DefaultConfig()); err != nil {
		return fail(cmd, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
