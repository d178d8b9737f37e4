package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/tetrad/internal/config"
	"github.com/harrison/tetrad/internal/logger"
	"github.com/harrison/tetrad/internal/reviewer"
)

func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that configured reviewer CLIs are reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd)
		},
	}
}

func runDoctor(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(configPath(cmd))
	if err != nil {
		return fail(cmd, err)
	}
	if err := cfg.Validate(); err != nil {
		return fail(cmd, fmt.Errorf("configuration invalid: %w", err))
	}

	fleet := reviewer.NewFleet(cfg, logger.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "tetrad doctor")
	problems := 0
	for _, s := range fleet.Probe(ctx) {
		switch {
		case !s.Enabled:
			fmt.Fprintf(out, "  [skip] %-8s disabled in configuration\n", s.Name)
		case s.Available:
			fmt.Fprintf(out, "  [ ok ] %-8s %s (%s)\n", s.Name, s.Command, s.Version)
		default:
			problems++
			fmt.Fprintf(out, "  [FAIL] %-8s %s not found or not responding\n", s.Name, s.Command)
		}
	}

	if problems > 0 {
		return fmt.Errorf("doctor: %d reviewer(s) unreachable", problems)
	}
	fmt.Fprintln(out, "all configured reviewers are reachable")
	return nil
}
