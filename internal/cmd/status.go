package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harrison/tetrad/internal/config"
	"github.com/harrison/tetrad/internal/logger"
	"github.com/harrison/tetrad/internal/reasoning"
	"github.com/harrison/tetrad/internal/reviewer"
	"github.com/harrison/tetrad/internal/tools"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report reviewer availability and consensus configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(configPath(cmd))
	if err != nil {
		return fail(cmd, err)
	}
	log := logger.Nop()

	var bank *reasoning.Store
	if cfg.Reasoning.Enabled {
		bank, err = reasoning.NewStore(cfg.Reasoning.DBPath)
		if err != nil {
			return fail(cmd, err)
		}
		defer bank.Close()
	}

	fleet := reviewer.NewFleet(cfg, log)
	handler := tools.NewHandler(cfg, log, fleet, bank)
	status := handler.Status(context.Background())

	printStatusBox(cmd, status)
	return nil
}

func printStatusBox(cmd *cobra.Command, status tools.StatusResult) {
	width := boxWidth()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, boxLine(width, '─', '┌', '┐'))
	printBoxRow(out, width, fmt.Sprintf("tetrad status — consensus rule: %s (min score %d, max loops %d)",
		status.ConsensusRule, status.MinScore, status.MaxLoops))
	fmt.Fprintln(out, boxLine(width, '─', '├', '┤'))
	for _, r := range status.Reviewers {
		state := "unavailable"
		if !r.Enabled {
			state = "disabled"
		} else if r.Available {
			state = "available (" + r.Version + ")"
		}
		printBoxRow(out, width, fmt.Sprintf("  %-8s %-12s %s", r.Name, r.Specialization, state))
	}
	fmt.Fprintln(out, boxLine(width, '─', '├', '┤'))
	printBoxRow(out, width, fmt.Sprintf("  reasoning bank: %v", status.ReasoningEnabled))
	printBoxRow(out, width, fmt.Sprintf("  cache: %v", status.CacheStats))
	fmt.Fprintln(out, boxLine(width, '─', '└', '┘'))
}

func boxWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 && w < 120 {
		return w - 2
	}
	return 78
}

func boxLine(width int, fill, left, right rune) string {
	return string(left) + strings.Repeat(string(fill), width) + string(right)
}

func printBoxRow(out io.Writer, width int, text string) {
	pad := width - runewidth.StringWidth(text) - 1
	if pad < 0 {
		text = runewidth.Truncate(text, width-1, "…")
		pad = width - runewidth.StringWidth(text) - 1
	}
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(out, "│ %s%s│\n", text, strings.Repeat(" ", pad))
}
