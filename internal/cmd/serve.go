package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/tetrad/internal/config"
	"github.com/harrison/tetrad/internal/hooks"
	"github.com/harrison/tetrad/internal/logger"
	"github.com/harrison/tetrad/internal/mcp"
	"github.com/harrison/tetrad/internal/reasoning"
	"github.com/harrison/tetrad/internal/reviewer"
	"github.com/harrison/tetrad/internal/tools"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	path := configPath(cmd)
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return fail(cmd, err)
	}
	if err := cfg.Validate(); err != nil {
		return fail(cmd, err)
	}

	log := logger.New(cfg.General.LogLevel, cfg.General.LogFormat, os.Stderr)

	var bank *reasoning.Store
	if cfg.Reasoning.Enabled {
		bank, err = reasoning.NewStore(cfg.Reasoning.DBPath)
		if err != nil {
			return fail(cmd, fmt.Errorf("opening reasoning bank: %w", err))
		}
		defer bank.Close()
	}

	fleet := reviewer.NewFleet(cfg, log)
	handler := tools.NewHandler(cfg, log, fleet, bank)

	if cfg.General.WatchConfig && path != "" {
		watcher, err := config.NewWatcher(path, cfg, func(next *config.Config) {
			log.Info("configuration reloaded from disk")
		})
		if err != nil {
			log.Warn("config watcher unavailable", logger.F("error", err.Error()))
		} else {
			handler.Hooks().Register(hooks.NewConfigWatchHook(log, watcher.Generation))
			if err := watcher.Start(); err != nil {
				log.Warn("config watcher failed to start", logger.F("error", err.Error()))
			} else {
				defer watcher.Stop()
			}
		}
	}

	server := mcp.New(handler, log, os.Stdin, os.Stdout)
	return server.Run(context.Background())
}
