package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskboard-api/internal/app"
	"taskboard-api/internal/config"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Taskboard API server and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional
			_ = godotenv.Load()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "configs/config.yaml", "path to the yaml config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logger.level")

	cmd.AddCommand(
		newServeCmd(opts),
		newTokenCmd(opts),
		newReconcileCmd(opts),
		newBoardsCmd(opts),
		newWatchCmd(opts),
		newMoveCmd(opts),
	)
	return cmd
}

// load reads the config and builds the logger every subcommand needs
func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Logger.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger, err := app.NewLogger(level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
