package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"shorts_factory/internal/config"
	"shorts_factory/internal/logging"
)

type commandContext struct {
	configFlag *string

	once      sync.Once
	config    *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	err       error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads the config and builds the logger once per process.
func (c *commandContext) ensureConfig() (*config.Config, *slog.Logger, error) {
	c.once.Do(func() {
		path := "config.yaml"
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			path = strings.TrimSpace(*c.configFlag)
		}

		cfg, err := config.Load(path)
		if err != nil {
			logging.Default("info").Error("failed to load config", "path", path, "error", err)
			c.err = err
			return
		}

		logger, closer, err := logging.New(cfg.Log, nil)
		if err != nil {
			c.err = err
			return
		}

		c.config = cfg
		c.logger = logger
		c.logCloser = closer
	})
	return c.config, c.logger, c.err
}

func (c *commandContext) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "factory",
		Short:         "Automated short-video factory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "config.yaml", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newStageCommand(ctx))
	rootCmd.AddCommand(newAdmitCommand(ctx))
	rootCmd.AddCommand(newRepairCommand(ctx))
	rootCmd.AddCommand(newTasksCommand(ctx))
	rootCmd.AddCommand(newUploadsCommand(ctx))
	rootCmd.AddCommand(newYouTubeAuthCommand(ctx))

	return rootCmd
}
