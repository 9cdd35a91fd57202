package main

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ironsheep/template-cloner/internal/config"
	"github.com/ironsheep/template-cloner/internal/logging"
)

// app carries state shared by all subcommands once the root has parsed its
// persistent flags.
type app struct {
	cfgFile  string
	logLevel string

	mgr    *config.Manager
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "template-cloner",
		Short: "Clone document labels from a labeled image onto images of the same template",
		Long: `template-cloner transfers bounding-box labels between scanned documents that
share a layout.

Each relation box is anchored on a static label that is located in the target
image by template matching. Variable fields move with their anchor, and
repeating table regions have their bottom edge rediscovered in the target.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(
		&a.cfgFile, "config", "", "config file (default: ./config.yaml or ~/.template-cloner/config.yaml)",
	)
	cmd.PersistentFlags().StringVar(
		&a.logLevel, "log-level", "", "log level: debug, info, warn or error",
	)

	cmd.AddCommand(newCloneCmd(a))
	cmd.AddCommand(newLocateCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	mgr, err := config.NewManager(a.cfgFile)
	if err != nil {
		return err
	}
	if err := mgr.BindFlag("log.level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}

	cfg := mgr.Get()
	// stdout carries reports and MCP traffic
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a.mgr = mgr
	a.logger = logger
	if f := mgr.ConfigFileUsed(); f != "" {
		logger.Debug("config loaded", "file", f)
	}
	return nil
}
