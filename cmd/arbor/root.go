package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor is an interactive tree editor with undo/redo",
	Long: `Arbor grows a tree of numbered nodes one command at a time: add a child under the
active node, select, delete a subtree, reset, and move back and forth through the history.

The same session can be driven from a REPL, replayed from a YAML script, served over
HTTP or exposed to AI agents as MCP tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("env-file", config.DefaultEnvFile, "Optional .env file with ARBOR_* settings")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

// loadConfig resolves configuration and the logger for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(path, envFile)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	return cfg, logging.New(level), nil
}

// newManager builds a session from cfg and guards it.
func newManager(cfg *config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) *session.Manager {
	s := arbor.New(
		arbor.WithLogger(logger),
		arbor.WithLifecycleHooks(hooks),
		arbor.WithMaxDepth(cfg.Session.MaxDepth),
		arbor.WithHistoryCapacity(cfg.Session.HistoryCapacity),
		arbor.WithStrictInvariants(cfg.Session.Strict),
	)
	logger.Debug("Session created", "session_id", s.ID, "max_depth", s.MaxDepth())
	return session.NewManager(s,
		session.WithLogger(logger.With("session_id", s.ID)),
		session.WithSessionID(s.ID),
	)
}
