package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reverendo/internal/config"
	"reverendo/internal/logging"
)

// version is stamped at release time with -ldflags "-X main.version=...".
var version = "1.5.3"

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string

	// Root command flags
	noLaunch  bool
	assumeYes bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd installs or upgrades the current project, then starts the assistant.
var rootCmd = &cobra.Command{
	Use:   "reverendo",
	Short: "Set up Claude Code for this project and start it",
	Long: `reverendo provisions a project for Claude Code:

  .claude/     settings, slash commands, agents and hooks
  CLAUDE.md    project guide personalized from the detected stack
  .mcp.json    default tool servers, merged into any existing file

Re-running is safe: an up-to-date project is left untouched, an older
install is upgraded after confirmation. Claude Code is started afterwards.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = logging.New(cfg.Logging.Level, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Initialize(logger)
		if path == "" {
			logging.BootWarn("no user config directory, using defaults")
		}
		logging.Boot("config loaded from %q, workspace %q", path, workspace)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logging.Sync()
		}
	},
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Project directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <user config dir>/reverendo/config.yaml)")

	rootCmd.Flags().BoolVar(&noLaunch, "no-launch", false, "Do not start Claude Code afterwards")
	rootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to every prompt")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(checkDocsCmd)
	rootCmd.AddCommand(versionCmd)
}

// exitCodeError ends the process with a specific status and no message.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit exitCodeError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// resolveWorkspace returns the absolute project directory.
func resolveWorkspace() (string, error) {
	ws := workspace
	if ws == "" {
		var err error
		if ws, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	abs, err := filepath.Abs(ws)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("workspace %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace %s is not a directory", abs)
	}
	return abs, nil
}
