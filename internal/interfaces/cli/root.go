// Package cli defines the chemscreen command tree: global flags, config and
// logger initialisation, and the merge subcommand.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemScreen/internal/config"
	"github.com/turtacn/ChemScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemScreen/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Verbose    bool
}

// CLIContext carries initialised dependencies through the command tree.
type CLIContext struct {
	Config *config.Config
	Logger logging.Logger
}

// NewRootCommand creates the root cobra command with all global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "chemscreen",
		Short: "ChemScreen — combinatorial merging of molecular structure fragments",
		Long: "ChemScreen merges molecular structure fragments into composite structures:\n" +
			"it matches a shared substructure pattern in each fragment, superimposes the\n" +
			"fragments on the matched atoms, fuses the molecular graphs, and remaps RCA4\n" +
			"ring-closure annotations, combinatorially across match sets and fragment groups.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./chemscreen.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "shorthand for --log-level debug")

	cmd.AddCommand(NewMergeCmd())
	return cmd
}

// persistentPreRun initialises config and logger, then stores CLIContext on
// the command's context.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return err
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)

	ctx := context.WithValue(cmd.Context(), cliContextKey{}, &CLIContext{
		Config: cfg,
		Logger: logger,
	})
	cmd.SetContext(ctx)
	return nil
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./chemscreen.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".chemscreen", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/chemscreen/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}

	// No config file found; environment variables and defaults suffice for
	// most runs.
	return config.LoadFromEnv()
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.CodeInternal, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.CodeInternal, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute runs the root command and returns the process exit code derived
// from the failure's error code family.
func Execute() int {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return errors.ExitCodeForCode(errors.GetCode(err))
	}
	return 0
}
