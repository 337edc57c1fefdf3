// =============================================================================
// Payroll Audit - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every audit command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (auditor)
//   ├── exceptionsCmd (auditor exceptions payroll | fixed-assets)
//   ├── reconcileCmd  (auditor reconcile pf | salary | threshold)
//   ├── headcountCmd  (auditor headcount)
//   ├── compareCmd    (auditor compare)
//   ├── runCmd        (auditor run)
//   └── versionCmd    (auditor version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading .env files before any command reads the environment
//   3. Building the logger shared by all commands
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-audit/internal/audit"
	"github.com/ginjaninja78/payroll-audit/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// defaultConfigFile is used when --config is not given.
const defaultConfigFile = "config.yaml"

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// envFile is the .env file loaded before the configuration.
var envFile string

// verbose enables verbose logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "auditor",
	Short: "Payroll Audit - exception testing and analytics for payroll and fixed asset registers",
	Long: `Payroll Audit runs the substantive procedures of a payroll and fixed asset
audit over client registers exported to Excel or CSV.

Key Features:
  - Numbered exception rules over pay registers and fixed asset registers
  - Headcount roll-forward, weighted averages and CTC test reconciliation
  - Increment, PF and salary reasonableness tests with audit thresholds
  - Pairwise comparison of CTC and actuary data
  - Concurrent execution of every job in the engagement configurations

Example Usage:
  auditor exceptions payroll --register pay.xlsx --column-map map.json
  auditor reconcile threshold --recorded 1200 --expected 1150 --materiality 50000
  auditor run --config ./config.yaml`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(envFile); err != nil {
			return err
		}
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// --config flag: Allows the user to specify a custom configuration file.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the main configuration file",
	)

	// --env-file flag: Loads AUDITOR_* variables before the configuration.
	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Path to a .env file (ignored when missing)",
	)

	// --verbose flag: Enables verbose/debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadMainConfig loads --config. A missing default config.yaml is not an
// error: the defaults (with environment overrides) are used instead.
func loadMainConfig() (*config.MainConfig, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err == nil {
		return cfg, nil
	}
	if cfgFile == defaultConfigFile && errors.Is(err, fs.ErrNotExist) {
		cfg = config.DefaultMainConfig()
		config.ApplyMainEnv(cfg)
		return cfg, nil
	}
	return nil, fmt.Errorf("failed to load main config: %w", err)
}

// newLogger builds the command logger. Records go to stderr and, when a
// log file is configured, to that file as well. The returned function
// closes the log file.
func newLogger(cfg *config.MainConfig) (audit.Logger, func(), error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closeFn = func() { f.Close() }
	}
	return audit.NewLogger(w, level), closeFn, nil
}
