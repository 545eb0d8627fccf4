// =============================================================================
// Sales ETL - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (etl)
//   ├── processCmd  (etl process)
//   ├── validateCmd (etl validate)
//   └── versionCmd  (etl version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --log-dir)
//   2. Loading a .env file, if present, before any command runs
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ginjaninja78/sales-etl/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the pipeline configuration file.
var cfgFile string

// verbose forces debug logging regardless of log_level.
var verbose bool

// logDir overrides log_dir from the configuration.
var logDir string

// envFile is the dotenv file loaded before every command.
const envFile = ".env"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "etl",
	Short: "Sales ETL - Clean daily sales extracts and build the daily report",
	Long: `Sales ETL reads the raw sales extracts of every branch, cleans them and
produces three artifacts:

  - A dated snapshot of the clean sales (ventas_limpias_DD-MM-YYYY.csv)
  - A rejects file with the rows that break a business rule
  - A running daily summary by date and branch

Example Usage:
  etl process                          # Run the pipeline with etl_config.yaml
  etl process --config ./prod.yaml     # Use a custom configuration file
  etl process --date 2024-01-31        # Run as if today were 2024-01-31
  etl validate                         # Check configuration and inputs only`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadEnv loads envFile into the process environment. Variables already set
// win over the file; a missing file is not an error.
func loadEnv() error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return nil
}

// loadConfig loads the configuration selected by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logDir != "" {
		cfg.LogDir = logDir
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the pipeline configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logDir,
		"log-dir",
		"",
		"Directory for the dated log file (overrides log_dir)",
	)
}
