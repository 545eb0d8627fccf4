// =============================================================================
// Sales ETL - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and lists the extracts a run would read, without processing anything.
//
// COMMAND USAGE:
//   etl validate [flags]
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/ginjaninja78/sales-etl/pkg/utils"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and list input extracts",
	Long: `The validate command loads and validates the configuration file, then
lists the .csv and .xlsx extracts found in raw_data_path. No file is read or
written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("Configuration OK: %s\n", cfgFile)
	fmt.Printf("  Raw data:        %s\n", cfg.RawDataPath)
	fmt.Printf("  Processed data:  %s\n", cfg.ProcessedDataPath)
	fmt.Printf("  Report:          %s\n", cfg.ReportPath)
	fmt.Printf("  Rejects:         %s\n", cfg.RejectsPath)
	fmt.Printf("  Columns:         %v\n", cfg.ColumnsToKeep)
	fmt.Printf("  Encoding:        %s\n", cfg.CSVSettings.Encoding)
	fmt.Printf("  Top N:           %d (sellers %s)\n", cfg.TopN, cfg.TopSellersOrder)

	files, err := utils.NewFileManager(cfg.RawDataPath, ".csv", ".xlsx").DiscoverInputFiles()
	if err != nil {
		return fmt.Errorf("failed to list raw data: %w", err)
	}

	if len(files) == 0 {
		fmt.Println("No extracts found; a run would write nothing.")
		return nil
	}

	fmt.Printf("Extracts (%d):\n", len(files))
	for _, f := range files {
		fmt.Printf("  %s\n", filepath.Base(f))
	}
	return nil
}
