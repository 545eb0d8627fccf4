// =============================================================================
// Sales ETL - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the whole pipeline
// once.
//
// COMMAND USAGE:
//   etl process [flags]
//
// FLAGS:
//   --dry-run : Run every stage but write no snapshot, report or rejects
//   --date    : Run date (YYYY-MM-DD); defaults to the local calendar date
//   --top-n   : Ranking length (overrides top_n)
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/ginjaninja78/sales-etl/internal/logging"
	"github.com/ginjaninja78/sales-etl/internal/persist"
	"github.com/ginjaninja78/sales-etl/internal/pipeline"
	"github.com/ginjaninja78/sales-etl/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun runs the pipeline without writing output files.
var dryRun bool

// runDate is the --date flag value.
var runDate string

// topN overrides top_n when positive.
var topN int

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the sales ETL pipeline",
	Long: `The process command reads every extract in raw_data_path, cleans and
validates the rows, writes the dated snapshot, appends the rejects and
appends the daily summary to the report.

If no extract yields rows, nothing is written. A configuration error or a
missing configured column stops the run before any output is written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess()
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Run every stage without writing output files",
	)

	processCmd.Flags().StringVar(
		&runDate,
		"date",
		"",
		"Run date as YYYY-MM-DD (default: today)",
	)

	processCmd.Flags().IntVar(
		&topN,
		"top-n",
		0,
		"Ranking length (overrides top_n)",
	)
}

// =============================================================================
// PROCESS IMPLEMENTATION
// =============================================================================

// runProcess loads the configuration, sets up logging and runs the pipeline.
func runProcess() error {
	today, err := resolveRunDate(runDate, time.Now())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if topN > 0 {
		cfg.TopN = topN
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level: cfg.LogLevel,
		Dir:   cfg.LogDir,
		Date:  today,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	rc := types.NewRunContext(logger, today)

	var persister persist.Persister = persist.NewFileWriter(rc.Logger)
	if dryRun {
		rc.Logger.Info("dry run: no files will be written")
		persister = persist.NewDryRun(rc.Logger)
	}

	result, err := pipeline.New(cfg, persister).Run(rc)
	if err != nil {
		rc.Logger.Error("ETL run failed", zap.Error(err))
		return err
	}

	if result.Empty {
		fmt.Println("No input rows found; nothing was written.")
		return nil
	}

	fmt.Println("ETL run complete")
	fmt.Printf("  Rows ingested:      %d\n", result.Stats.RowsIngested)
	fmt.Printf("  Duplicates removed: %d\n", result.Stats.DuplicatesRemoved)
	fmt.Printf("  Null cells removed: %d\n", result.Stats.NullCellsRemoved)
	fmt.Printf("  Rows rejected:      %d\n", result.Stats.RowsRejected)
	fmt.Printf("  Rows valid:         %d\n", result.Stats.RowsValid)
	fmt.Printf("  Snapshot:           %s\n", result.SnapshotPath)
	fmt.Printf("  Summary rows:       %d\n", len(result.Summary))
	fmt.Printf("  Processing time:    %v\n", result.Stats.ProcessingTime)

	return nil
}

// resolveRunDate parses the --date value, defaulting to the calendar date
// of now.
func resolveRunDate(value string, now time.Time) (civil.Date, error) {
	if value == "" {
		return civil.DateOf(now), nil
	}
	d, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid --date %q: %w", value, err)
	}
	return d, nil
}
