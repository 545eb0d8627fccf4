// =============================================================================
// Sales ETL - Pipeline
// =============================================================================
//
// This module orchestrates one batch run, from the raw extracts to the daily
// report. Stages run strictly in sequence over an in-memory dataset.
//
// PIPELINE:
//   1. Ingest every extract in raw_data_path
//   2. Stop early when nothing was read (no output is written)
//   3. Keep columns_to_keep (missing columns abort the run)
//   4. Normalize text columns
//   5. Coerce fecha, cantidad and precio_unitario
//   6. Remove duplicates and rows with null critical fields
//   7. Validate business rules; rejects go to rejects_path
//   8. Standardize categories (title case)
//   9. Write the dated snapshot
//  10. Derive monto_total, build the daily summary, append it to report_path
//  11. Compute the product and seller rankings
//
// ERROR HANDLING:
//   Unreadable files and unparsable values are absorbed by their stage.
//   Missing columns and write failures abort the run with an error.
//
// =============================================================================

package pipeline

import (
	"fmt"
	"time"

	"github.com/ginjaninja78/sales-etl/internal/aggregate"
	"github.com/ginjaninja78/sales-etl/internal/config"
	"github.com/ginjaninja78/sales-etl/internal/ingest"
	"github.com/ginjaninja78/sales-etl/internal/persist"
	"github.com/ginjaninja78/sales-etl/internal/transform"
	"github.com/ginjaninja78/sales-etl/internal/types"
	"github.com/ginjaninja78/sales-etl/internal/validation"
	"go.uber.org/zap"
)

// previewRows is the number of summary rows logged at debug level.
const previewRows = 5

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one run.
type Result struct {
	// Empty is true when no extract yielded rows and the run stopped early.
	Empty bool

	// SnapshotPath is the snapshot written (or, in a dry run, the one that
	// would have been written). Empty when the run stopped early.
	SnapshotPath string

	// Summary is the daily summary appended to the report.
	Summary []types.DailySummaryRow

	// TopProducts and TopSellers are the rankings of the run.
	TopProducts []types.RankingEntry
	TopSellers  []types.RankingEntry

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the run.
type ProcessingStats struct {
	// RowsIngested is the number of rows read from all extracts.
	RowsIngested int

	// DuplicatesRemoved is the number of exact duplicate rows dropped.
	DuplicatesRemoved int

	// NullCellsRemoved is the number of null critical cells in the rows
	// dropped for missing critical fields.
	NullCellsRemoved int

	// RowsRejected is the number of rows diverted to the rejects sink.
	RowsRejected int

	// RowsValid is the number of rows in the snapshot.
	RowsValid int

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Pipeline runs the ETL stages with one configuration.
type Pipeline struct {
	cfg       *config.Config
	ingestor  *ingest.Ingestor
	coercer   *transform.Coercer
	validator *validation.Validator
	persister persist.Persister
}

// New creates a Pipeline writing through persister.
//
// PARAMETERS:
//   - cfg: A validated configuration.
//   - persister: persist.FileWriter for a real run, persist.DryRun otherwise.
func New(cfg *config.Config, persister persist.Persister) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		ingestor:  ingest.New(cfg.CSVSettings),
		coercer:   transform.NewCoercer(cfg.DateFormats),
		validator: validation.NewValidator(persister, cfg.RejectsPath),
		persister: persister,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline once.
//
// RETURNS:
//   - The run result. Result.Empty is set when there was nothing to process.
//   - An error if the run aborted; outputs written before the failing stage
//     are kept.
func (p *Pipeline) Run(rc types.RunContext) (*Result, error) {
	startTime := time.Now()
	log := rc.Logger
	result := &Result{}

	log.Info("ETL run started", zap.String("date", rc.Today.String()))

	// =========================================================================
	// STEP 1: INGEST
	// =========================================================================

	log.Info("reading raw extracts", zap.String("dir", p.cfg.RawDataPath))

	table, err := p.ingestor.ReadDir(rc, p.cfg.RawDataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw data: %w", err)
	}
	result.Stats.RowsIngested = table.Len()

	// =========================================================================
	// STEP 2: EMPTY INPUT
	// =========================================================================

	if table.Len() == 0 {
		log.Warn("empty dataset, finishing without data")
		result.Empty = true
		result.Stats.ProcessingTime = time.Since(startTime)
		return result, nil
	}

	// =========================================================================
	// STEP 3: COLUMN SELECTION
	// =========================================================================

	table, err = ingest.SelectColumns(table, p.cfg.ColumnsToKeep)
	if err != nil {
		log.Error("failed to filter columns", zap.Error(err))
		return nil, err
	}
	log.Info("columns filtered", zap.Strings("columns", table.Schema.Columns))

	// =========================================================================
	// STEPS 4-6: CLEANING
	// =========================================================================

	table = transform.NormalizeText(rc, table, p.cfg.TextColumns)
	log.Info("text normalization completed")

	ds := p.coercer.CoerceTypes(rc, table)
	log.Info("dates and numeric fields typed")

	ds, dedup := transform.Deduplicate(rc, ds)
	result.Stats.DuplicatesRemoved = dedup.DuplicatesRemoved
	result.Stats.NullCellsRemoved = dedup.NullCellsRemoved

	// =========================================================================
	// STEP 7: BUSINESS RULES
	// =========================================================================

	validated, err := p.validator.Validate(rc, ds)
	if err != nil {
		return nil, err
	}
	result.Stats.RowsRejected = validated.Rejected.Len()
	result.Stats.RowsValid = validated.Valid.Len()

	// =========================================================================
	// STEPS 8-9: STANDARDIZE AND SNAPSHOT
	// =========================================================================

	ds = transform.StandardizeCategories(rc, validated.Valid)
	log.Info("category standardization applied")

	result.SnapshotPath, err = p.persister.WriteSnapshot(ds, p.cfg.ProcessedDataPath, rc.Today)
	if err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 10: DAILY SUMMARY
	// =========================================================================

	withTotals := aggregate.WithTotals(rc, ds)
	result.Summary = aggregate.DailySummary(rc, withTotals)

	if err := p.persister.AppendReport(result.Summary, p.cfg.ReportPath); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 11: RANKINGS
	// =========================================================================

	result.TopProducts = aggregate.TopProducts(rc, withTotals, p.cfg.TopN)
	result.TopSellers = aggregate.TopSellers(rc, withTotals, p.cfg.TopN, aggregate.SellerOrder(p.cfg.TopSellersOrder))

	preview := result.Summary
	if len(preview) > previewRows {
		preview = preview[:previewRows]
	}
	log.Debug("daily summary preview", zap.Objects("rows", preview))
	log.Debug("top products", zap.Objects("ranking", result.TopProducts))
	log.Debug("top sellers", zap.Objects("ranking", result.TopSellers))

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Stats.ProcessingTime = time.Since(startTime)
	log.Info("ETL run finished",
		zap.Int("rows_ingested", result.Stats.RowsIngested),
		zap.Int("rows_valid", result.Stats.RowsValid),
		zap.Int("rows_rejected", result.Stats.RowsRejected),
		zap.Duration("elapsed", result.Stats.ProcessingTime),
	)

	return result, nil
}
