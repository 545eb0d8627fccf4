package transform

import (
	"github.com/ginjaninja78/sales-etl/internal/types"
	"go.uber.org/zap"
)

// DedupStats reports what Deduplicate removed.
type DedupStats struct {
	// DuplicatesRemoved counts rows equal to an earlier row in every column.
	DuplicatesRemoved int

	// NullCellsRemoved counts null critical cells across the dropped rows.
	// A row with two null critical fields counts twice.
	NullCellsRemoved int

	// RowsDropped counts rows dropped for having any null critical field.
	RowsDropped int
}

// Deduplicate removes exact duplicate rows, keeping the first occurrence, and
// then drops rows with a null in any critical column present in the schema.
// Two nulls in the same column compare equal.
func Deduplicate(rc types.RunContext, ds types.Dataset) (types.Dataset, DedupStats) {
	var stats DedupStats

	seen := make(map[string]bool, ds.Len())
	unique := make([]types.Record, 0, ds.Len())
	for _, rec := range ds.Records {
		key := rec.Key(ds.Schema)
		if seen[key] {
			stats.DuplicatesRemoved++
			continue
		}
		seen[key] = true
		unique = append(unique, rec)
	}

	var critical []string
	for _, col := range types.CriticalColumns {
		if ds.Schema.Has(col) {
			critical = append(critical, col)
		}
	}

	out := types.Dataset{
		Schema:  types.NewSchema(ds.Schema.Columns),
		Records: make([]types.Record, 0, len(unique)),
	}
	for _, rec := range unique {
		nulls := 0
		for _, col := range critical {
			if isNull(rec, col) {
				nulls++
			}
		}
		if nulls > 0 {
			stats.NullCellsRemoved += nulls
			stats.RowsDropped++
			continue
		}
		out.Records = append(out.Records, rec.Clone())
	}

	if stats.DuplicatesRemoved > 0 {
		rc.Logger.Warn("duplicate rows removed", zap.Int("duplicates_removed", stats.DuplicatesRemoved))
	}
	if stats.RowsDropped > 0 {
		rc.Logger.Warn("rows with null critical fields removed",
			zap.Int("null_cells_removed", stats.NullCellsRemoved),
			zap.Int("rows_removed", stats.RowsDropped),
		)
	}

	return out, stats
}
