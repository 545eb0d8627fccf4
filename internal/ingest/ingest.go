// =============================================================================
// Sales ETL - Ingestor
// =============================================================================
//
// The Ingestor turns a directory of raw extracts into one RawTable.
//
// PROCESS:
//   1. Discover *.csv and *.xlsx files directly inside the raw directory
//   2. Parse each file; a file that cannot be parsed is logged and skipped
//   3. Concatenate on the union of headers (first appearance order);
//      cells of columns a file does not have are null
//   4. Map the missing-value tokens of the export to null
//
// Column selection (columns_to_keep) is a separate step so the caller can
// short-circuit on an empty dataset before requiring any column.
//
// =============================================================================

package ingest

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ginjaninja78/sales-etl/internal/config"
	"github.com/ginjaninja78/sales-etl/internal/types"
	"github.com/ginjaninja78/sales-etl/pkg/utils"
	"go.uber.org/zap"
)

// ErrMissingColumns is returned by SelectColumns when the ingested data lacks
// a configured column.
var ErrMissingColumns = errors.New("required columns not found in input")

// naTokens are cell values read as null, matching the export tooling's
// missing-value markers.
var naTokens = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

// Ingestor reads raw extracts.
type Ingestor struct {
	settings config.CSVSettings
}

// New creates an Ingestor using the given CSV settings.
func New(settings config.CSVSettings) *Ingestor {
	return &Ingestor{settings: settings}
}

// ReadDir reads every extract in dir and concatenates them.
//
// RETURNS:
//   - The concatenated table; it has no rows when no file yielded data.
//   - An error only if dir itself cannot be listed.
func (in *Ingestor) ReadDir(rc types.RunContext, dir string) (types.RawTable, error) {
	log := rc.Logger

	files, err := utils.NewFileManager(dir, ".csv", ".xlsx").DiscoverInputFiles()
	if err != nil {
		return types.RawTable{}, err
	}

	var sheets []*sheet
	for _, path := range files {
		s, err := in.readFile(path)
		if err != nil {
			log.Error("failed to read extract, skipping", zap.String("file", filepath.Base(path)), zap.Error(err))
			continue
		}
		log.Info("extract loaded", zap.String("file", filepath.Base(path)), zap.Int("rows", len(s.Rows)))
		sheets = append(sheets, s)
	}

	if len(sheets) == 0 {
		log.Warn("no valid extracts found in raw directory", zap.String("dir", dir))
	}

	return concat(sheets), nil
}

func (in *Ingestor) readFile(path string) (*sheet, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return parseXLSX(path)
	}
	return parseCSV(path, in.settings)
}

// concat merges sheets on the union of their headers.
func concat(sheets []*sheet) types.RawTable {
	var columns []string
	for _, s := range sheets {
		for _, h := range s.Headers {
			if !slices.Contains(columns, h) {
				columns = append(columns, h)
			}
		}
	}

	schema := types.NewSchema(columns)
	table := types.RawTable{Schema: schema}

	for _, s := range sheets {
		positions := make([]int, len(s.Headers))
		for i, h := range s.Headers {
			positions[i] = schema.Index(h)
		}

		for _, row := range s.Rows {
			record := make(types.RawRecord, len(columns))
			for i, cell := range row {
				if naTokens[cell] {
					continue
				}
				record[positions[i]] = sql.Null[string]{V: cell, Valid: true}
			}
			table.Rows = append(table.Rows, record)
		}
	}

	return table
}

// SelectColumns projects the table onto columns, in that order.
// It fails with ErrMissingColumns if any column is absent.
func SelectColumns(table types.RawTable, columns []string) (types.RawTable, error) {
	if missing := table.Schema.Missing(columns); len(missing) > 0 {
		return types.RawTable{}, fmt.Errorf("%w: %v", ErrMissingColumns, missing)
	}

	positions := make([]int, len(columns))
	for i, col := range columns {
		positions[i] = table.Schema.Index(col)
	}

	out := types.RawTable{
		Schema: types.NewSchema(columns),
		Rows:   make([]types.RawRecord, len(table.Rows)),
	}
	for r, row := range table.Rows {
		projected := make(types.RawRecord, len(columns))
		for i, pos := range positions {
			projected[i] = row[pos]
		}
		out.Rows[r] = projected
	}

	return out, nil
}
