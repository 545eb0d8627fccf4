// =============================================================================
// Sales ETL - Persistence
// =============================================================================
//
// This module writes the pipeline's three artifacts as UTF-8 delimited files:
//   - Snapshot : processed_data_path/ventas_limpias_DD-MM-YYYY.csv, rewritten
//                on every run of that day
//   - Report   : report_path, append only, header on creation
//   - Rejects  : rejects_path, append only, header on creation
//
// Parent directories are created as needed.
//
// CONCURRENCY:
//   The append targets are checked and then opened without a lock. Two runs
//   writing the same report or rejects file at once can both write a header.
//   Run one pipeline at a time per output location.
//
// =============================================================================

package persist

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/civil"
	"github.com/ginjaninja78/sales-etl/internal/types"
	"github.com/ginjaninja78/sales-etl/pkg/utils"
	"go.uber.org/zap"
)

// Persister is the output side of the pipeline.
type Persister interface {
	// WriteSnapshot writes ds to a file in dir named after date and returns
	// the file path.
	WriteSnapshot(ds types.Dataset, dir string, date civil.Date) (string, error)

	// AppendReport appends summary rows to the report at path.
	AppendReport(rows []types.DailySummaryRow, path string) error

	// AppendRejects appends rejected records to the sink at path.
	AppendRejects(ds types.Dataset, path string) error
}

// SnapshotName returns the snapshot file name for a run date.
func SnapshotName(date civil.Date) string {
	return fmt.Sprintf("ventas_limpias_%s.csv", utils.DayStamp(date))
}

// =============================================================================
// FILE PERSISTER
// =============================================================================

// FileWriter writes artifacts to the local filesystem.
type FileWriter struct {
	log *zap.Logger
}

// NewFileWriter creates a FileWriter. A nil logger disables logging.
func NewFileWriter(log *zap.Logger) *FileWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileWriter{log: log}
}

// WriteSnapshot implements Persister.
func (w *FileWriter) WriteSnapshot(ds types.Dataset, dir string, date civil.Date) (string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	path := filepath.Join(dir, SnapshotName(date))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer file.Close()

	if err := writeRecords(file, ds); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close snapshot: %w", err)
	}

	w.log.Info("clean data saved", zap.String("path", path), zap.Int("rows", ds.Len()))
	return path, nil
}

// AppendReport implements Persister.
func (w *FileWriter) AppendReport(rows []types.DailySummaryRow, path string) error {
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = row.Cells()
	}

	if err := appendCSV(path, types.DailySummaryHeader, cells); err != nil {
		return fmt.Errorf("failed to append report: %w", err)
	}

	w.log.Info("daily summary appended", zap.String("path", path), zap.Int("rows", len(rows)))
	return nil
}

// AppendRejects implements Persister.
func (w *FileWriter) AppendRejects(ds types.Dataset, path string) error {
	cells := make([][]string, ds.Len())
	for i, rec := range ds.Records {
		cells[i] = rec.Cells(ds.Schema)
	}

	if err := appendCSV(path, ds.Schema.Columns, cells); err != nil {
		return fmt.Errorf("failed to append rejects: %w", err)
	}
	return nil
}

// =============================================================================
// CSV HELPERS
// =============================================================================

// appendCSV appends rows to path, writing header first when the file does
// not exist yet.
func appendCSV(path string, header []string, rows [][]string) error {
	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}

	exists := utils.FileExists(path)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if !exists {
		if err := writer.Write(header); err != nil {
			return err
		}
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}

	return file.Close()
}

// writeRecords writes the header and every record of ds.
func writeRecords(file *os.File, ds types.Dataset) error {
	writer := csv.NewWriter(file)
	if err := writer.Write(ds.Schema.Columns); err != nil {
		return err
	}
	for _, rec := range ds.Records {
		if err := writer.Write(rec.Cells(ds.Schema)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
