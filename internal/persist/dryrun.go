package persist

import (
	"path/filepath"

	"cloud.google.com/go/civil"
	"github.com/ginjaninja78/sales-etl/internal/types"
	"go.uber.org/zap"
)

// DryRun logs what a FileWriter would write and touches nothing.
type DryRun struct {
	log *zap.Logger
}

// NewDryRun creates a DryRun persister.
func NewDryRun(log *zap.Logger) *DryRun {
	if log == nil {
		log = zap.NewNop()
	}
	return &DryRun{log: log}
}

// WriteSnapshot implements Persister.
func (d *DryRun) WriteSnapshot(ds types.Dataset, dir string, date civil.Date) (string, error) {
	path := filepath.Join(dir, SnapshotName(date))
	d.log.Info("dry run: would write snapshot", zap.String("path", path), zap.Int("rows", ds.Len()))
	return path, nil
}

// AppendReport implements Persister.
func (d *DryRun) AppendReport(rows []types.DailySummaryRow, path string) error {
	d.log.Info("dry run: would append daily summary", zap.String("path", path), zap.Int("rows", len(rows)))
	return nil
}

// AppendRejects implements Persister.
func (d *DryRun) AppendRejects(ds types.Dataset, path string) error {
	d.log.Info("dry run: would append rejects", zap.String("path", path), zap.Int("rows", ds.Len()))
	return nil
}
