package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/ginjaninja78/sales-etl/internal/config"
	"github.com/ginjaninja78/sales-etl/internal/ingest"
	"github.com/ginjaninja78/sales-etl/internal/persist"
	"github.com/ginjaninja78/sales-etl/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var runDate = civil.Date{Year: 2024, Month: 1, Day: 10}

type workspace struct {
	root string
	cfg  *config.Config
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	root := t.TempDir()
	raw := filepath.Join(root, "data", "raw")
	require.NoError(t, os.MkdirAll(raw, 0o755))

	cfg := &config.Config{
		RawDataPath:       raw,
		ProcessedDataPath: filepath.Join(root, "data", "processed"),
		ReportPath:        filepath.Join(root, "reports", "resumen_diario.csv"),
		RejectsPath:       filepath.Join(root, "data", "processed", "rechazados.csv"),
		ColumnsToKeep:     []string{"fecha", "producto", "vendedor", "sucursal", "cantidad", "precio_unitario"},
		TextColumns:       []string{"producto", "vendedor", "sucursal"},
		CSVSettings:       config.CSVSettings{Delimiter: ",", Encoding: "ISO-8859-1"},
		TopN:              5,
		TopSellersOrder:   "asc",
		LogLevel:          "debug",
	}
	require.NoError(t, cfg.Validate())

	return workspace{root: root, cfg: cfg}
}

func (w workspace) addExtract(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(w.cfg.RawDataPath, name), []byte(content), 0o644))
}

func (w workspace) snapshotPath() string {
	return filepath.Join(w.cfg.ProcessedDataPath, persist.SnapshotName(runDate))
}

func runContext(t *testing.T) types.RunContext {
	return types.NewRunContext(zaptest.NewLogger(t), runDate)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRun_Scenario(t *testing.T) {
	w := newWorkspace(t)
	w.addExtract(t, "ventas_centro.csv",
		"fecha,producto,vendedor,sucursal,cantidad,precio_unitario,id_caja\n"+
			"2024-01-01,Pan,Ana,Centro,2,10.0,1\n"+
			"2024-01-01,Pan,Ana,Centro,2,10.0,1\n"+
			"2024-01-01,Leche,Ana,Centro,-1,5.0,1\n")

	res, err := New(w.cfg, persist.NewFileWriter(nil)).Run(runContext(t))
	require.NoError(t, err)
	require.False(t, res.Empty)

	assert.Equal(t, 3, res.Stats.RowsIngested)
	assert.Equal(t, 1, res.Stats.DuplicatesRemoved)
	assert.Equal(t, 1, res.Stats.RowsValid)
	assert.Equal(t, 1, res.Stats.RowsRejected)

	require.Len(t, res.Summary, 1)
	assert.Equal(t, []string{"2024-01-01", "Centro", "20", "2", "1", "20"}, res.Summary[0].Cells())

	assert.Equal(t, w.snapshotPath(), res.SnapshotPath)
	assert.Equal(t, [][]string{
		{"fecha", "producto", "vendedor", "sucursal", "cantidad", "precio_unitario"},
		{"2024-01-01", "Pan", "Ana", "Centro", "2", "10"},
	}, readCSV(t, res.SnapshotPath))

	assert.Equal(t, [][]string{
		{"fecha", "producto", "vendedor", "sucursal", "cantidad", "precio_unitario"},
		{"2024-01-01", "Leche", "Ana", "Centro", "-1", "5"},
	}, readCSV(t, w.cfg.RejectsPath))

	assert.Equal(t, [][]string{
		types.DailySummaryHeader,
		{"2024-01-01", "Centro", "20", "2", "1", "20"},
	}, readCSV(t, w.cfg.ReportPath))

	require.Len(t, res.TopProducts, 1)
	assert.Equal(t, "Pan", res.TopProducts[0].Label)
	require.Len(t, res.TopSellers, 1)
	assert.Equal(t, "Ana", res.TopSellers[0].Label)
}

func TestRun_SecondRunAppends(t *testing.T) {
	w := newWorkspace(t)
	w.addExtract(t, "ventas.csv",
		"fecha,producto,vendedor,sucursal,cantidad,precio_unitario\n"+
			"2024-01-05,pan  integral,JOS\xc9,pe\xf1alol\xe9n,1,2.5\n"+
			"2024-01-11,Pan,Ana,Centro,1,1\n")

	p := New(w.cfg, persist.NewFileWriter(nil))
	_, err := p.Run(runContext(t))
	require.NoError(t, err)
	_, err = p.Run(runContext(t))
	require.NoError(t, err)

	report := readCSV(t, w.cfg.ReportPath)
	assert.Len(t, report, 3, "header once, one row per run")
	assert.Equal(t, []string{"2024-01-05", "Penalolen", "2.5", "1", "1", "2.5"}, report[1])

	rejects := readCSV(t, w.cfg.RejectsPath)
	assert.Len(t, rejects, 3, "header once, the future row once per run")

	snapshot := readCSV(t, w.snapshotPath())
	assert.Equal(t, []string{"2024-01-05", "Pan  Integral", "Jose", "Penalolen", "1", "2.5"}, snapshot[1])
}

func TestRun_EmptyDirectoryWritesNothing(t *testing.T) {
	w := newWorkspace(t)

	res, err := New(w.cfg, persist.NewFileWriter(nil)).Run(runContext(t))
	require.NoError(t, err)
	assert.True(t, res.Empty)

	assert.NoDirExists(t, w.cfg.ProcessedDataPath)
	assert.NoFileExists(t, w.cfg.ReportPath)
	assert.NoFileExists(t, w.cfg.RejectsPath)
}

func TestRun_UnreadableFilesOnly(t *testing.T) {
	w := newWorkspace(t)
	w.addExtract(t, "roto.csv", "fecha,producto\n2024-01-01,Pan,extra\n")

	res, err := New(w.cfg, persist.NewFileWriter(nil)).Run(runContext(t))
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.NoFileExists(t, w.cfg.ReportPath)
}

func TestRun_MissingColumnsAborts(t *testing.T) {
	w := newWorkspace(t)
	w.addExtract(t, "ventas.csv", "fecha,producto,cantidad\n2024-01-01,Pan,1\n")

	_, err := New(w.cfg, persist.NewFileWriter(nil)).Run(runContext(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrMissingColumns)

	assert.NoDirExists(t, w.cfg.ProcessedDataPath)
	assert.NoFileExists(t, w.cfg.ReportPath)
}

func TestRun_DryRun(t *testing.T) {
	w := newWorkspace(t)
	w.addExtract(t, "ventas.csv",
		"fecha,producto,vendedor,sucursal,cantidad,precio_unitario\n"+
			"2024-01-01,Pan,Ana,Centro,2,10\n"+
			"2024-01-01,Leche,Ana,Centro,0,5\n")

	res, err := New(w.cfg, persist.NewDryRun(nil)).Run(runContext(t))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.RowsRejected)
	assert.Len(t, res.Summary, 1)
	assert.NoDirExists(t, w.cfg.ProcessedDataPath)
	assert.NoFileExists(t, w.cfg.ReportPath)
}
