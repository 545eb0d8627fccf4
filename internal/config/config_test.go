package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
raw_data_path: data/raw
processed_data_path: data/processed
report_path: reports/resumen_diario.csv
columns_to_keep: [fecha, producto, vendedor, sucursal, cantidad, precio_unitario]
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "data/raw", cfg.RawDataPath)
	assert.Equal(t, "data/processed/rechazados.csv", cfg.RejectsPath)
	assert.Equal(t, []string{"producto", "vendedor", "sucursal"}, cfg.TextColumns)
	assert.Equal(t, ",", cfg.CSVSettings.Delimiter)
	assert.Equal(t, "ISO-8859-1", cfg.CSVSettings.Encoding)
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, "asc", cfg.TopSellersOrder)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("ETL_RAW_DATA_PATH", "/srv/extracts")
	t.Setenv("ETL_LOG_LEVEL", "info")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "/srv/extracts", cfg.RawDataPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "data/processed", cfg.ProcessedDataPath)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing raw path",
			yaml: `
processed_data_path: out
report_path: r.csv
columns_to_keep: [fecha, producto, cantidad, precio_unitario]`,
		},
		{
			name: "missing critical column",
			yaml: `
raw_data_path: in
processed_data_path: out
report_path: r.csv
columns_to_keep: [fecha, producto, cantidad]`,
		},
		{
			name: "duplicated column",
			yaml: `
raw_data_path: in
processed_data_path: out
report_path: r.csv
columns_to_keep: [fecha, producto, cantidad, precio_unitario, fecha]`,
		},
		{
			name: "derived column kept",
			yaml: `
raw_data_path: in
processed_data_path: out
report_path: r.csv
columns_to_keep: [fecha, producto, cantidad, precio_unitario, monto_total]`,
		},
		{
			name: "bad seller order",
			yaml: `
raw_data_path: in
processed_data_path: out
report_path: r.csv
top_sellers_order: sideways
columns_to_keep: [fecha, producto, cantidad, precio_unitario]`,
		},
		{
			name: "bad encoding",
			yaml: `
raw_data_path: in
processed_data_path: out
report_path: r.csv
csv_settings: {encoding: EBCDIC}
columns_to_keep: [fecha, producto, cantidad, precio_unitario]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("raw_data_path: [unterminated"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etl_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "reports/resumen_diario.csv", cfg.ReportPath)
}
