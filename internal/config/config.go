// =============================================================================
// Sales ETL - Configuration Module
// =============================================================================
//
// This module is responsible for loading the pipeline configuration. The
// configuration is a single YAML document (etl_config.yaml by default) whose
// values may be overridden by ETL_* environment variables, optionally loaded
// from a .env file by the command layer.
//
// LOADING ORDER:
//   1. Read and parse the YAML file
//   2. Apply environment overrides
//   3. Apply default values
//   4. Validate
//
// Any failure is fatal for the run: nothing is read or written afterwards.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/ginjaninja78/sales-etl/internal/types"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultPath is used when no --config flag is given.
const DefaultPath = "etl_config.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the pipeline configuration.
type Config struct {
	// =========================================================================
	// PATHS
	// =========================================================================

	// RawDataPath is the directory scanned for input extracts.
	RawDataPath string `yaml:"raw_data_path"`

	// ProcessedDataPath is the directory receiving the dated snapshot.
	ProcessedDataPath string `yaml:"processed_data_path"`

	// ReportPath is the running daily-summary report (append only).
	ReportPath string `yaml:"report_path"`

	// RejectsPath is the rejects sink (append only).
	// Default: "data/processed/rechazados.csv"
	RejectsPath string `yaml:"rejects_path"`

	// =========================================================================
	// COLUMNS
	// =========================================================================

	// ColumnsToKeep is the ordered set of columns retained right after
	// ingestion. It must include every critical column.
	ColumnsToKeep []string `yaml:"columns_to_keep"`

	// TextColumns are normalized (trim, null tokens, diacritics).
	// Default: producto, vendedor, sucursal
	TextColumns []string `yaml:"text_columns"`

	// DateFormats are Go time layouts tried before the built-in ones when
	// parsing fecha.
	DateFormats []string `yaml:"date_formats"`

	// =========================================================================
	// CSV SETTINGS
	// =========================================================================

	CSVSettings CSVSettings `yaml:"csv_settings"`

	// =========================================================================
	// RANKINGS
	// =========================================================================

	// TopN is the length of the product and seller rankings.
	// Default: 5
	TopN int `yaml:"top_n"`

	// TopSellersOrder is the sort direction of the seller ranking: "asc"
	// keeps the historical behavior (lowest revenue first), "desc" ranks
	// the highest revenue first.
	// Default: "asc"
	TopSellersOrder string `yaml:"top_sellers_order"`

	// =========================================================================
	// LOGGING
	// =========================================================================

	// LogDir receives the dated log file etl_DD-MM-YYYY.log.
	// Default: "logs"
	LogDir string `yaml:"log_dir"`

	// LogLevel is one of debug, info, warn, error.
	// Default: "debug"
	LogLevel string `yaml:"log_level"`
}

// CSVSettings contains settings for reading the delimited extracts.
type CSVSettings struct {
	// Delimiter separates fields. Accepts a single character or one of
	// "tab", "pipe", "semicolon".
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding of the input files: ISO-8859-1, Windows-1252 or UTF-8.
	// Default: "ISO-8859-1"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads, overrides, defaults and validates the configuration at path.
//
// PARAMETERS:
//   - path: The path to the YAML configuration file.
//
// RETURNS:
//   - A pointer to the loaded Config.
//   - An error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse builds a Config from YAML bytes, applying environment overrides,
// defaults and validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides replaces file values with ETL_* environment variables
// when they are set.
func applyEnvOverrides(cfg *Config) {
	overrides := map[string]*string{
		"ETL_RAW_DATA_PATH":       &cfg.RawDataPath,
		"ETL_PROCESSED_DATA_PATH": &cfg.ProcessedDataPath,
		"ETL_REPORT_PATH":         &cfg.ReportPath,
		"ETL_REJECTS_PATH":        &cfg.RejectsPath,
		"ETL_LOG_DIR":             &cfg.LogDir,
		"ETL_LOG_LEVEL":           &cfg.LogLevel,
	}
	for env, field := range overrides {
		if v, ok := os.LookupEnv(env); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}
}

// applyDefaults sets default values for any unset option.
func applyDefaults(cfg *Config) {
	if cfg.RejectsPath == "" {
		cfg.RejectsPath = "data/processed/rechazados.csv"
	}
	if len(cfg.TextColumns) == 0 {
		cfg.TextColumns = []string{types.ColProducto, types.ColVendedor, types.ColSucursal}
	}
	if cfg.CSVSettings.Delimiter == "" {
		cfg.CSVSettings.Delimiter = ","
	}
	if cfg.CSVSettings.Encoding == "" {
		cfg.CSVSettings.Encoding = "ISO-8859-1"
	}
	if cfg.TopN == 0 {
		cfg.TopN = 5
	}
	if cfg.TopSellersOrder == "" {
		cfg.TopSellersOrder = "asc"
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks that the configuration can drive a run.
// Every returned error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	required := map[string]string{
		"raw_data_path":       c.RawDataPath,
		"processed_data_path": c.ProcessedDataPath,
		"report_path":         c.ReportPath,
	}
	for _, key := range []string{"raw_data_path", "processed_data_path", "report_path"} {
		if strings.TrimSpace(required[key]) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidConfig, key)
		}
	}

	if len(c.ColumnsToKeep) == 0 {
		return fmt.Errorf("%w: columns_to_keep is required", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.ColumnsToKeep))
	for _, col := range c.ColumnsToKeep {
		if seen[col] {
			return fmt.Errorf("%w: column %q listed twice in columns_to_keep", ErrInvalidConfig, col)
		}
		seen[col] = true
	}

	if slices.Contains(c.ColumnsToKeep, types.ColMontoTotal) {
		return fmt.Errorf("%w: %s is derived and cannot be kept from the input", ErrInvalidConfig, types.ColMontoTotal)
	}

	if missing := types.NewSchema(c.ColumnsToKeep).Missing(types.CriticalColumns); len(missing) > 0 {
		return fmt.Errorf("%w: columns_to_keep is missing critical columns %v", ErrInvalidConfig, missing)
	}

	if c.TopN < 0 {
		return fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidConfig, c.TopN)
	}

	switch c.TopSellersOrder {
	case "asc", "desc":
	default:
		return fmt.Errorf("%w: top_sellers_order must be asc or desc, got %q", ErrInvalidConfig, c.TopSellersOrder)
	}

	switch strings.ToUpper(c.CSVSettings.Encoding) {
	case "ISO-8859-1", "LATIN1", "LATIN-1", "WINDOWS-1252", "CP1252", "UTF-8", "UTF8":
	default:
		return fmt.Errorf("%w: unsupported encoding %q", ErrInvalidConfig, c.CSVSettings.Encoding)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}

	return nil
}
