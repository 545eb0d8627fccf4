// =============================================================================
// Sales ETL - Shared Types
// =============================================================================
//
// This package contains the data model shared by every pipeline stage. It is
// kept separate from the stage packages to avoid import cycles. Types defined
// here are used by:
//   - ingest
//   - transform
//   - validation
//   - aggregate
//   - persist
//   - pipeline
//
// DATA MODEL:
//   RawTable  : text cells as read from the extracts (one RawRecord per row)
//   Dataset   : typed records, produced by the type coercion stage
//   DailySummaryRow / RankingEntry : aggregation outputs
//
// =============================================================================

package types

import (
	"database/sql"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COLUMN NAMES
// =============================================================================

// Column names known to the pipeline. Any other column kept by configuration
// travels through the pipeline untouched as an extra column.
const (
	ColFecha          = "fecha"
	ColProducto       = "producto"
	ColVendedor       = "vendedor"
	ColSucursal       = "sucursal"
	ColCantidad       = "cantidad"
	ColPrecioUnitario = "precio_unitario"
	ColMontoTotal     = "monto_total"
)

// CriticalColumns are the fields that may not be null once deduplication ran.
var CriticalColumns = []string{ColFecha, ColProducto, ColCantidad, ColPrecioUnitario}

// coreColumns are the columns that map to typed Record fields.
var coreColumns = []string{
	ColFecha, ColProducto, ColVendedor, ColSucursal,
	ColCantidad, ColPrecioUnitario, ColMontoTotal,
}

// IsCoreColumn reports whether col maps to a typed Record field.
func IsCoreColumn(col string) bool {
	return slices.Contains(coreColumns, col)
}

// =============================================================================
// SCHEMA
// =============================================================================

// Schema is the ordered list of columns carried by a table or dataset.
// Optional columns (vendedor, sucursal) are simply absent from Columns, so
// every stage checks Has before touching them.
type Schema struct {
	Columns []string
}

// NewSchema creates a schema from an ordered column list.
func NewSchema(columns []string) Schema {
	return Schema{Columns: slices.Clone(columns)}
}

// Has reports whether the schema contains col.
func (s Schema) Has(col string) bool {
	return slices.Contains(s.Columns, col)
}

// Index returns the position of col, or -1 if absent.
func (s Schema) Index(col string) int {
	return slices.Index(s.Columns, col)
}

// Missing returns the subset of required columns not present in the schema,
// preserving the order of required.
func (s Schema) Missing(required []string) []string {
	var missing []string
	for _, col := range required {
		if !s.Has(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Extra returns the columns that are not core columns, in schema order.
// Record.Extra holds their values in the same order.
func (s Schema) Extra() []string {
	var extra []string
	for _, col := range s.Columns {
		if !IsCoreColumn(col) {
			extra = append(extra, col)
		}
	}
	return extra
}

// With returns a copy of the schema with col appended (no-op if present).
func (s Schema) With(col string) Schema {
	if s.Has(col) {
		return NewSchema(s.Columns)
	}
	return NewSchema(append(slices.Clone(s.Columns), col))
}

// =============================================================================
// RAW TABLE
// =============================================================================

// RawRecord holds the text cells of one row, aligned with RawTable.Schema.
// A cell with Valid == false is null.
type RawRecord []sql.Null[string]

// RawTable is the untyped dataset produced by ingestion.
type RawTable struct {
	Schema Schema
	Rows   []RawRecord
}

// Len returns the number of rows.
func (t RawTable) Len() int {
	return len(t.Rows)
}

// Clone returns a deep copy of the table.
func (t RawTable) Clone() RawTable {
	rows := make([]RawRecord, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = slices.Clone(row)
	}
	return RawTable{Schema: NewSchema(t.Schema.Columns), Rows: rows}
}

// =============================================================================
// RECORD AND DATASET
// =============================================================================

// Record is one typed transaction row.
type Record struct {
	Fecha          sql.Null[time.Time]
	Producto       sql.Null[string]
	Vendedor       sql.Null[string]
	Sucursal       sql.Null[string]
	Cantidad       decimal.NullDecimal
	PrecioUnitario decimal.NullDecimal

	// MontoTotal is only populated by the aggregation stage.
	MontoTotal decimal.NullDecimal

	// Extra holds the values of Schema.Extra() columns, in order.
	Extra []sql.Null[string]
}

// Clone returns a copy of the record that shares no mutable state.
func (r Record) Clone() Record {
	r.Extra = slices.Clone(r.Extra)
	return r
}

// Cells formats the record in schema order for delimited output.
// Null values are written as empty cells.
func (r Record) Cells(schema Schema) []string {
	cells := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		v, ok := r.cell(schema, col)
		if ok {
			cells[i] = v
		}
	}
	return cells
}

// Key returns a string that is equal for two records exactly when every
// column holds the same value, null included.
func (r Record) Key(schema Schema) string {
	var b strings.Builder
	for _, col := range schema.Columns {
		v, ok := r.cell(schema, col)
		if ok {
			b.WriteByte('v')
			b.WriteString(v)
		} else {
			b.WriteByte('n')
		}
		b.WriteByte('\x1f')
	}
	return b.String()
}

// cell returns the formatted value of col and whether it is non-null.
func (r Record) cell(schema Schema, col string) (string, bool) {
	switch col {
	case ColFecha:
		if !r.Fecha.Valid {
			return "", false
		}
		return FormatTimestamp(r.Fecha.V), true
	case ColProducto:
		return r.Producto.V, r.Producto.Valid
	case ColVendedor:
		return r.Vendedor.V, r.Vendedor.Valid
	case ColSucursal:
		return r.Sucursal.V, r.Sucursal.Valid
	case ColCantidad:
		return formatNullDecimal(r.Cantidad)
	case ColPrecioUnitario:
		return formatNullDecimal(r.PrecioUnitario)
	case ColMontoTotal:
		return formatNullDecimal(r.MontoTotal)
	}

	idx := slices.Index(schema.Extra(), col)
	if idx < 0 || idx >= len(r.Extra) {
		return "", false
	}
	return r.Extra[idx].V, r.Extra[idx].Valid
}

// Dataset is an ordered sequence of records sharing one schema.
// Stages never modify a Dataset they receive; they return a new one.
type Dataset struct {
	Schema  Schema
	Records []Record
}

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d.Records)
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	records := make([]Record, len(d.Records))
	for i, r := range d.Records {
		records[i] = r.Clone()
	}
	return Dataset{Schema: NewSchema(d.Schema.Columns), Records: records}
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// FormatTimestamp writes a date as YYYY-MM-DD, adding the clock only when it
// is not midnight. Fractional seconds are kept, and a non-zero UTC offset is
// appended, so two distinct timestamps never format the same.
//
// EXAMPLE:
//
//	2024-01-01 00:00:00 UTC    -> "2024-01-01"
//	2024-01-01 10:00:00.1 UTC  -> "2024-01-01 10:00:00.1"
//	2024-01-01 10:00:00 +03:00 -> "2024-01-01 10:00:00 +03:00"
func FormatTimestamp(t time.Time) string {
	_, offset := t.Zone()
	if offset == 0 && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	if offset != 0 {
		return t.Format("2006-01-02 15:04:05.999999999 -07:00")
	}
	return t.Format("2006-01-02 15:04:05.999999999")
}

func formatNullDecimal(d decimal.NullDecimal) (string, bool) {
	if !d.Valid {
		return "", false
	}
	return d.Decimal.String(), true
}
