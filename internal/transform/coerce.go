package transform

import (
	"database/sql"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-etl/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// builtinDateLayouts are tried, in order, after any configured layouts.
// Numeric dates with slashes are read month first.
var builtinDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-1-2",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006/1/2",
	"20060102",
}

// Coercer converts the text table into typed records.
type Coercer struct {
	layouts []string
}

// NewCoercer creates a Coercer. Configured layouts take precedence over the
// built-in ones.
func NewCoercer(layouts []string) *Coercer {
	all := make([]string, 0, len(layouts)+len(builtinDateLayouts))
	all = append(all, layouts...)
	all = append(all, builtinDateLayouts...)
	return &Coercer{layouts: all}
}

// CoerceTypes parses fecha as a date and cantidad, precio_unitario (and
// monto_total, if present) as decimals. A value that does not parse becomes
// null; the stage itself never fails.
func (c *Coercer) CoerceTypes(rc types.RunContext, table types.RawTable) types.Dataset {
	schema := types.NewSchema(table.Schema.Columns)
	extra := schema.Extra()

	ds := types.Dataset{
		Schema:  schema,
		Records: make([]types.Record, len(table.Rows)),
	}

	invalid := make(map[string]int)

	for r, row := range table.Rows {
		rec := types.Record{}
		if len(extra) > 0 {
			rec.Extra = make([]sql.Null[string], 0, len(extra))
		}

		for i, col := range schema.Columns {
			cell := row[i]

			switch col {
			case types.ColFecha:
				rec.Fecha = c.parseDate(cell)
			case types.ColProducto:
				rec.Producto = cell
			case types.ColVendedor:
				rec.Vendedor = cell
			case types.ColSucursal:
				rec.Sucursal = cell
			case types.ColCantidad:
				rec.Cantidad = parseDecimal(cell)
			case types.ColPrecioUnitario:
				rec.PrecioUnitario = parseDecimal(cell)
			case types.ColMontoTotal:
				rec.MontoTotal = parseDecimal(cell)
			default:
				rec.Extra = append(rec.Extra, cell)
				continue
			}

			if cell.Valid && isNull(rec, col) {
				invalid[col]++
			}
		}

		ds.Records[r] = rec
	}

	for _, col := range schema.Columns {
		if n := invalid[col]; n > 0 {
			rc.Logger.Warn("unparsable values set to null", zap.String("column", col), zap.Int("count", n))
		}
	}

	return ds
}

// parseDate tries each layout in turn.
func (c *Coercer) parseDate(cell sql.Null[string]) sql.Null[time.Time] {
	if !cell.Valid {
		return sql.Null[time.Time]{}
	}
	value := strings.TrimSpace(cell.V)
	for _, layout := range c.layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return sql.Null[time.Time]{V: t, Valid: true}
		}
	}
	return sql.Null[time.Time]{}
}

func parseDecimal(cell sql.Null[string]) decimal.NullDecimal {
	if !cell.Valid {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(cell.V))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// isNull reports whether the typed value of a core column is null.
func isNull(rec types.Record, col string) bool {
	switch col {
	case types.ColFecha:
		return !rec.Fecha.Valid
	case types.ColProducto:
		return !rec.Producto.Valid
	case types.ColVendedor:
		return !rec.Vendedor.Valid
	case types.ColSucursal:
		return !rec.Sucursal.Valid
	case types.ColCantidad:
		return !rec.Cantidad.Valid
	case types.ColPrecioUnitario:
		return !rec.PrecioUnitario.Valid
	case types.ColMontoTotal:
		return !rec.MontoTotal.Valid
	}
	return false
}
