package transform

import (
	"database/sql"

	"github.com/ginjaninja78/sales-etl/internal/types"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// categoryColumns are title-cased by StandardizeCategories.
var categoryColumns = []string{types.ColSucursal, types.ColProducto, types.ColVendedor}

// StandardizeCategories title-cases sucursal, producto and vendedor when the
// schema carries them. Nulls stay null.
//
// EXAMPLE:
//
//	"PAN integral" -> "Pan Integral"
func StandardizeCategories(rc types.RunContext, ds types.Dataset) types.Dataset {
	out := ds.Clone()
	caser := cases.Title(language.Spanish)

	title := func(v sql.Null[string]) sql.Null[string] {
		if !v.Valid {
			return v
		}
		return sql.Null[string]{V: caser.String(v.V), Valid: true}
	}

	var applied []string
	for _, col := range categoryColumns {
		if !out.Schema.Has(col) {
			continue
		}
		applied = append(applied, col)
		for i := range out.Records {
			rec := &out.Records[i]
			switch col {
			case types.ColSucursal:
				rec.Sucursal = title(rec.Sucursal)
			case types.ColProducto:
				rec.Producto = title(rec.Producto)
			case types.ColVendedor:
				rec.Vendedor = title(rec.Vendedor)
			}
		}
	}

	rc.Logger.Debug("categories standardized", zap.Strings("columns", applied))
	return out
}
