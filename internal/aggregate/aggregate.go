// =============================================================================
// Sales ETL - Aggregation
// =============================================================================
//
// This module computes the reporting views over the valid dataset:
//   - WithTotals    : monto_total = cantidad * precio_unitario (on a copy)
//   - DailySummary  : rollup by (calendar date, sucursal)
//   - TopProducts   : products by summed monto_total, highest first
//   - TopSellers    : sellers by summed monto_total (see SellerOrder)
//
// All functions are read-only over their input. Sums use decimal arithmetic,
// so the report totals match the snapshot to the cent.
//
// =============================================================================

package aggregate

import (
	"cmp"
	"database/sql"
	"slices"

	"cloud.google.com/go/civil"
	"github.com/ginjaninja78/sales-etl/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SinVendedor labels sales with no seller in the seller ranking.
const SinVendedor = "Sin Vendedor"

// =============================================================================
// TOTAL AMOUNT
// =============================================================================

// WithTotals returns a copy of ds with monto_total set on every record and
// appended to the schema. A null factor gives a null total.
func WithTotals(rc types.RunContext, ds types.Dataset) types.Dataset {
	out := ds.Clone()
	out.Schema = out.Schema.With(types.ColMontoTotal)

	for i := range out.Records {
		rec := &out.Records[i]
		if rec.Cantidad.Valid && rec.PrecioUnitario.Valid {
			rec.MontoTotal = decimal.NewNullDecimal(rec.Cantidad.Decimal.Mul(rec.PrecioUnitario.Decimal))
		} else {
			rec.MontoTotal = decimal.NullDecimal{}
		}
	}

	rc.Logger.Info("monto_total column created")
	return out
}

// =============================================================================
// DAILY SUMMARY
// =============================================================================

type summaryKey struct {
	fecha    civil.Date
	sucursal sql.Null[string]
}

// DailySummary groups ds by (fecha as a calendar date, sucursal), null
// sucursal included. Rows come out sorted by date, then sucursal, with the
// null sucursal last. Records without a fecha are not summarized.
//
// PARAMETERS:
//   - rc: The run context (logging only).
//   - ds: A dataset that went through WithTotals.
//
// RETURNS:
//   - One row per group. ticket_promedio is null when tickets is zero.
func DailySummary(rc types.RunContext, ds types.Dataset) []types.DailySummaryRow {
	groups := make(map[summaryKey]*types.DailySummaryRow)

	for _, rec := range ds.Records {
		if !rec.Fecha.Valid {
			continue
		}

		key := summaryKey{fecha: civil.DateOf(rec.Fecha.V), sucursal: rec.Sucursal}
		row, ok := groups[key]
		if !ok {
			row = &types.DailySummaryRow{Fecha: key.fecha, Sucursal: key.sucursal}
			groups[key] = row
		}

		if rec.MontoTotal.Valid {
			row.VentasTotales = row.VentasTotales.Add(rec.MontoTotal.Decimal)
		}
		if rec.Cantidad.Valid {
			row.Unidades = row.Unidades.Add(rec.Cantidad.Decimal)
		}
		if rec.Producto.Valid {
			row.Tickets++
		}
	}

	rows := make([]types.DailySummaryRow, 0, len(groups))
	for _, row := range groups {
		if row.Tickets > 0 {
			row.TicketPromedio = decimal.NewNullDecimal(row.VentasTotales.Div(decimal.NewFromInt(int64(row.Tickets))))
		}
		rows = append(rows, *row)
	}

	slices.SortFunc(rows, func(a, b types.DailySummaryRow) int {
		switch {
		case a.Fecha.Before(b.Fecha):
			return -1
		case a.Fecha.After(b.Fecha):
			return 1
		}
		return compareNullLast(a.Sucursal, b.Sucursal)
	})

	rc.Logger.Info("daily summary by sucursal generated", zap.Int("rows", len(rows)))
	return rows
}

func compareNullLast(a, b sql.Null[string]) int {
	switch {
	case a.Valid && b.Valid:
		return cmp.Compare(a.V, b.V)
	case a.Valid:
		return -1
	case b.Valid:
		return 1
	default:
		return 0
	}
}

// =============================================================================
// RANKINGS
// =============================================================================

// SellerOrder is the sort direction of the seller ranking.
type SellerOrder string

const (
	// SellersAscending lists the lowest-revenue sellers first. This is the
	// historical behavior of the seller ranking and stays the default.
	SellersAscending SellerOrder = "asc"

	// SellersDescending lists the highest-revenue sellers first, like the
	// product ranking.
	SellersDescending SellerOrder = "desc"
)

// TopProducts ranks products by summed monto_total, highest first, and
// keeps the first n. Records without a producto are not ranked.
func TopProducts(rc types.RunContext, ds types.Dataset, n int) []types.RankingEntry {
	totals := sumBy(ds, func(rec types.Record) (string, bool) {
		return rec.Producto.V, rec.Producto.Valid
	})

	ranking := rank(totals, true, n)
	rc.Logger.Info("top products computed", zap.Int("n", n))
	return ranking
}

// TopSellers ranks sellers by summed monto_total and keeps the first n.
// Records without a vendedor are grouped under SinVendedor.
func TopSellers(rc types.RunContext, ds types.Dataset, n int, order SellerOrder) []types.RankingEntry {
	totals := sumBy(ds, func(rec types.Record) (string, bool) {
		if !rec.Vendedor.Valid {
			return SinVendedor, true
		}
		return rec.Vendedor.V, true
	})

	if order == SellersAscending {
		rc.Logger.Warn("seller ranking lists the lowest revenue first; set top_sellers_order: desc to rank highest first")
	}

	ranking := rank(totals, order == SellersDescending, n)
	rc.Logger.Info("top sellers computed", zap.Int("n", n), zap.String("order", string(order)))
	return ranking
}

// sumBy sums monto_total per label. Records for which label reports false
// are skipped; a null monto_total adds nothing.
func sumBy(ds types.Dataset, label func(types.Record) (string, bool)) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, rec := range ds.Records {
		key, ok := label(rec)
		if !ok {
			continue
		}
		total := totals[key]
		if rec.MontoTotal.Valid {
			total = total.Add(rec.MontoTotal.Decimal)
		}
		totals[key] = total
	}
	return totals
}

// rank sorts the totals and keeps the first n. Equal totals are ordered by
// label so that the output does not depend on map iteration.
func rank(totals map[string]decimal.Decimal, descending bool, n int) []types.RankingEntry {
	entries := make([]types.RankingEntry, 0, len(totals))
	for label, total := range totals {
		entries = append(entries, types.RankingEntry{Label: label, Total: total})
	}

	slices.SortFunc(entries, func(a, b types.RankingEntry) int {
		c := a.Total.Cmp(b.Total)
		if descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})

	if n < 0 {
		n = 0
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
