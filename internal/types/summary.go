package types

import (
	"database/sql"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"
)

// DailySummaryHeader is the column order of the running report.
var DailySummaryHeader = []string{
	"fecha", "sucursal", "ventas_totales", "unidades", "tickets", "ticket_promedio",
}

// DailySummaryRow is one rollup row keyed by (Fecha, Sucursal).
type DailySummaryRow struct {
	Fecha          civil.Date
	Sucursal       sql.Null[string]
	VentasTotales  decimal.Decimal
	Unidades       decimal.Decimal
	Tickets        int
	TicketPromedio decimal.NullDecimal
}

// Cells formats the row in DailySummaryHeader order.
func (r DailySummaryRow) Cells() []string {
	promedio := ""
	if r.TicketPromedio.Valid {
		promedio = r.TicketPromedio.Decimal.String()
	}
	return []string{
		r.Fecha.String(),
		r.Sucursal.V,
		r.VentasTotales.String(),
		r.Unidades.String(),
		strconv.Itoa(r.Tickets),
		promedio,
	}
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r DailySummaryRow) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	cells := r.Cells()
	for i, key := range DailySummaryHeader {
		enc.AddString(key, cells[i])
	}
	return nil
}

// RankingEntry is one row of a top-N view.
type RankingEntry struct {
	Label string
	Total decimal.Decimal
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e RankingEntry) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("label", e.Label)
	enc.AddString("monto_total", e.Total.String())
	return nil
}
