package validation

import (
	"database/sql"
	"errors"
	"math/rand"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/ginjaninja78/sales-etl/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var (
	today   = civil.Date{Year: 2024, Month: 1, Day: 10}
	columns = types.NewSchema([]string{"fecha", "producto", "vendedor", "sucursal", "cantidad", "precio_unitario"})
)

func record(fecha time.Time, producto string, cantidad, precio float64) types.Record {
	return types.Record{
		Fecha:          sql.Null[time.Time]{V: fecha, Valid: true},
		Producto:       sql.Null[string]{V: producto, Valid: true},
		Cantidad:       decimal.NewNullDecimal(decimal.NewFromFloat(cantidad)),
		PrecioUnitario: decimal.NewNullDecimal(decimal.NewFromFloat(precio)),
	}
}

func day(d civil.Date) time.Time {
	return d.In(time.UTC)
}

// recordingSink keeps what it was given.
type recordingSink struct {
	calls []types.Dataset
	path  string
	err   error
}

func (s *recordingSink) AppendRejects(ds types.Dataset, path string) error {
	s.calls = append(s.calls, ds)
	s.path = path
	return s.err
}

func TestPartition_Rules(t *testing.T) {
	nullPrice := record(day(today), "Pan", 1, 1)
	nullPrice.PrecioUnitario = decimal.NullDecimal{}

	nullQuantity := record(day(today), "Pan", 1, 1)
	nullQuantity.Cantidad = decimal.NullDecimal{}

	nullDate := record(day(today), "Pan", 1, 1)
	nullDate.Fecha = sql.Null[time.Time]{}

	tests := []struct {
		name     string
		rec      types.Record
		rejected bool
	}{
		{"valid on run date", record(day(today), "Pan", 2, 10), false},
		{"run date with clock", record(day(today).Add(23*time.Hour), "Pan", 2, 10), false},
		{"past date", record(day(today.AddDays(-30)), "Pan", 2, 10), false},
		{"one day in the future", record(day(today.AddDays(1)), "Pan", 2, 10), true},
		{"zero quantity", record(day(today), "Pan", 0, 10), true},
		{"negative quantity", record(day(today), "Pan", -1, 10), true},
		{"zero price", record(day(today), "Pan", 2, 0), true},
		{"negative price", record(day(today), "Pan", 2, -0.5), true},
		{"null price", nullPrice, true},
		{"null quantity", nullQuantity, true},
		{"null date", nullDate, true},
		{"fractional values", record(day(today), "Pan", 0.5, 0.01), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Partition(today, types.Dataset{Schema: columns, Records: []types.Record{tt.rec}})
			if tt.rejected {
				assert.Equal(t, 1, res.Rejected.Len())
				assert.Equal(t, 0, res.Valid.Len())
			} else {
				assert.Equal(t, 0, res.Rejected.Len())
				assert.Equal(t, 1, res.Valid.Len())
			}
		})
	}
}

func TestPartition_Law(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 50; iter++ {
		ds := types.Dataset{Schema: columns}
		n := rng.Intn(40)
		for i := 0; i < n; i++ {
			rec := record(
				day(today.AddDays(rng.Intn(5)-3)),
				"Pan",
				float64(rng.Intn(5)-1),
				float64(rng.Intn(5)-1),
			)
			if rng.Intn(10) == 0 {
				rec.Fecha = sql.Null[time.Time]{}
			}
			ds.Records = append(ds.Records, rec)
		}

		res := Partition(today, ds)
		require.Equal(t, ds.Len(), res.Valid.Len()+res.Rejected.Len())

		for _, rec := range res.Valid.Records {
			assert.True(t, rec.Fecha.Valid)
			assert.False(t, civil.DateOf(rec.Fecha.V).After(today))
			assert.True(t, rec.Cantidad.Decimal.IsPositive())
			assert.True(t, rec.PrecioUnitario.Decimal.IsPositive())
		}
	}
}

func TestPartition_KeepsOrderAndCountsRules(t *testing.T) {
	bad := record(day(today.AddDays(2)), "Leche", 0, 0)
	ds := types.Dataset{Schema: columns, Records: []types.Record{
		record(day(today), "Pan", 1, 1),
		bad,
		record(day(today), "Queso", 1, 1),
	}}

	res := Partition(today, ds)

	require.Equal(t, 2, res.Valid.Len())
	assert.Equal(t, "Pan", res.Valid.Records[0].Producto.V)
	assert.Equal(t, "Queso", res.Valid.Records[1].Producto.V)
	assert.Equal(t, map[string]int{"future_date": 1, "invalid_price": 1, "invalid_quantity": 1}, res.Violations)
	assert.Equal(t, columns.Columns, res.Rejected.Schema.Columns)
}

func TestValidate_Scenario(t *testing.T) {
	fecha := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ds := types.Dataset{Schema: columns, Records: []types.Record{
		record(fecha, "Pan", 2, 10),
		record(fecha, "Leche", -1, 5),
	}}

	core, logs := observer.New(zap.InfoLevel)
	rc := types.NewRunContext(zap.New(core), today)
	sink := &recordingSink{}

	res, err := NewValidator(sink, "out/rechazados.csv").Validate(rc, ds)
	require.NoError(t, err)

	require.Equal(t, 1, res.Valid.Len())
	assert.Equal(t, "Pan", res.Valid.Records[0].Producto.V)

	require.Len(t, sink.calls, 1)
	assert.Equal(t, "out/rechazados.csv", sink.path)
	assert.Equal(t, "Leche", sink.calls[0].Records[0].Producto.V)

	entries := logs.FilterMessage("records rejected by business rules").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 1, entries[0].ContextMap()["rows_rejected"])
	assert.EqualValues(t, 1, entries[0].ContextMap()["invalid_quantity"])
}

func TestValidate_NoRejectsSkipsSink(t *testing.T) {
	ds := types.Dataset{Schema: columns, Records: []types.Record{record(day(today), "Pan", 1, 1)}}
	sink := &recordingSink{}

	_, err := NewValidator(sink, "rechazados.csv").Validate(types.NewRunContext(nil, today), ds)
	require.NoError(t, err)
	assert.Empty(t, sink.calls)
}

func TestValidate_SinkError(t *testing.T) {
	ds := types.Dataset{Schema: columns, Records: []types.Record{record(day(today), "Pan", 0, 1)}}
	sinkErr := errors.New("disk full")

	_, err := NewValidator(&recordingSink{err: sinkErr}, "rechazados.csv").Validate(types.NewRunContext(nil, today), ds)
	assert.ErrorIs(t, err, sinkErr)
}
