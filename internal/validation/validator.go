// =============================================================================
// Sales ETL - Business Rule Validation
// =============================================================================
//
// This module splits the deduplicated dataset into valid and rejected
// records. A record is rejected when it breaks ANY business rule:
//   - future_date      : fecha is after the run date
//   - invalid_price    : precio_unitario is null or <= 0
//   - invalid_quantity : cantidad is null or <= 0
//   - missing_date     : fecha is null
//
// VALIDATION STRATEGY:
//   1. Partition is a pure function of (run date, dataset)
//   2. Rejected records are handed to a RejectSink, unchanged and in the
//      dataset's column order; no reason code is attached
//   3. Valid records keep their relative order
//
// Rejects are never retried by the pipeline.
//
// =============================================================================

package validation

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/ginjaninja78/sales-etl/internal/types"
	"go.uber.org/zap"
)

// =============================================================================
// RULES
// =============================================================================

// Rule is one row-level business rule.
type Rule struct {
	// Name identifies the rule in logs.
	Name string

	// Violated reports whether rec breaks the rule on the given run date.
	Violated func(rec types.Record, today civil.Date) bool
}

// Rules are the business rules, in reporting order.
var Rules = []Rule{
	{
		Name: "future_date",
		Violated: func(rec types.Record, today civil.Date) bool {
			return rec.Fecha.Valid && civil.DateOf(rec.Fecha.V).After(today)
		},
	},
	{
		Name: "invalid_price",
		Violated: func(rec types.Record, _ civil.Date) bool {
			return !rec.PrecioUnitario.Valid || !rec.PrecioUnitario.Decimal.IsPositive()
		},
	},
	{
		Name: "invalid_quantity",
		Violated: func(rec types.Record, _ civil.Date) bool {
			return !rec.Cantidad.Valid || !rec.Cantidad.Decimal.IsPositive()
		},
	},
	{
		Name: "missing_date",
		Violated: func(rec types.Record, _ civil.Date) bool {
			return !rec.Fecha.Valid
		},
	},
}

// =============================================================================
// PARTITION
// =============================================================================

// Result is the outcome of validating a dataset.
type Result struct {
	// Valid holds the records that passed every rule.
	Valid types.Dataset

	// Rejected holds the records that broke at least one rule.
	Rejected types.Dataset

	// Violations counts rejected records per rule name. A record breaking
	// two rules counts under both.
	Violations map[string]int
}

// Partition classifies every record of ds. Valid.Len() + Rejected.Len()
// always equals ds.Len().
func Partition(today civil.Date, ds types.Dataset) Result {
	res := Result{
		Valid:      types.Dataset{Schema: types.NewSchema(ds.Schema.Columns)},
		Rejected:   types.Dataset{Schema: types.NewSchema(ds.Schema.Columns)},
		Violations: make(map[string]int),
	}

	for _, rec := range ds.Records {
		rejected := false
		for _, rule := range Rules {
			if rule.Violated(rec, today) {
				res.Violations[rule.Name]++
				rejected = true
			}
		}

		if rejected {
			res.Rejected.Records = append(res.Rejected.Records, rec.Clone())
		} else {
			res.Valid.Records = append(res.Valid.Records, rec.Clone())
		}
	}

	return res
}

// =============================================================================
// VALIDATOR
// =============================================================================

// RejectSink receives rejected records.
type RejectSink interface {
	AppendRejects(ds types.Dataset, path string) error
}

// Validator partitions datasets and diverts rejects to a sink.
type Validator struct {
	sink RejectSink
	path string
}

// NewValidator creates a Validator that appends rejects to path via sink.
func NewValidator(sink RejectSink, path string) *Validator {
	return &Validator{sink: sink, path: path}
}

// Validate partitions ds on the run date carried by rc. Rejected records are
// appended to the sink only when there is at least one.
//
// RETURNS:
//   - The partition.
//   - An error if the sink cannot be written.
func (v *Validator) Validate(rc types.RunContext, ds types.Dataset) (Result, error) {
	log := rc.Logger

	res := Partition(rc.Today, ds)

	if res.Rejected.Len() > 0 {
		if err := v.sink.AppendRejects(res.Rejected, v.path); err != nil {
			return res, fmt.Errorf("failed to write rejects: %w", err)
		}

		fields := []zap.Field{
			zap.Int("rows_rejected", res.Rejected.Len()),
			zap.String("path", v.path),
		}
		for _, rule := range Rules {
			fields = append(fields, zap.Int(rule.Name, res.Violations[rule.Name]))
		}
		log.Error("records rejected by business rules", fields...)
	}

	log.Info("records valid after business rules", zap.Int("rows_valid", res.Valid.Len()))

	return res, nil
}
