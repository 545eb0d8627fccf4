// =============================================================================
// Sales ETL - Transformation Stages
// =============================================================================
//
// This package holds the cleaning stages that run between ingestion and
// validation, plus the categorical standardization that runs after it.
//
// STAGES:
//   - NormalizeText        : trim, null tokens, diacritic stripping (RawTable)
//   - CoerceTypes          : text to typed Record values (RawTable -> Dataset)
//   - Deduplicate          : exact duplicates, then critical nulls (Dataset)
//   - StandardizeCategories: title case for producto/vendedor/sucursal
//
// Every stage receives a value and returns a new one. The input is never
// modified, so each stage can be run and tested on its own.
//
// =============================================================================

package transform

import (
	"database/sql"
	"strings"
	"unicode"

	"github.com/ginjaninja78/sales-etl/internal/types"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	texttransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nullTokens are text values that mean "no value" in the extracts.
var nullTokens = map[string]bool{
	"None": true,
	"nan":  true,
	"Nan":  true,
}

// =============================================================================
// TEXT ACTIONS
// =============================================================================

// TextAction is one step applied to a text cell. It returns the new value and
// false when the cell becomes null.
type TextAction func(value string) (string, bool)

// DefaultTextActions is the normalization chain applied to text columns.
//
// ORDER:
//  1. Trim surrounding whitespace
//  2. Strip diacritics (decompose, drop combining marks, recompose)
//  3. Trim again; a stripped mark may leave a bare space behind
//  4. Map null tokens to null
//
// Running the chain on its own output changes nothing.
var DefaultTextActions = []TextAction{
	TrimSpace,
	StripDiacritics,
	TrimSpace,
	NullTokens,
}

// TrimSpace removes leading and trailing whitespace.
func TrimSpace(value string) (string, bool) {
	return strings.TrimSpace(value), true
}

// NullTokens maps "None", "nan" and "Nan" to null. It runs after
// StripDiacritics in DefaultTextActions, so accented spellings such as "nán"
// are nulled as well.
func NullTokens(value string) (string, bool) {
	if nullTokens[value] {
		return "", false
	}
	return value, true
}

// StripDiacritics removes combining marks.
//
// EXAMPLE:
//
//	"Peñalolén" -> "Penalolen"
//	"Ørsted"    -> "Ørsted" (no decomposition, passes through)
func StripDiacritics(value string) (string, bool) {
	t := texttransform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := texttransform.String(t, value)
	if err != nil {
		return value, true
	}
	return out, true
}

// applyActions runs the chain, stopping as soon as the value becomes null.
func applyActions(value string, actions []TextAction) (string, bool) {
	for _, action := range actions {
		var ok bool
		value, ok = action(value)
		if !ok {
			return "", false
		}
	}
	return value, true
}

// =============================================================================
// TEXT NORMALIZER
// =============================================================================

// NormalizeText applies DefaultTextActions to every non-null cell of each
// configured column present in the table. Columns not in the table are
// skipped silently.
//
// PARAMETERS:
//   - rc: The run context (logging only).
//   - table: The ingested table. It is not modified.
//   - columns: The text columns to normalize.
//
// RETURNS:
//   - A new table with normalized text cells.
func NormalizeText(rc types.RunContext, table types.RawTable, columns []string) types.RawTable {
	out := table.Clone()

	var positions []int
	var normalized []string
	for _, col := range columns {
		if idx := out.Schema.Index(col); idx >= 0 {
			positions = append(positions, idx)
			normalized = append(normalized, col)
		}
	}

	nulled := 0
	for _, row := range out.Rows {
		for _, pos := range positions {
			if !row[pos].Valid {
				continue
			}
			v, ok := applyActions(row[pos].V, DefaultTextActions)
			if !ok {
				nulled++
				row[pos] = sql.Null[string]{}
				continue
			}
			row[pos] = sql.Null[string]{V: v, Valid: true}
		}
	}

	rc.Logger.Debug("text columns normalized",
		zap.Strings("columns", normalized),
		zap.Int("null_tokens", nulled),
	)

	return out
}
