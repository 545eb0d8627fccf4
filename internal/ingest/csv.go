// =============================================================================
// Sales ETL - CSV Reader
// =============================================================================
//
// This module reads one delimited extract. Extracts come from a point-of-sale
// export that writes a single-byte Western encoding (ISO-8859-1 by default),
// so the file is decoded through golang.org/x/text before the csv package
// sees it.
//
// FEATURES:
//   - Configurable delimiter (comma, pipe, tab, semicolon, any single byte)
//   - Configurable encoding (ISO-8859-1, Windows-1252, UTF-8 with BOM)
//   - Short rows are padded with nulls; long rows fail the whole file
//   - Blank lines are skipped
//
// =============================================================================

package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/sales-etl/internal/config"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmptyFile is returned for files with no header row.
var ErrEmptyFile = errors.New("file is empty")

// sheet is the header and cell grid of one extract, before null mapping.
type sheet struct {
	Headers []string
	Rows    [][]string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// parseCSV reads a delimited file.
//
// PARAMETERS:
//   - filePath: The path to the extract.
//   - settings: Delimiter and encoding.
//
// RETURNS:
//   - The parsed sheet.
//   - An error if the file cannot be opened, decoded or tokenized.
func parseCSV(filePath string, settings config.CSVSettings) (*sheet, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = bufio.NewReader(file)
	if dec := decoderFor(settings.Encoding); dec != nil {
		reader = transform.NewReader(reader, dec)
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, ErrEmptyFile
	}

	headers := cleanHeaders(allRows[0])
	rows := make([][]string, 0, len(allRows)-1)
	for i, row := range allRows[1:] {
		if isRowEmpty(row) {
			continue
		}
		if len(row) > len(headers) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+2, len(row), len(headers))
		}
		rows = append(rows, row)
	}

	return &sheet{Headers: headers, Rows: rows}, nil
}

// decoderFor returns the decoder for an encoding name. Unknown names fall
// back to ISO-8859-1; configuration validation rejects them earlier.
func decoderFor(name string) *encoding.Decoder {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252.NewDecoder()
	case "UTF-8", "UTF8":
		return unicode.UTF8BOM.NewDecoder()
	default:
		return charmap.ISO8859_1.NewDecoder()
	}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Row width is checked against the header by the caller.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// cleanHeaders trims header names, names blank headers after their position
// and disambiguates repeated names with a ".N" suffix.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	seen := make(map[string]int, len(headers))

	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, "\ufeff")
		}
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Unnamed: %d", i)
		}

		if n := seen[header]; n > 0 {
			seen[header] = n + 1
			header = fmt.Sprintf("%s.%d", header, n)
		} else {
			seen[header] = 1
		}

		cleaned[i] = header
	}

	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
