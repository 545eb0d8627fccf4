package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// parseXLSX reads the first sheet of a workbook extract. The first non-empty
// row is the header; cells are read with their display formatting.
func parseXLSX(filePath string) (*sheet, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	allRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	start := 0
	for start < len(allRows) && isRowEmpty(allRows[start]) {
		start++
	}
	if start == len(allRows) {
		return nil, ErrEmptyFile
	}

	headers := cleanHeaders(allRows[start])
	rows := make([][]string, 0, len(allRows)-start-1)
	for i := start + 1; i < len(allRows); i++ {
		row := allRows[i]
		if isRowEmpty(row) {
			continue
		}
		// Trailing cells beyond the header are formatting artifacts in
		// workbooks, not data.
		if len(row) > len(headers) {
			row = row[:len(headers)]
		}
		rows = append(rows, row)
	}

	return &sheet{Headers: headers, Rows: rows}, nil
}
