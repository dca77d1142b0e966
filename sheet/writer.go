package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// UpsertColumn writes values under header in the file at path.
// An existing column with that exact header is overwritten in place,
// otherwise the column is appended after the widest row, so unlabelled
// cells past the last header are kept. values[i] lands in data row i.
// No other cell is modified.
func UpsertColumn(path, header string, values []string) error {
	if !Supported(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if isCSV(path) {
		return upsertCSV(path, header, values)
	}
	return upsertWorkbook(path, header, values)
}

func upsertWorkbook(path, header string, values []string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return ErrNoSheet
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 || isBlank(rows[0]) {
		return ErrNoHeader
	}

	col := columnIndex(rows[0], header)
	if col < 0 {
		col = maxWidth(rows)
	}

	if err := setCell(f, sheetName, col, 0, header); err != nil {
		return err
	}
	for i, v := range values {
		if err := setCell(f, sheetName, col, i+1, v); err != nil {
			return err
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to write excel file: %w", err)
	}
	return nil
}

// setCell uses zero-based column and row indexes
func setCell(f *excelize.File, sheetName string, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Errorf("invalid cell position: %w", err)
	}
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}

func upsertCSV(path, header string, values []string) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}
	if len(rows) == 0 || isBlank(rows[0]) {
		return ErrNoHeader
	}

	width := maxWidth(rows)
	col := columnIndex(rows[0], header)
	if col < 0 {
		col = width
		width++
	}

	// Every row below the header needs a slot for the column, including
	// rows past the end of values.
	for len(rows) < len(values)+1 {
		rows = append(rows, nil)
	}
	for i := range rows {
		if len(rows[i]) < width {
			rows[i] = pad(rows[i], width)
		}
	}
	rows[0][col] = header
	for i, v := range values {
		rows[i+1][col] = v
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to encode csv: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write csv file: %w", err)
	}
	return nil
}

func columnIndex(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}
