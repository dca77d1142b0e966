package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrNoSheet           = errors.New("workbook does not contain any sheets")
	ErrNoHeader          = errors.New("table has no header row")
)

// Extensions lists the file extensions ReadTable understands
var Extensions = []string{".xlsx", ".xlsm", ".xltx", ".csv"}

// Table is the untyped content of a spreadsheet: the header row and the
// data rows below it, each padded to the header width. Width counts every
// occupied column, including unlabelled ones past the last header.
type Table struct {
	Path    string
	Sheet   string // Empty for CSV files
	Headers []string
	Rows    [][]string
	Width   int
}

// Column returns the index of the header equal to name, or -1
func (t *Table) Column(name string) int {
	return columnIndex(t.Headers, name)
}

// Cell returns the value at data row r and column c, "" when out of range
func (t *Table) Cell(r, c int) string {
	if r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return ""
	}
	return t.Rows[r][c]
}

// Supported reports whether the file extension is readable
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// ReadTable reads the first sheet of a workbook (or a CSV file) into a Table.
// Row 1 is the header row.
func ReadTable(path string) (*Table, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	var (
		sheetName string
		rows      [][]string
		err       error
	)
	if isCSV(path) {
		rows, err = readCSV(path)
	} else {
		sheetName, rows, err = readWorkbook(path)
	}
	if err != nil {
		return nil, err
	}

	rows = trimTrailingBlank(rows)
	if len(rows) == 0 || isBlank(rows[0]) {
		return nil, ErrNoHeader
	}

	headers := rows[0]
	t := &Table{
		Path:    path,
		Sheet:   sheetName,
		Headers: headers,
		Rows:    make([][]string, 0, len(rows)-1),
		Width:   maxWidth(rows),
	}
	for _, row := range rows[1:] {
		t.Rows = append(t.Rows, pad(row, len(headers)))
	}
	return t, nil
}

func readWorkbook(path string) (string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return "", nil, ErrNoSheet
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}
	return sheetName, rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv file: %w", err)
	}
	return rows, nil
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

// maxWidth is the length of the longest row
func maxWidth(rows [][]string) int {
	w := 0
	for _, row := range rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimTrailingBlank(rows [][]string) [][]string {
	n := len(rows)
	for n > 0 && isBlank(rows[n-1]) {
		n--
	}
	return rows[:n]
}
