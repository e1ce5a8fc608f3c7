package directive

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

// Supported test-case file extensions.
const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
)

// IsSource reports whether path has a supported test-case extension.
func IsSource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtCSV, ExtXLSX:
		return true
	}
	return false
}

// LoadRows reads the rows of a CSV file or the first sheet of an XLSX workbook.
func LoadRows(fsys afero.Fs, path string) ([]Row, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test case %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ExtCSV:
		return readCSV(data, path)
	case ExtXLSX:
		return readXLSX(data, path)
	default:
		return nil, fmt.Errorf("unsupported test case file %s", path)
	}
}

func readCSV(data []byte, path string) ([]Row, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return toRows(records), nil
}

func readXLSX(data []byte, path string) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheets[0], path, err)
	}
	return toRows(pad(records)), nil
}

// pad extends every record to the widest one, the way a CSV export of the sheet
// would, since GetRows trims trailing empty cells.
func pad(records [][]string) [][]string {
	width := 0
	for _, rec := range records {
		width = max(width, len(rec))
	}
	for i, rec := range records {
		if len(rec) < width {
			records[i] = append(rec, make([]string, width-len(rec))...)
		}
	}
	return records
}

// toRows drops blank lines.
func toRows(records [][]string) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if blank(rec) {
			continue
		}
		rows = append(rows, Row(rec))
	}
	return rows
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
