package testing

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"

	"apicase/internal/jsonpath"
	"apicase/pkg/logging"
	pkgstrings "apicase/pkg/strings"
)

// Sheet names of the result workbook.
const (
	ResultsSheet  = "Results"
	FailuresSheet = "Failures"
)

var (
	resultsHeader  = []interface{}{"Name", "Category", "File", "Result", "Method", "Endpoint", "Status", "Attempts", "Condition Met", "Duration (ms)", "Error"}
	failuresHeader = []interface{}{"Name", "Check", "Expected", "Actual", "Message"}
)

// WriteJSONReport writes the suite result as indented JSON to path.
func WriteJSONReport(fsys afero.Fs, path string, suite TestSuiteResult) error {
	data, err := json.MarshalIndent(suite, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// WriteWorkbook writes a Results sheet with one row per case and a Failures
// sheet with one row per assertion failure.
func WriteWorkbook(fsys afero.Fs, path string, suite TestSuiteResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ResultsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(FailuresSheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	failStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
	})
	if err != nil {
		return err
	}

	if err := writeRow(f, ResultsSheet, 1, resultsHeader, headerStyle); err != nil {
		return err
	}
	if err := writeRow(f, FailuresSheet, 1, failuresHeader, headerStyle); err != nil {
		return err
	}

	failureRow := 2
	for i, cr := range suite.CaseResults {
		style := 0
		if failed(cr) {
			style = failStyle
		}
		row := []interface{}{
			cr.TestCase.Name,
			cr.TestCase.Category,
			cr.TestCase.File,
			string(cr.Result),
			cr.Method,
			cr.Endpoint,
			cr.StatusCode,
			cr.PollAttempts,
			cr.ConditionMet,
			cr.Duration.Milliseconds(),
			cell(cr.Error),
		}
		if err := writeRow(f, ResultsSheet, i+2, row, style); err != nil {
			return err
		}

		for _, fl := range cr.Failures {
			row := []interface{}{cr.TestCase.Name, fl.Check, cell(jsonpath.Stringify(fl.Expected)), cell(jsonpath.Stringify(fl.Actual)), cell(fl.Message)}
			if err := writeRow(f, FailuresSheet, failureRow, row, 0); err != nil {
				return err
			}
			failureRow++
		}
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	out, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create workbook: %w", err)
	}
	defer out.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, first, &values); err != nil {
		return err
	}
	if style == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

// fileReporter writes report files once the suite completes
type fileReporter struct {
	fs       afero.Fs
	json     string
	workbook string
}

// NewFileReporter creates a reporter that writes the configured report files at
// the end of the run. It returns nil when no file is configured.
func NewFileReporter(fsys afero.Fs, jsonPath, workbookPath string) TestReporter {
	if jsonPath == "" && workbookPath == "" {
		return nil
	}
	return &fileReporter{fs: fsys, json: jsonPath, workbook: workbookPath}
}

func (r *fileReporter) ReportStart(TestConfiguration) {}

func (r *fileReporter) ReportCaseStart(TestCase) {}

func (r *fileReporter) ReportCaseResult(TestCaseResult) {}

func (r *fileReporter) SetParallelMode(bool) {}

func (r *fileReporter) ReportSuiteResult(suite TestSuiteResult) {
	if r.json != "" {
		if err := WriteJSONReport(r.fs, r.json, suite); err != nil {
			logging.Error("Runner", err, "Failed to save JSON report to %s", r.json)
		} else {
			logging.Info("Runner", "JSON report saved to %s", r.json)
		}
	}
	if r.workbook != "" {
		if err := WriteWorkbook(r.fs, r.workbook, suite); err != nil {
			logging.Error("Runner", err, "Failed to save workbook report to %s", r.workbook)
		} else {
			logging.Info("Runner", "Workbook report saved to %s", r.workbook)
		}
	}
}

// cell fits free text into one workbook cell
func cell(s string) string {
	return pkgstrings.Truncate(s, pkgstrings.WorkbookCellMaxLen)
}
