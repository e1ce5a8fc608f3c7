// Package strings shortens free text for table cells and workbook reports.
package strings
