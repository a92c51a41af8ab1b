package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"marketintel/adapters/excel"
	"marketintel/domain/apps"
	"marketintel/domain/core"
)

// Export formats for the combined dataset
const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
)

// ExportFormats lists the accepted export formats
var ExportFormats = []string{ExportCSV, ExportXLSX}

// Export writes the frame in the requested format
func Export(w io.Writer, frame *apps.Frame, format string) error {
	switch format {
	case ExportCSV, "":
		return WriteCSV(w, frame)
	case ExportXLSX:
		return WriteXLSX(w, frame)
	default:
		return core.NewUnsupportedFormatError(format, ExportFormats)
	}
}

// ExportContentType returns the MIME type for an export format
func ExportContentType(format string) string {
	if format == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// WriteCSV writes a header row and one line per combined record. Missing
// numeric values are written as empty cells.
func WriteCSV(w io.Writer, frame *apps.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(frame.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := 0; i < frame.Len(); i++ {
		record := make([]string, len(frame.Columns))
		for j, col := range frame.Columns {
			record[j] = cellText(col, i)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the frame as a single-sheet workbook
func WriteXLSX(w io.Writer, frame *apps.Frame) error {
	rows := make([][]any, frame.Len())
	for i := range rows {
		row := make([]any, len(frame.Columns))
		for j, col := range frame.Columns {
			row[j] = col.Value(i)
		}
		rows[i] = row
	}
	return excel.WriteWorkbook(w, frame.ColumnNames(), rows)
}

func cellText(col apps.Column, i int) string {
	if col.Kind != apps.KindNumeric {
		return col.Text[i]
	}
	if v, ok := col.Numbers[i].Get(); ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
