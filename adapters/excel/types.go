package excel

// RawRowData represents a row of raw spreadsheet data as header to cell text
type RawRowData map[string]string

// ExcelData represents the complete spreadsheet dataset
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether the header row names the column
func (d *ExcelData) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Get returns a cell and whether its column was present in the row
func (row RawRowData) Get(column string) (string, bool) {
	v, ok := row[column]
	return v, ok
}
