package apps

import "encoding/json"

// ColumnKind distinguishes text from numeric columns
type ColumnKind string

const (
	KindText    ColumnKind = "text"
	KindNumeric ColumnKind = "numeric"
)

// Column is one named, typed column of a Frame. Exactly one of Text or
// Numbers is populated, according to Kind.
type Column struct {
	Name    string
	Kind    ColumnKind
	Text    []string
	Numbers []Optional[float64]
}

// TextColumn builds a text column
func TextColumn(name string, values []string) Column {
	return Column{Name: name, Kind: KindText, Text: values}
}

// NumericColumn builds a numeric column
func NumericColumn(name string, values []Optional[float64]) Column {
	return Column{Name: name, Kind: KindNumeric, Numbers: values}
}

// Len returns the number of cells
func (c Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.Numbers)
	}
	return len(c.Text)
}

// Valid returns the non-missing numeric values in row order
func (c Column) Valid() []float64 {
	out := make([]float64, 0, len(c.Numbers))
	for _, v := range c.Numbers {
		if v.Valid {
			out = append(out, v.Value)
		}
	}
	return out
}

// Value returns the cell as string, float64 or nil (missing)
func (c Column) Value(i int) any {
	if c.Kind == KindNumeric {
		if v, ok := c.Numbers[i].Get(); ok {
			return v
		}
		return nil
	}
	return c.Text[i]
}

func (c Column) pick(rows []int) Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == KindNumeric {
		out.Numbers = make([]Optional[float64], len(rows))
		for j, i := range rows {
			out.Numbers[j] = c.Numbers[i]
		}
		return out
	}
	out.Text = make([]string, len(rows))
	for j, i := range rows {
		out.Text[j] = c.Text[i]
	}
	return out
}

// Frame is a column-oriented table whose rows are Combined Records. All
// columns have the same length.
type Frame struct {
	Columns []Column
}

// NewFrame creates a frame from equally sized columns
func NewFrame(columns ...Column) *Frame {
	return &Frame{Columns: columns}
}

// Len returns the number of rows
func (f *Frame) Len() int {
	if f == nil || len(f.Columns) == 0 {
		return 0
	}
	return f.Columns[0].Len()
}

// IsEmpty reports whether the frame has no rows
func (f *Frame) IsEmpty() bool {
	return f.Len() == 0
}

// ColumnNames returns column names in frame order
func (f *Frame) ColumnNames() []string {
	if f == nil {
		return nil
	}
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name
func (f *Frame) Column(name string) (Column, bool) {
	if f == nil {
		return Column{}, false
	}
	for _, c := range f.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// NumericColumns returns numeric columns in frame order
func (f *Frame) NumericColumns() []Column {
	if f == nil {
		return nil
	}
	var out []Column
	for _, c := range f.Columns {
		if c.Kind == KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

// Row returns row i keyed by column name
func (f *Frame) Row(i int) map[string]any {
	row := make(map[string]any, len(f.Columns))
	for _, c := range f.Columns {
		row[c.Name] = c.Value(i)
	}
	return row
}

// Rows returns every row keyed by column name
func (f *Frame) Rows() []map[string]any {
	rows := make([]map[string]any, f.Len())
	for i := range rows {
		rows[i] = f.Row(i)
	}
	return rows
}

// Filter returns a new frame with the rows for which keep is true
func (f *Frame) Filter(keep func(i int) bool) *Frame {
	var rows []int
	for i := 0; i < f.Len(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	out := &Frame{Columns: make([]Column, len(f.Columns))}
	for j, c := range f.Columns {
		out.Columns[j] = c.pick(rows)
	}
	return out
}

// MarshalJSON encodes the frame as an array of row objects. A frame without
// rows encodes as []; a nil *Frame is encoded by encoding/json as null.
func (f *Frame) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Rows())
}
