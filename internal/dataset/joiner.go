package dataset

import (
	"sort"

	"marketintel/domain/apps"
)

// JoinType defines the type of join operation
type JoinType string

const (
	InnerJoin JoinType = "inner" // matching keys only
)

// CategoryColumn is the label of the joined category column, taken from the
// Android taxonomy
const CategoryColumn = "Category"

type side int

const (
	sideAndroid side = iota
	sideIOS
)

// joinColumn describes one column of the combined frame
type joinColumn struct {
	name    string
	side    side
	field   apps.Field
	kind    apps.ColumnKind
	text    func(apps.AppRecord) string
	numeric func(apps.AppRecord) apps.Optional[float64]
}

func textOf(name string, s side, f apps.Field, get func(apps.AppRecord) string) joinColumn {
	return joinColumn{name: name, side: s, field: f, kind: apps.KindText, text: get}
}

func numberOf(s side, f apps.Field, get func(apps.AppRecord) apps.Optional[float64]) joinColumn {
	p := apps.PlatformAndroid
	if s == sideIOS {
		p = apps.PlatformIOS
	}
	return joinColumn{name: apps.ColumnName(p, f), side: s, field: f, kind: apps.KindNumeric, numeric: get}
}

func rating(r apps.AppRecord) apps.Optional[float64] { return r.Rating }
func size(r apps.AppRecord) apps.Optional[float64]   { return r.SizeMB }
func price(r apps.AppRecord) apps.Optional[float64]  { return apps.Some(r.Price) }
func reviews(r apps.AppRecord) apps.Optional[float64] {
	return intToFloat(r.ReviewCount)
}
func installs(r apps.AppRecord) apps.Optional[float64] {
	return intToFloat(r.Installs)
}

func intToFloat(v apps.Optional[int64]) apps.Optional[float64] {
	if !v.Valid {
		return apps.None[float64]()
	}
	return apps.Some(float64(v.Value))
}

// combinedColumns is the output allow-list, in presentation order
var combinedColumns = []joinColumn{
	textOf(string(apps.FieldAppName), sideAndroid, apps.FieldAppName, func(r apps.AppRecord) string { return r.AppName }),
	textOf(CategoryColumn, sideAndroid, apps.FieldCategory, func(r apps.AppRecord) string { return r.Category }),
	numberOf(sideAndroid, apps.FieldRating, rating),
	numberOf(sideIOS, apps.FieldRating, rating),
	numberOf(sideAndroid, apps.FieldReviewCount, reviews),
	numberOf(sideIOS, apps.FieldReviewCount, reviews),
	numberOf(sideAndroid, apps.FieldPrice, price),
	numberOf(sideIOS, apps.FieldPrice, price),
	numberOf(sideAndroid, apps.FieldInstalls, installs),
	numberOf(sideAndroid, apps.FieldSize, size),
	numberOf(sideIOS, apps.FieldSize, size),
	textOf(apps.ColumnName(apps.PlatformAndroid, apps.FieldContentRating), sideAndroid, apps.FieldContentRating, func(r apps.AppRecord) string { return r.ContentRating }),
	textOf(apps.ColumnName(apps.PlatformIOS, apps.FieldContentRating), sideIOS, apps.FieldContentRating, func(r apps.AppRecord) string { return r.ContentRating }),
}

// CombinedColumnNames lists every column a join can produce, in order
func CombinedColumnNames() []string {
	names := make([]string, len(combinedColumns))
	for i, c := range combinedColumns {
		names[i] = c.name
	}
	return names
}

// Join performs an inner join of the two tables on canonical app name. Rows
// follow the Android table order. Columns whose source field is absent from
// the corresponding table are omitted. No overlap yields an empty frame.
func Join(android, ios apps.Table) *apps.Frame {
	iosByName := make(map[string]apps.AppRecord, ios.Len())
	for _, r := range ios.Records {
		iosByName[r.AppName] = r
	}

	var pairs [2][]apps.AppRecord
	for _, a := range android.Records {
		if i, ok := iosByName[a.AppName]; ok {
			pairs[sideAndroid] = append(pairs[sideAndroid], a)
			pairs[sideIOS] = append(pairs[sideIOS], i)
		}
	}

	tables := [2]apps.Table{android, ios}
	frame := apps.NewFrame()
	for _, col := range combinedColumns {
		if !hasField(tables[col.side], col.field) {
			continue
		}
		records := pairs[col.side]
		switch col.kind {
		case apps.KindNumeric:
			values := make([]apps.Optional[float64], len(records))
			for i, r := range records {
				values[i] = col.numeric(r)
			}
			frame.Columns = append(frame.Columns, apps.NumericColumn(col.name, values))
		default:
			values := make([]string, len(records))
			for i, r := range records {
				values[i] = col.text(r)
			}
			frame.Columns = append(frame.Columns, apps.TextColumn(col.name, values))
		}
	}
	return frame
}

// the join key is always present on both sides
func hasField(t apps.Table, f apps.Field) bool {
	return f == apps.FieldAppName || t.Has(f)
}

// FilterCategory keeps the rows whose Category equals category. An empty
// category or one of "All"/"all" returns the frame unchanged.
func FilterCategory(frame *apps.Frame, category string) *apps.Frame {
	if category == "" || category == "All" || category == "all" {
		return frame
	}
	col, ok := frame.Column(CategoryColumn)
	if !ok {
		return frame
	}
	return frame.Filter(func(i int) bool { return col.Text[i] == category })
}

// Categories returns the distinct non-empty categories, sorted
func Categories(frame *apps.Frame) []string {
	col, ok := frame.Column(CategoryColumn)
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, c := range col.Text {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
