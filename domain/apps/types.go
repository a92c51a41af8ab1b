package apps

// Platform tags which marketplace a record came from
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// Field names a canonical App Record attribute
type Field string

const (
	FieldAppName        Field = "app_name"
	FieldCategory       Field = "category"
	FieldRating         Field = "rating"
	FieldReviewCount    Field = "review_count"
	FieldInstalls       Field = "installs"
	FieldPrice          Field = "price"
	FieldSize           Field = "size"
	FieldType           Field = "type"
	FieldContentRating  Field = "content_rating"
	FieldVersion        Field = "version"
	FieldCurrentVersion Field = "current_version"
	FieldLastUpdated    Field = "last_updated"
)

// Fallback values applied by the normalizers
const (
	TypeFree             = "Free"
	TypePaid             = "Paid"
	DefaultContentRating = "Everyone"
	DefaultCategory      = "Unknown"
	DefaultOSVersion     = "Varies with device"
)

// ColumnName is the platform-qualified column label used once two tables are
// joined, e.g. android_rating. app_name and category are shared keys and stay
// unqualified.
func ColumnName(p Platform, f Field) string {
	switch f {
	case FieldAppName, FieldCategory:
		return string(f)
	}
	return string(p) + "_" + string(f)
}

// AppRecord is one normalized application row
type AppRecord struct {
	AppName        string            `json:"app_name"`
	RawName        string            `json:"raw_name"`
	Category       string            `json:"category"`
	Rating         Optional[float64] `json:"rating"`
	ReviewCount    Optional[int64]   `json:"review_count"`
	Installs       Optional[int64]   `json:"installs"`
	Price          float64           `json:"price"`
	SizeMB         Optional[float64] `json:"size_mb"`
	Type           string            `json:"type"`
	ContentRating  string            `json:"content_rating"`
	Version        string            `json:"version"`
	CurrentVersion string            `json:"current_version,omitempty"`
	LastUpdated    Optional[string]  `json:"last_updated"`
	Platform       Platform          `json:"platform"`
}

// Table is a normalized, platform-tagged set of App Records. Fields lists the
// attributes the source actually carried; the joiner projects only those.
type Table struct {
	Platform Platform       `json:"platform"`
	Fields   map[Field]bool `json:"-"`
	Records  []AppRecord    `json:"records"`
}

// NewTable creates an empty table carrying the given fields
func NewTable(p Platform, fields ...Field) Table {
	t := Table{Platform: p, Fields: make(map[Field]bool, len(fields))}
	for _, f := range fields {
		t.Fields[f] = true
	}
	return t
}

// Len returns the number of records
func (t Table) Len() int {
	return len(t.Records)
}

// IsEmpty reports whether the table holds no records
func (t Table) IsEmpty() bool {
	return len(t.Records) == 0
}

// Has reports whether the source carried the field
func (t Table) Has(f Field) bool {
	return t.Fields[f]
}

// Names returns canonical app names in table order
func (t Table) Names() []string {
	names := make([]string, len(t.Records))
	for i, r := range t.Records {
		names[i] = r.AppName
	}
	return names
}

// Merge returns a new table holding t's records followed by other's,
// deduplicated by canonical name with the later record winning.
func (t Table) Merge(other Table) Table {
	platform := t.Platform
	if platform == "" {
		platform = other.Platform
	}
	merged := NewTable(platform)
	for f := range t.Fields {
		merged.Fields[f] = true
	}
	for f := range other.Fields {
		merged.Fields[f] = true
	}

	all := make([]AppRecord, 0, len(t.Records)+len(other.Records))
	all = append(all, t.Records...)
	all = append(all, other.Records...)
	merged.Records = DedupLast(all, func(r AppRecord) string { return r.AppName })
	return merged
}

// DedupLast keeps the last occurrence of each key. Surviving items keep the
// position of that last occurrence.
func DedupLast[T any](items []T, key func(T) string) []T {
	last := make(map[string]int, len(items))
	for i, item := range items {
		last[key(item)] = i
	}
	out := make([]T, 0, len(last))
	for i, item := range items {
		if last[key(item)] == i {
			out = append(out, item)
		}
	}
	return out
}
