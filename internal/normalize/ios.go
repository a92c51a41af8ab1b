package normalize

import (
	"strings"

	"github.com/tidwall/gjson"

	"marketintel/domain/apps"
)

// App Store search response keys
const (
	keyTitle         = "title"
	keyPrimaryGenre  = "primaryGenreName"
	keyGenres        = "genres"
	keyScore         = "score"
	keyReviews       = "reviews"
	keySize          = "size"
	keyFree          = "free"
	keyPrice         = "price"
	keyUpdated       = "updated"
	keyContentRating = "contentRating"
	keyOSVersion     = "requiredOsVersion"
)

var iosFields = []apps.Field{
	apps.FieldAppName,
	apps.FieldCategory,
	apps.FieldRating,
	apps.FieldReviewCount,
	apps.FieldSize,
	apps.FieldType,
	apps.FieldPrice,
	apps.FieldLastUpdated,
	apps.FieldContentRating,
	apps.FieldVersion,
}

// IOS normalizes a live App Store search response, a JSON array of app
// objects. Anything else yields an empty table; non-object elements are skipped.
func (n *Normalizer) IOS(raw []byte) apps.Table {
	table := apps.NewTable(apps.PlatformIOS)
	if !gjson.ValidBytes(raw) {
		n.logger.Warn("[Normalizer] ios payload is not valid JSON, returning empty table")
		return table
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsArray() {
		n.logger.Warn("[Normalizer] ios payload is not a list of apps, returning empty table")
		return table
	}

	items := doc.Array()
	records := make([]apps.AppRecord, 0, len(items))
	skipped := 0
	for _, item := range items {
		if !item.IsObject() {
			skipped++
			continue
		}
		rec := iosRecord(item)
		if rec.RawName == SentinelAppName {
			continue
		}
		records = append(records, rec)
	}
	records = apps.DedupLast(records, func(r apps.AppRecord) string { return r.RawName })

	for _, f := range iosFields {
		table.Fields[f] = true
	}
	table, dropped := finish(table, records)
	n.logger.Info("[Normalizer] ios: %d items in, %d records out (non-object=%d, unnamed=%d)",
		len(items), table.Len(), skipped, dropped)
	return table
}

func iosRecord(item gjson.Result) apps.AppRecord {
	rec := apps.AppRecord{
		RawName:       item.Get(keyTitle).String(),
		Category:      iosCategory(item),
		Rating:        iosRating(item.Get(keyScore)),
		ReviewCount:   iosCount(item.Get(keyReviews)),
		Installs:      apps.None[int64](),
		Price:         iosPrice(item.Get(keyPrice)),
		SizeMB:        iosSize(item.Get(keySize)),
		Type:          apps.TypeFree,
		ContentRating: stringOr(item.Get(keyContentRating), apps.DefaultContentRating),
		Version:       stringOr(item.Get(keyOSVersion), apps.DefaultOSVersion),
		LastUpdated:   iosDate(item.Get(keyUpdated)),
		Platform:      apps.PlatformIOS,
	}
	if free := item.Get(keyFree); free.Exists() && free.Type != gjson.Null && !free.Bool() {
		rec.Type = apps.TypePaid
	}
	return rec
}

// iosCategory falls back from the primary genre to the first listed genre
func iosCategory(item gjson.Result) string {
	if g := strings.TrimSpace(item.Get(keyPrimaryGenre).String()); g != "" {
		return g
	}
	if g := strings.TrimSpace(item.Get(keyGenres + ".0").String()); g != "" {
		return g
	}
	return apps.DefaultCategory
}

func iosRating(v gjson.Result) apps.Optional[float64] {
	switch v.Type {
	case gjson.Number:
		return RatingValue(v.Float())
	case gjson.String:
		return ParseRating(v.Str)
	}
	return apps.None[float64]()
}

func iosCount(v gjson.Result) apps.Optional[int64] {
	switch v.Type {
	case gjson.Number:
		return ParseCount(v.Raw)
	case gjson.String:
		return ParseCount(v.Str)
	}
	return apps.None[int64]()
}

// iosPrice: an absent price means free, a present one goes through ParsePrice
func iosPrice(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		if f := v.Float(); f > 0 {
			return f
		}
		return 0
	case gjson.String:
		return ParsePrice(v.Str)
	}
	return 0
}

// iosSize accepts a byte count or a suffixed size label
func iosSize(v gjson.Result) apps.Optional[float64] {
	switch v.Type {
	case gjson.Number:
		return BytesToMB(v.Float())
	case gjson.String:
		if mb := ParseSize(v.Str); mb.Valid {
			return mb
		}
		if n := ParseCount(v.Str); n.Valid {
			return BytesToMB(float64(n.Value))
		}
	}
	return apps.None[float64]()
}

func iosDate(v gjson.Result) apps.Optional[string] {
	switch v.Type {
	case gjson.Number:
		return UnixDate(v.Float())
	case gjson.String:
		return ParseDate(v.Str)
	}
	return apps.None[string]()
}

func stringOr(v gjson.Result, def string) string {
	if s := strings.TrimSpace(v.String()); s != "" && v.Type != gjson.Null {
		return s
	}
	return def
}
