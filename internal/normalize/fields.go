package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"marketintel/domain/apps"
)

const (
	// MaxRating is the upper bound of both stores' star scale
	MaxRating = 5.0

	bytesPerMB = 1024 * 1024
)

// ParseSize converts a store size label to megabytes. "14M" is 14, "512k" is
// 0.5. Thousands separators are ignored. Anything else, including
// "Varies with device", is missing. Suffixes are case-sensitive.
func ParseSize(raw string) apps.Optional[float64] {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	var divisor float64
	switch {
	case strings.HasSuffix(s, "M"):
		divisor = 1
	case strings.HasSuffix(s, "k"):
		divisor = 1024
	default:
		return apps.None[float64]()
	}
	v, ok := parseFinite(strings.TrimSpace(s[:len(s)-1]))
	if !ok || v < 0 {
		return apps.None[float64]()
	}
	return apps.Some(v / divisor)
}

// BytesToMB converts a raw byte count to megabytes
func BytesToMB(bytes float64) apps.Optional[float64] {
	if math.IsNaN(bytes) || math.IsInf(bytes, 0) || bytes < 0 {
		return apps.None[float64]()
	}
	return apps.Some(bytes / bytesPerMB)
}

// ParseInstalls strips '+' and thousands separators from an install bucket
// such as "10,000+".
func ParseInstalls(raw string) apps.Optional[int64] {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "+", "")
	s = strings.ReplaceAll(s, ",", "")
	return ParseCount(s)
}

// ParseCount parses a non-negative integral count. "12" and "12.0" are
// accepted; "3.0M", "-1" and "" are missing.
func ParseCount(raw string) apps.Optional[int64] {
	s := strings.TrimSpace(raw)
	if s == "" {
		return apps.None[int64]()
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return apps.None[int64]()
		}
		return apps.Some(n)
	}
	v, ok := parseFinite(s)
	if !ok || v < 0 || v != math.Trunc(v) || v > math.MaxInt64 {
		return apps.None[int64]()
	}
	return apps.Some(int64(v))
}

// ParsePrice strips the currency symbol and parses the amount. Unparseable
// or negative prices are 0.
func ParsePrice(raw string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "$", ""))
	v, ok := parseFinite(s)
	if !ok || v < 0 {
		return 0
	}
	return v
}

// ParseRating parses a star rating, rejecting values outside [0, 5]
func ParseRating(raw string) apps.Optional[float64] {
	v, ok := parseFinite(strings.TrimSpace(raw))
	if !ok {
		return apps.None[float64]()
	}
	return RatingValue(v)
}

// RatingValue range-checks an already numeric rating
func RatingValue(v float64) apps.Optional[float64] {
	if math.IsNaN(v) || v < 0 || v > MaxRating {
		return apps.None[float64]()
	}
	return apps.Some(v)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"01/02/2006",
}

// ParseDate normalizes a timestamp to YYYY-MM-DD. Numeric input is read as
// unix seconds, or milliseconds when it is too large to be seconds.
func ParseDate(raw string) apps.Optional[string] {
	s := strings.TrimSpace(raw)
	if s == "" {
		return apps.None[string]()
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return apps.Some(t.Format(time.DateOnly))
		}
	}
	if v, ok := parseFinite(s); ok {
		return UnixDate(v)
	}
	return apps.None[string]()
}

// UnixDate formats a unix timestamp (seconds or milliseconds) as YYYY-MM-DD
func UnixDate(v float64) apps.Optional[string] {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return apps.None[string]()
	}
	// 1e11 seconds is year 5138; anything larger is milliseconds
	if v >= 1e11 {
		return apps.Some(time.UnixMilli(int64(v)).UTC().Format(time.DateOnly))
	}
	return apps.Some(time.Unix(int64(v), 0).UTC().Format(time.DateOnly))
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
