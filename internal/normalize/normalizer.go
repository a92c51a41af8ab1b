package normalize

import (
	"marketintel/adapters/excel"
	"marketintel/domain/apps"
	"marketintel/internal"
)

// Normalizer turns raw platform payloads into normalized app tables. It never
// fails: unreadable input produces an empty table and a log line.
type Normalizer struct {
	logger *internal.Logger
}

// New creates a normalizer. A nil logger falls back to the default one.
func New(logger *internal.Logger) *Normalizer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Normalizer{logger: logger}
}

// NormalizeAndroid normalizes a packaged Google Play dump with the default logger
func NormalizeAndroid(data *excel.ExcelData) apps.Table {
	return New(nil).Android(data)
}

// NormalizeIOS normalizes an App Store search response with the default logger
func NormalizeIOS(raw []byte) apps.Table {
	return New(nil).IOS(raw)
}

// finish applies the steps shared by both platforms once records are parsed:
// canonical naming, dropping nameless rows and the final dedup by key.
func finish(t apps.Table, records []apps.AppRecord) (apps.Table, int) {
	kept := records[:0]
	dropped := 0
	for _, r := range records {
		r.AppName = CanonicalName(r.RawName)
		if r.AppName == "" {
			dropped++
			continue
		}
		kept = append(kept, r)
	}
	t.Records = apps.DedupLast(kept, func(r apps.AppRecord) string { return r.AppName })
	return t, dropped
}
