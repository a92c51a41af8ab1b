package insights

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatsRow is the summary of one numeric column. JSON keys match the
// exported insight document.
type StatsRow struct {
	Metric     string  `json:"Metric"`
	Mean       float64 `json:"Mean"`
	StdDev     float64 `json:"Std Dev"`
	CI         string  `json:"95% CI"`
	PValue     float64 `json:"p-Value"`
	EffectSize float64 `json:"Effect Size"`
}

// Bundle is the assembled insight output: statistics plus narrative
type Bundle struct {
	StatsTable      []StatsRow `json:"stats_table"`
	Summary         string     `json:"summary"`
	NarrativeSource string     `json:"narrative_source,omitempty"`
	Degraded        bool       `json:"degraded,omitempty"`
	GeneratedAt     *time.Time `json:"generated_at,omitempty"`
}

// FormatCI renders a confidence interval as "[low, high]" with 2 decimals
func FormatCI(low, high float64) string {
	return fmt.Sprintf("[%.2f, %.2f]", low, high)
}

// ParseCI reverses FormatCI
func ParseCI(ci string) (low, high float64, err error) {
	_, err = fmt.Sscanf(ci, "[%f, %f]", &low, &high)
	return low, high, err
}

// HasStats reports whether any metric was eligible
func (b *Bundle) HasStats() bool {
	return b != nil && len(b.StatsTable) > 0
}

// MarshalIndent exports the bundle as indented JSON
func (b *Bundle) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// ParseBundle reads an exported insight document
func ParseBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse insight bundle: %w", err)
	}
	return &b, nil
}
