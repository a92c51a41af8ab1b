package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Baselines holds the hypothesised population mean per metric. Metrics
// without an entry use Default, which is 0 unless set.
type Baselines struct {
	Default float64            `yaml:"default"`
	Columns map[string]float64 `yaml:"columns"`
}

// For returns the baseline for a metric
func (b Baselines) For(metric string) float64 {
	if v, ok := b.Columns[metric]; ok {
		return v
	}
	return b.Default
}

// ParseBaselines reads a baselines document:
//
//	default: 0
//	columns:
//	  android_rating: 2.5
//	  ios_rating: 2.5
func ParseBaselines(data []byte) (Baselines, error) {
	var b Baselines
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Baselines{}, fmt.Errorf("failed to parse baselines: %w", err)
	}
	return b, nil
}

// LoadBaselines reads a baselines file. An empty path yields zero baselines.
func LoadBaselines(path string) (Baselines, error) {
	if path == "" {
		return Baselines{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Baselines{}, fmt.Errorf("failed to read baselines file: %w", err)
	}
	return ParseBaselines(data)
}
