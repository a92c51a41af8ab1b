package heuristic

import (
	"context"
	"strings"
	"testing"

	"marketintel/domain/insights"
)

func TestSummarize_Empty(t *testing.T) {
	got, err := NewNarrator().Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "No numeric metrics found for statistical analysis." {
		t.Errorf("unexpected empty-table summary: %q", got)
	}
}

func TestSummarize_ClassifiesMetrics(t *testing.T) {
	rows := []insights.StatsRow{
		{Metric: "android_rating", Mean: 4.3, StdDev: 0.2, CI: "[4.10, 4.50]", PValue: 0.0001, EffectSize: 21.5},
		{Metric: "ios_price", Mean: 0.1, StdDev: 1.2, CI: "[-0.90, 1.10]", PValue: 0.81, EffectSize: 0.083},
	}

	got, err := NewNarrator().Summarize(context.Background(), rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"android_rating: mean 4.30 (p=0.0001)",
		"android_rating shows a large effect",
		"ios_price shows a negligible effect",
		"[-0.90, 1.10]",
		"Prioritize android_rating",
		"Collect more data for ios_price",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "ios_price: mean") {
		t.Errorf("non-significant metric listed as significant:\n%s", got)
	}
}
