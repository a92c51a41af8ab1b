package heuristic

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"marketintel/adapters/llm"
	"marketintel/domain/insights"
	"marketintel/ports"
)

// Thresholds used to classify metrics
const (
	SignificanceLevel = 0.05
	LargeEffect       = 0.8
	SmallEffect       = 0.2
)

// Narrator writes a rule-based executive summary from the statistics table.
// It needs no network access and is used when no model is available.
type Narrator struct{}

var _ ports.NarrativeGenerator = (*Narrator)(nil)

// NewNarrator creates a new heuristic narrator
func NewNarrator() *Narrator {
	return &Narrator{}
}

func (n *Narrator) Name() string { return "heuristic" }

// Summarize never fails
func (n *Narrator) Summarize(ctx context.Context, rows []insights.StatsRow) (string, error) {
	if len(rows) == 0 {
		return llm.EmptyStatsMessage, nil
	}

	var significant, large, small []insights.StatsRow
	for _, r := range rows {
		if r.PValue < SignificanceLevel {
			significant = append(significant, r)
		}
		switch d := math.Abs(r.EffectSize); {
		case d >= LargeEffect:
			large = append(large, r)
		case d < SmallEffect:
			small = append(small, r)
		}
	}
	sort.SliceStable(large, func(i, j int) bool {
		return math.Abs(large[i].EffectSize) > math.Abs(large[j].EffectSize)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "This summary covers %d metrics computed over apps listed on both stores.\n\n", len(rows))

	b.WriteString("**Significant metrics (p < 0.05)**\n\n")
	if len(significant) == 0 {
		b.WriteString("- None of the metrics differ significantly from their baseline.\n")
	}
	for _, r := range significant {
		fmt.Fprintf(&b, "- %s: mean %.2f (p=%.4f)\n", r.Metric, r.Mean, r.PValue)
	}

	b.WriteString("\n**Effect sizes**\n\n")
	for _, r := range large {
		fmt.Fprintf(&b, "- %s shows a large effect (%.3f).\n", r.Metric, r.EffectSize)
	}
	for _, r := range small {
		fmt.Fprintf(&b, "- %s shows a negligible effect (%.3f).\n", r.Metric, r.EffectSize)
	}
	if len(large) == 0 && len(small) == 0 {
		b.WriteString("- All effects are moderate.\n")
	}

	b.WriteString("\n**Confidence intervals**\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "- %s: the mean lies in %s with 95%% confidence.\n", r.Metric, r.CI)
	}

	b.WriteString("\n**Recommendations**\n\n")
	b.WriteString(recommendation(rows, significant, large))
	return b.String(), nil
}

func recommendation(rows, significant, large []insights.StatsRow) string {
	var b strings.Builder
	if len(large) > 0 {
		fmt.Fprintf(&b, "- Prioritize %s when comparing cross-platform performance.\n", large[0].Metric)
	}
	if r, ok := widest(rows); ok {
		fmt.Fprintf(&b, "- Collect more data for %s; its interval %s is the widest.\n", r.Metric, r.CI)
	}
	if len(significant) < len(rows) {
		b.WriteString("- Treat non-significant metrics as inconclusive rather than as evidence of no difference.\n")
	}
	if b.Len() == 0 {
		b.WriteString("- Results are consistent; monitor the metrics as new data arrives.\n")
	}
	return b.String()
}

func widest(rows []insights.StatsRow) (insights.StatsRow, bool) {
	var best insights.StatsRow
	bestWidth := -1.0
	for _, r := range rows {
		low, high, err := insights.ParseCI(r.CI)
		if err != nil {
			continue
		}
		// compare widths relative to the mean so counts and ratings are comparable
		width := (high - low) / math.Max(math.Abs(r.Mean), 1)
		if width > bestWidth {
			best, bestWidth = r, width
		}
	}
	return best, bestWidth > 0
}
