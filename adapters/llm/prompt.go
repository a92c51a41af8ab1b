package llm

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"marketintel/domain/insights"
)

// EmptyStatsMessage is the summary returned when no metric was eligible
const EmptyStatsMessage = "No numeric metrics found for statistical analysis."

// FormatStatsTable renders the rows as an aligned plain-text table
func FormatStatsTable(rows []insights.StatsRow) string {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Metric\tMean\tStd Dev\t95% CI\tp-Value\tEffect Size")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%s\t%.4f\t%.3f\n",
			r.Metric, r.Mean, r.StdDev, r.CI, r.PValue, r.EffectSize)
	}
	tw.Flush()
	return strings.TrimRight(buf.String(), "\n")
}

// BuildSummaryPrompt asks for an executive summary of a statistics table
func BuildSummaryPrompt(rows []insights.StatsRow) string {
	var b strings.Builder
	b.WriteString("Here is the statistical summary of apps listed on both Google Play and the App Store:\n\n")
	b.WriteString(FormatStatsTable(rows))
	b.WriteString("\n\n")
	b.WriteString("Please write a clear, concise executive summary highlighting:\n")
	b.WriteString("- Metrics with significant p-values (< 0.05)\n")
	b.WriteString("- Metrics with high or low effect sizes\n")
	b.WriteString("- Confidence intervals interpretation\n")
	b.WriteString("- Key takeaways for decision-makers\n\n")
	b.WriteString("Provide actionable recommendations based on these insights.\n")
	return b.String()
}
