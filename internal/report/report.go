// Package report renders an insight bundle as a downloadable document.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"marketintel/domain/core"
	"marketintel/domain/insights"
	"marketintel/internal/errors"
)

// Format is a report output format
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

// Formats lists the accepted format names
var Formats = []string{string(FormatMarkdown), string(FormatHTML), string(FormatPDF)}

const (
	Title          = "Insights Report"
	NoStatsText    = "No statistical summary data available."
	NoSummaryText  = "No executive summary available."
	reportBaseName = "insights_report"
)

// ParseFormat resolves a user-supplied format name. "markdown" is accepted
// as an alias for md. An empty name is rejected like any unknown one.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", errors.InvalidInput("unknown report format").
		WithCause(core.NewUnsupportedFormatError(name, Formats))
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// FileName returns the download name for the format
func (f Format) FileName() string {
	return reportBaseName + "." + string(f)
}

// Render produces the report document in the requested format
func Render(bundle *insights.Bundle, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return []byte(Markdown(bundle)), nil
	case FormatHTML:
		return HTML(bundle), nil
	case FormatPDF:
		return PDF(bundle)
	}
	return nil, errors.InvalidInput("unknown report format").
		WithCause(core.NewUnsupportedFormatError(string(format), Formats))
}

// Markdown renders the plain structured text report
func Markdown(bundle *insights.Bundle) string {
	var b strings.Builder
	b.WriteString("# " + Title + "\n\n")
	b.WriteString("## Confidence Scores\n\n")
	if bundle.HasStats() {
		for _, row := range bundle.StatsTable {
			b.WriteString(scoreLine(row) + "\n")
		}
	} else {
		b.WriteString(NoStatsText + "\n")
	}
	b.WriteString("\n## Executive Summary\n\n")
	b.WriteString(summaryText(bundle) + "\n")
	return b.String()
}

// HTML renders the markdown report to a standalone HTML page
func HTML(bundle *insights.Bundle) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(Markdown(bundle)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.Render(doc, renderer)

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	buf.WriteString("<title>" + Title + "</title>\n</head>\n<body>\n")
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}

func scoreLine(row insights.StatsRow) string {
	return fmt.Sprintf("- **%s**: Mean=%.2f, CI=%s, p=%v, Effect Size=%.3f",
		row.Metric, row.Mean, row.CI, row.PValue, row.EffectSize)
}

func summaryText(bundle *insights.Bundle) string {
	if bundle == nil || strings.TrimSpace(bundle.Summary) == "" {
		return NoSummaryText
	}
	return bundle.Summary
}
