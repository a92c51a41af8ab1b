package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"marketintel/domain/insights"
	"marketintel/internal/errors"
)

type rgb struct{ r, g, b int }

var (
	headerFill = rgb{0x2E, 0x86, 0xC1}
	bodyFill   = rgb{0xF4, 0xF6, 0xF6}
	gridColor  = rgb{0xAA, 0xB7, 0xB8}
)

var tableHeaders = []string{"Metric", "Mean", "Std Dev", "95% CI", "p-Value", "Effect Size"}

// column widths in mm, summing to the A4 text width with 15mm margins
var tableWidths = []float64{52, 22, 22, 40, 22, 22}

// PDF renders an A4 document with a styled statistics table and the summary
func PDF(bundle *insights.Bundle) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	heading(pdf, "Confidence Scores")
	if bundle.HasStats() {
		statsTable(pdf, tr, bundle.StatsTable)
	} else {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, NoStatsText, "", "L", false)
	}
	pdf.Ln(6)

	heading(pdf, "Executive Summary")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 5, tr(plainText(summaryText(bundle))), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to render pdf report")
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(0x1B, 0x4F, 0x72)
	pdf.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func statsTable(pdf *fpdf.Fpdf, tr func(string) string, rows []insights.StatsRow) {
	pdf.SetDrawColor(gridColor.r, gridColor.g, gridColor.b)
	pdf.SetLineWidth(0.2)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(headerFill.r, headerFill.g, headerFill.b)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range tableHeaders {
			pdf.CellFormat(tableWidths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetFillColor(bodyFill.r, bodyFill.g, bodyFill.b)
		pdf.SetTextColor(0, 0, 0)
	}

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	header()
	for i, row := range rows {
		if pdf.GetY()+6 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		cells := []string{
			tr(row.Metric),
			fmt.Sprintf("%.2f", row.Mean),
			fmt.Sprintf("%.2f", row.StdDev),
			row.CI,
			fmt.Sprintf("%.4f", row.PValue),
			fmt.Sprintf("%.3f", row.EffectSize),
		}
		fill := i%2 == 0
		for j, c := range cells {
			align := "R"
			if j == 0 {
				align = "L"
			}
			pdf.CellFormat(tableWidths[j], 6, c, "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

// plainText drops the inline markdown markers the core fonts would print literally
func plainText(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		switch {
		case strings.HasPrefix(trimmed, "#"):
			lines[i] = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		case strings.HasPrefix(trimmed, "> "):
			lines[i] = strings.TrimPrefix(trimmed, "> ")
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			lines[i] = strings.Repeat(" ", len(line)-len(trimmed)) + "- " + trimmed[2:]
		}
	}
	return strings.Join(lines, "\n")
}
