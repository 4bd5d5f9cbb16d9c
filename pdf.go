package main

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10  // Margin in mm
	pdfLineHeight = 6   // Line height in mm
	pdfFontSize   = 10
)

// generatePDF writes the report as a small PDF: a header, one table row per
// strategy and, if present, the per-file counts.
func generatePDF(r Report, outputPath string) error {
	logger().Info().Str("path", outputPath).Msg("generating PDF report")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	contentWidth := float64(pdfPageWidth - 2*pdfMargin)

	pdf.SetFont("Helvetica", "B", pdfFontSize+4)
	pdf.MultiCell(contentWidth, pdfLineHeight*1.5, "Line count report", "", "L", false)
	pdf.SetFont("Helvetica", "", pdfFontSize)
	pdf.MultiCell(contentWidth, pdfLineHeight, fmt.Sprintf("Directory: %s", r.Directory), "", "L", false)
	pdf.Ln(pdfLineHeight / 2)

	d := r.doc()
	widths := []float64{contentWidth * 0.4, contentWidth * 0.3, contentWidth * 0.3}
	pdf.SetFont("Helvetica", "B", pdfFontSize)
	for i, h := range []string{"Strategy", "Time (ms)", "Total lines"} {
		pdf.CellFormat(widths[i], pdfLineHeight, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Courier", "", pdfFontSize)
	for _, res := range d.Results {
		elapsed := "-"
		if res.ElapsedMS != nil {
			elapsed = fmt.Sprintf("%.3f", *res.ElapsedMS)
		}
		pdf.CellFormat(widths[0], pdfLineHeight, res.Strategy, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], pdfLineHeight, elapsed, "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], pdfLineHeight, fmt.Sprintf("%d", res.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if d.Agree != nil && !*d.Agree {
		pdf.Ln(pdfLineHeight / 2)
		pdf.SetTextColor(255, 0, 0)
		pdf.MultiCell(contentWidth, pdfLineHeight, "Warning: strategies disagree on the total.", "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	if len(r.Files) > 0 {
		pdf.Ln(pdfLineHeight)
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.CellFormat(contentWidth*0.75, pdfLineHeight, "File", "1", 0, "L", false, 0, "")
		pdf.CellFormat(contentWidth*0.25, pdfLineHeight, "Lines", "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Courier", "", pdfFontSize-1)
		for _, f := range r.Files {
			lines := fmt.Sprintf("%d", f.Lines)
			if f.Err != nil {
				lines = "error"
			}
			pdf.CellFormat(contentWidth*0.75, pdfLineHeight, f.Path, "1", 0, "L", false, 0, "")
			pdf.CellFormat(contentWidth*0.25, pdfLineHeight, lines, "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to save PDF to %s: %w", outputPath, err)
	}

	logger().Info().Str("path", outputPath).Msg("saved PDF report")
	return nil
}
