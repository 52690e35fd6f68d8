package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfLineHeight = 4.5
	pdfPadding    = 1.0
)

// PDFExporter renders datasets into a landscape table whose cells wrap their text, so
// multi-activity timetable cells stay readable.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(false, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	pageWidth, pageHeight := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(data.Headers))

	writeHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(220, 230, 241)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	writeHeader()

	for _, row := range data.Rows {
		lines := 1
		for _, header := range data.Headers {
			if n := len(pdf.SplitLines([]byte(tr(row[header])), colWidth-2*pdfPadding)); n > lines {
				lines = n
			}
		}
		rowHeight := float64(lines)*pdfLineHeight + 2*pdfPadding
		if pdf.GetY()+rowHeight > pageHeight-bottom {
			pdf.AddPage()
			writeHeader()
		}

		x, y := pdf.GetXY()
		for i, header := range data.Headers {
			cellX := x + float64(i)*colWidth
			pdf.Rect(cellX, y, colWidth, rowHeight, "D")
			pdf.SetXY(cellX+pdfPadding, y+pdfPadding)
			pdf.MultiCell(colWidth-2*pdfPadding, pdfLineHeight, tr(row[header]), "", "L", false)
		}
		pdf.SetXY(x, y+rowHeight)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
