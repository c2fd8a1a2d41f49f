package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a calendar week into a printable PDF, one section
// per day.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document for the week.
func (e *PDFExporter) Render(week Week) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Revision plan, week of %s", week.WeekOf), "", 1, "C", false, 0, "")
	if week.Owner != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, week.Owner, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	currentDate := ""
	for _, item := range week.Items {
		if item.Date != currentDate {
			currentDate = item.Date
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, currentDate, "B", 1, "", false, 0, "")
		}
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(30, 7, fmt.Sprintf("%s-%s", item.Start, item.End), "", 0, "", false, 0, "")
		pdf.CellFormat(90, 7, item.Title, "", 0, "", false, 0, "")
		pdf.CellFormat(35, 7, item.Subject, "", 0, "", false, 0, "")
		pdf.CellFormat(35, 7, item.Type, "", 1, "", false, 0, "")
	}

	if len(week.Items) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 8, "Nothing planned this week.", "", 1, "", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
