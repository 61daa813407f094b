package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/GSDV/solomo/internal/core/domain"
)

// PDFExporter renders geofence activity reports to PDF.
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportActivityReport generates a PDF summarizing the registered
// regions and the geofence event log.
func (e *PDFExporter) ExportActivityReport(regions []domain.Region, events []domain.Event) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf)
	e.addSummary(pdf, regions, events)
	e.addRegionTable(pdf, regions)
	e.addEventTable(pdf, events)
	e.addFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, "Geofence Activity Report", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	dateStr := fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04"))
	pdf.CellFormat(0, 6, dateStr, "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func (e *PDFExporter) addSummary(pdf *gofpdf.Fpdf, regions []domain.Region, events []domain.Event) {
	counts := map[domain.EventKind]int{}
	for _, ev := range events {
		counts[ev.Kind]++
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Registered regions: %d", len(regions)),
		fmt.Sprintf("Total events: %d (enter: %d, exit: %d, dwell: %d)",
			len(events), counts[domain.EventEnter], counts[domain.EventExit], counts[domain.EventDwell]),
	}
	for _, line := range lines {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (e *PDFExporter) addRegionTable(pdf *gofpdf.Fpdf, regions []domain.Region) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Regions", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	widths := []float64{35, 40, 35, 35, 25}
	headers := []string{"ID", "Label", "Latitude", "Longitude", "Radius (m)"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range regions {
		pdf.CellFormat(widths[0], 6, r.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, r.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.5f", r.Latitude), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.5f", r.Longitude), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.0f", r.RadiusM), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func (e *PDFExporter) addEventTable(pdf *gofpdf.Fpdf, events []domain.Event) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Events", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	widths := []float64{40, 20, 35, 35, 40}
	headers := []string{"Region", "Kind", "Latitude", "Longitude", "Time"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, ev := range events {
		pdf.CellFormat(widths[0], 6, ev.RegionID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, string(ev.Kind), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.5f", ev.Position.Latitude), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.5f", ev.Position.Longitude), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, ev.Timestamp.Format("01-02 15:04:05"), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf) {
	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 6, "solomo location engine", "", 0, "C", false, 0, "")
}
