package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/gigworks/billing-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Arial"}
}

func (g *Generator) Generate(report model.EarningsReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Earnings report", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s — %s", formatDate(report.PeriodStart), formatDate(report.PeriodEnd)), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Best profession", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	if report.BestProfession != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s, total earned %s", report.BestProfession.Profession, report.BestProfession.TotalEarned), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, "No paid jobs in this period.", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Best clients", "", 1, "L", false, 0, "")

	headers := []string{"Client", "Paid"}
	colWidths := []float64{120, 40}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)
	for _, client := range report.Clients {
		drawTableRow(pdf, g.fontName, []string{client.FullName, client.Paid.String()}, colWidths, false)
	}
	if len(report.Clients) == 0 {
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 6, "No client payments in this period.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2006-01-02")
}
