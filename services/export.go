package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sourcing/models"
)

const quoteSheet = "Quotes"

var titleCaser = cases.Title(language.Und)

// humanize turns "in_review" into "In Review".
func humanize(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

var quoteColumns = []string{
	"Supplier", "Unit Price", "Currency", "MOQ", "Lead Time (days)",
	"Payment Terms", "Score", "Flags", "Summary", "Received",
}

// BuildQuoteWorkbook lays out one row per quote for side-by-side comparison.
// The row with the best score is highlighted. partnerNames maps partner id
// to display name.
func BuildQuoteWorkbook(sub *models.RFQSubmission, responses []models.RFQResponse, partnerNames map[string]string) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(quoteSheet)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("error removing default sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Family: "Arial"},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Family: "Arial", Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, err
	}
	bestStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	f.SetCellValue(quoteSheet, "A1", fmt.Sprintf("%s: %s", sub.Reference, sub.RFQData.Title))
	f.SetCellStyle(quoteSheet, "A1", "A1", titleStyle)
	f.SetCellValue(quoteSheet, "A2", "Status")
	f.SetCellValue(quoteSheet, "B2", humanize(string(sub.Status)))
	if sub.RFQData.TargetPrice != nil {
		f.SetCellValue(quoteSheet, "C2", "Target Price")
		f.SetCellValue(quoteSheet, "D2", *sub.RFQData.TargetPrice)
	}
	if sub.RFQData.TargetMOQ != nil {
		f.SetCellValue(quoteSheet, "E2", "Target MOQ")
		f.SetCellValue(quoteSheet, "F2", *sub.RFQData.TargetMOQ)
	}

	const headerRow = 4
	for i, name := range quoteColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(quoteSheet, cell, name)
	}
	firstHeader, _ := excelize.CoordinatesToCellName(1, headerRow)
	lastHeader, _ := excelize.CoordinatesToCellName(len(quoteColumns), headerRow)
	f.SetCellStyle(quoteSheet, firstHeader, lastHeader, headerStyle)

	bestRow, bestScore := 0, -1
	for i, r := range responses {
		row := headerRow + 1 + i
		values := quoteRow(r, partnerNames)
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(quoteSheet, cell, v)
		}
		if r.AIAnalysis != nil && r.AIAnalysis.Score > bestScore {
			bestRow, bestScore = row, r.AIAnalysis.Score
		}
	}
	if bestRow > 0 {
		start, _ := excelize.CoordinatesToCellName(1, bestRow)
		end, _ := excelize.CoordinatesToCellName(len(quoteColumns), bestRow)
		f.SetCellStyle(quoteSheet, start, end, bestStyle)
	}

	f.SetColWidth(quoteSheet, "A", "A", 28)
	f.SetColWidth(quoteSheet, "B", "G", 14)
	f.SetColWidth(quoteSheet, "H", "H", 30)
	f.SetColWidth(quoteSheet, "I", "I", 60)
	f.SetColWidth(quoteSheet, "J", "J", 20)
	return f, nil
}

func quoteRow(r models.RFQResponse, partnerNames map[string]string) []interface{} {
	supplier := partnerNames[r.PartnerID]
	if supplier == "" {
		supplier = r.PartnerID
	}
	if supplier == "" {
		supplier = "Unknown supplier"
	}

	row := []interface{}{supplier, "", "", "", "", "", "", "", "", r.CreatedAt.Format("2006-01-02 15:04")}
	if m := r.ExtractedMetrics; m != nil {
		if m.UnitPrice != nil {
			row[1] = *m.UnitPrice
		}
		if m.Currency != nil {
			row[2] = *m.Currency
		}
		if m.MOQ != nil {
			row[3] = *m.MOQ
		}
		if m.LeadTimeDays != nil {
			row[4] = *m.LeadTimeDays
		}
		if m.PaymentTerms != nil {
			row[5] = *m.PaymentTerms
		}
	}
	if a := r.AIAnalysis; a != nil {
		row[6] = a.Score
		row[7] = strings.Join(a.Flags, ", ")
		row[8] = a.Summary
	} else {
		row[8] = "Not analyzed"
	}
	return row
}

// WriteQuoteCSV writes the same comparison rows as the workbook, without
// the title block or styling.
func WriteQuoteCSV(w io.Writer, responses []models.RFQResponse, partnerNames map[string]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(quoteColumns); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, r := range responses {
		values := quoteRow(r, partnerNames)
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = fmt.Sprint(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("error writing CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// GenerateQRCode encodes content as a PNG QR code.
func GenerateQRCode(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}

// BuildRFQPDF renders a one-page RFQ summary for suppliers with a QR code
// linking to respondURL.
func BuildRFQPDF(sub *models.RFQSubmission, project *models.Project, partners []models.Partner, respondURL string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFillColor(31, 78, 121)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(190, 14, "REQUEST FOR QUOTATION", "1", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(120, 8, tr("Reference: "+sub.Reference), "0", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(120, 6, tr("Status: "+humanize(string(sub.Status))), "0", 1, "L", false, 0, "")
	pdf.CellFormat(120, 6, "Issued: "+sub.CreatedAt.Format("2006-01-02"), "0", 1, "L", false, 0, "")
	if sub.RFQData.Deadline != "" {
		pdf.CellFormat(120, 6, tr("Reply by: "+sub.RFQData.Deadline), "0", 1, "L", false, 0, "")
	}

	if respondURL != "" {
		png, err := GenerateQRCode(respondURL, 256)
		if err != nil {
			return nil, fmt.Errorf("error generating QR code: %w", err)
		}
		name := "qr_" + sub.ID
		pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
		pdf.ImageOptions(name, 160, 28, 35, 35, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.SetXY(160, 64)
		pdf.SetFont("Arial", "B", 8)
		pdf.CellFormat(35, 4, "Scan to respond", "0", 0, "C", false, 0, "")
	}

	pdf.SetXY(10, 75)
	section := func(title string) {
		pdf.Ln(4)
		pdf.SetFillColor(70, 130, 180)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 9, title, "1", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "", 10)
	}
	row := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 7, tr(label), "1", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(140, 7, tr(value), "1", "L", false)
	}

	data := sub.RFQData
	section("PRODUCT")
	row("Title", data.Title)
	row("Process", data.Process)
	row("Materials", data.Materials)
	if project != nil {
		row("Dimensions", project.Dimensions)
		row("Certifications", project.Certifications)
		row("Description", project.Description)
	}

	section("COMMERCIAL TARGETS")
	if data.Quantity > 0 {
		row("Quantity", fmt.Sprintf("%d", data.Quantity))
	}
	if data.TargetPrice != nil {
		row("Target Unit Price", strings.TrimSpace(fmt.Sprintf("%.2f %s", *data.TargetPrice, data.Currency)))
	}
	if data.TargetMOQ != nil {
		row("Target MOQ", fmt.Sprintf("%d", *data.TargetMOQ))
	}
	row("Notes", data.Notes)

	if len(partners) > 0 {
		section("INVITED SUPPLIERS")
		for _, p := range partners {
			row(p.Name, strings.Join(p.Capabilities, ", "))
		}
	}

	pdf.SetAutoPageBreak(false, 0)
	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(190, 5, "Generated "+time.Now().UTC().Format("2006-01-02 15:04 MST"), "0", 0, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("error building pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}
