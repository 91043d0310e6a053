package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcing/models"
)

func exportFixture() (*models.RFQSubmission, []models.RFQResponse) {
	sub := &models.RFQSubmission{
		ID:        "sub-1",
		Reference: "RFQ-AB12345",
		Status:    models.RFQInReview,
		RFQData: models.RFQData{
			Title: "Foldable Camp Table", Materials: "aluminum",
			TargetPrice: floatPtr(10), TargetMOQ: intPtr(500), Currency: "USD",
		},
		CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	responses := []models.RFQResponse{
		{
			ID: "r1", PartnerID: "p1", CreatedAt: sub.CreatedAt,
			ExtractedMetrics: &models.QuoteMetrics{UnitPrice: floatPtr(12), MOQ: intPtr(500), Currency: strPtr("USD")},
			AIAnalysis:       &models.QuoteAnalysis{Score: 62, Flags: []string{FlagPriceAboveTarget}, Summary: "Above target."},
		},
		{
			ID: "r2", PartnerID: "p2", CreatedAt: sub.CreatedAt,
			ExtractedMetrics: &models.QuoteMetrics{UnitPrice: floatPtr(9.5)},
			AIAnalysis:       &models.QuoteAnalysis{Score: 91, Flags: []string{}, Summary: "Within target."},
		},
		{ID: "r3", CreatedAt: sub.CreatedAt},
	}
	return sub, responses
}

func TestBuildQuoteWorkbook(t *testing.T) {
	sub, responses := exportFixture()
	f, err := BuildQuoteWorkbook(sub, responses, map[string]string{"p1": "Ningbo Alu Works"})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{quoteSheet}, f.GetSheetList())

	title, _ := f.GetCellValue(quoteSheet, "A1")
	assert.Equal(t, "RFQ-AB12345: Foldable Camp Table", title)
	status, _ := f.GetCellValue(quoteSheet, "B2")
	assert.Equal(t, "In Review", status)

	header, _ := f.GetCellValue(quoteSheet, "A4")
	assert.Equal(t, "Supplier", header)
	supplier, _ := f.GetCellValue(quoteSheet, "A5")
	assert.Equal(t, "Ningbo Alu Works", supplier)
	fallbackName, _ := f.GetCellValue(quoteSheet, "A6")
	assert.Equal(t, "p2", fallbackName)
	unknown, _ := f.GetCellValue(quoteSheet, "A7")
	assert.Equal(t, "Unknown supplier", unknown)
	notAnalyzed, _ := f.GetCellValue(quoteSheet, "I7")
	assert.Equal(t, "Not analyzed", notAnalyzed)

	bestStyle, _ := f.GetCellStyle(quoteSheet, "A6")
	otherStyle, _ := f.GetCellStyle(quoteSheet, "A5")
	assert.NotEqual(t, bestStyle, otherStyle)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	assert.NotZero(t, buf.Len())
}

func TestWriteQuoteCSV(t *testing.T) {
	_, responses := exportFixture()
	var buf bytes.Buffer
	require.NoError(t, WriteQuoteCSV(&buf, responses, map[string]string{"p1": "Ningbo Alu Works"}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, quoteColumns, records[0])
	assert.Equal(t, []string{"Ningbo Alu Works", "12", "USD", "500"}, records[1][:4])
	assert.Equal(t, "62", records[1][6])
	assert.Equal(t, FlagPriceAboveTarget, records[1][7])
	assert.Equal(t, "Not analyzed", records[3][8])
}

func TestBuildRFQPDF(t *testing.T) {
	sub, _ := exportFixture()
	project := &models.Project{Dimensions: "80x60x70 cm", Certifications: "BIFMA"}
	partners := []models.Partner{{Name: "Ningbo Alu Works", Capabilities: []string{"Aluminum Extrusion"}}}

	out, err := BuildRFQPDF(sub, project, partners, "http://localhost:3000/rfqs/sub-1/respond")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateQRCode(t *testing.T) {
	png, err := GenerateQRCode("http://localhost:3000/rfqs/1/respond", 128)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "In Review", humanize("in_review"))
	assert.Equal(t, "Submitted", humanize("submitted"))
}
