package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sourcing/models"
	"sourcing/services"
	"sourcing/storage"
)

func partnerNameMap(partners []models.Partner) map[string]string {
	names := make(map[string]string, len(partners))
	for _, p := range partners {
		names[p.ID] = p.Name
	}
	return names
}

// ExportQuotesHandler godoc
// @Summary      Export quote comparison
// @Description  One row per quote with extracted metrics and score. The best scoring quote is highlighted in the xlsx export.
// @Tags         export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Security     BearerAuth
// @Param        id      path   string  true   "RFQ ID"
// @Param        format  query  string  false  "xlsx (default) or csv"
// @Success      200  {file}  file  "Quote comparison"
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/rfqs/{id}/responses/export [get]
func ExportQuotesHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		format := strings.ToLower(c.DefaultQuery("format", "xlsx"))
		if format != "xlsx" && format != "csv" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "format must be xlsx or csv"})
			return
		}

		sub, ok := loadSubmission(c, d, c.Param("id"))
		if !ok {
			return
		}

		ctx := c.Request.Context()
		responses, err := d.Store.ListResponses(ctx, sub.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list quotes", "details": err.Error()})
			return
		}
		partners, err := d.Store.ListPartners(ctx, models.PartnerFilter{})
		if err != nil {
			// Rows fall back to partner ids.
			d.Logger.Warn("partner directory unavailable for export", zap.Error(err))
		}
		names := partnerNameMap(partners)

		filename := fmt.Sprintf("quotes_%s.%s", sub.Reference, format)

		if format == "csv" {
			c.Header("Content-Type", "text/csv")
			c.Header("Content-Disposition", "attachment;filename="+filename)
			if err := services.WriteQuoteCSV(c.Writer, responses, names); err != nil {
				d.Logger.Error("failed to write quote csv", zap.String("rfq_id", sub.ID), zap.Error(err))
			}
			return
		}

		f, err := services.BuildQuoteWorkbook(sub, responses, names)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build workbook", "details": err.Error()})
			return
		}
		defer f.Close()

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment;filename="+filename)
		if err := f.Write(c.Writer); err != nil {
			d.Logger.Error("failed to write quote workbook", zap.String("rfq_id", sub.ID), zap.Error(err))
		}
	}
}

// GenerateRFQPDFHandler godoc
// @Summary      RFQ summary PDF
// @Description  One page RFQ summary for suppliers with a QR code linking to the reply page.
// @Tags         export
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "RFQ ID"
// @Success      200  {file}  file  "PDF"
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/rfqs/{id}/pdf [get]
func GenerateRFQPDFHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, ok := loadSubmission(c, d, c.Param("id"))
		if !ok {
			return
		}

		ctx := c.Request.Context()
		project, err := d.Store.GetProject(ctx, sub.ProjectID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project", "details": err.Error()})
			return
		}

		partners := make([]models.Partner, 0, len(sub.MatchedPartnerIDs))
		for _, id := range sub.MatchedPartnerIDs {
			p, err := d.Store.GetPartner(ctx, id)
			if err != nil {
				// Partners deleted after matching are left out.
				continue
			}
			partners = append(partners, *p)
		}

		respondURL := d.rfqLink(sub.ID) + "/respond"
		out, err := services.BuildRFQPDF(sub, project, partners, respondURL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF", "details": err.Error()})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=rfq_%s.pdf", sub.Reference))
		c.Data(http.StatusOK, "application/pdf", out)
	}
}
