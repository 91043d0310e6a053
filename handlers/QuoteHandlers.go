package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sourcing/models"
	"sourcing/services"
	"sourcing/storage"
)

// partnerName resolves a partner id for display; unknown ids fall back to
// a generic label.
func partnerName(c *gin.Context, d *Deps, id string) string {
	if id == "" {
		return "A supplier"
	}
	p, err := d.Store.GetPartner(c.Request.Context(), id)
	if err != nil {
		return "A supplier"
	}
	return p.Name
}

// loadResponse fetches a quote together with its RFQ and checks access.
func loadResponse(c *gin.Context, d *Deps, id string) (*models.RFQResponse, *models.RFQSubmission, bool) {
	resp, err := d.Store.GetResponse(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
		return nil, nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quote", "details": err.Error()})
		return nil, nil, false
	}
	sub, ok := loadSubmission(c, d, resp.SubmissionID)
	if !ok {
		return nil, nil, false
	}
	return resp, sub, true
}

// normalizeQuote runs the normalizer and maps its errors to HTTP codes. It
// returns 0 on success.
func normalizeQuote(c *gin.Context, d *Deps, req services.NormalizeRequest) (services.QuoteResult, int, error) {
	result, err := d.Normalizer.Normalize(c.Request.Context(), req)
	switch {
	case err == nil:
		return result, 0, nil
	case errors.Is(err, services.ErrMissingRawText), errors.Is(err, services.ErrMissingResponseID):
		return result, http.StatusBadRequest, err
	case errors.Is(err, storage.ErrNotFound):
		return result, http.StatusNotFound, err
	default:
		return result, http.StatusInternalServerError, err
	}
}

// SubmitQuoteHandler records a supplier reply to an RFQ.
// @Summary Submit quote
// @Description Stores a supplier's free-text reply. When automatic analysis is enabled the quote is normalized against the RFQ targets straight away.
// @Tags Quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "RFQ ID"
// @Param body body models.QuoteSubmitRequest true "Quote"
// @Success 201 {object} models.RFQResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/rfqs/{id}/responses [post]
func SubmitQuoteHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, ok := loadSubmission(c, d, c.Param("id"))
		if !ok {
			return
		}

		var req models.QuoteSubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if strings.TrimSpace(req.RawText) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrMissingRawText.Error()})
			return
		}

		ctx := c.Request.Context()
		if req.PartnerID != "" {
			if _, err := d.Store.GetPartner(ctx, req.PartnerID); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown partner_id"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch partner", "details": err.Error()})
				return
			}
		}

		resp := &models.RFQResponse{
			ID:           uuid.NewString(),
			SubmissionID: sub.ID,
			PartnerID:    req.PartnerID,
			RawText:      req.RawText,
			PricingData:  req.PricingData,
			CreatedAt:    time.Now(),
		}
		if err := d.Store.CreateResponse(ctx, resp); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store quote", "details": err.Error()})
			return
		}

		if d.Config.AutoAnalyzeQuotes {
			result, _, err := normalizeQuote(c, d, services.NormalizeRequest{
				ResponseID:  resp.ID,
				RawText:     resp.RawText,
				TargetPrice: sub.RFQData.TargetPrice,
				TargetMOQ:   sub.RFQData.TargetMOQ,
			})
			if err != nil {
				// The quote is stored; analysis can be retried through the analyze endpoint.
				d.Logger.Error("automatic quote analysis failed", zap.String("response_id", resp.ID), zap.Error(err))
			} else {
				analyzedAt := time.Now()
				resp.ExtractedMetrics = &result.Metrics
				resp.AIAnalysis = &result.Analysis
				resp.AnalyzedAt = &analyzedAt
			}
		}

		c.JSON(http.StatusCreated, resp)

		name := partnerName(c, d, resp.PartnerID)
		SaveActivityLog(c, d, "Quote", "Create", fmt.Sprintf("Record quote from %s for RFQ %s", name, sub.Reference), sub.ProjectID)
		SendNotificationToProjectOwner(c, d, sub.ProjectID, services.Notice{
			Title:         "New quote received",
			Message:       fmt.Sprintf("%s replied to %s", name, sub.Reference),
			Action:        "view_quote",
			Link:          "/rfqs/" + sub.ID,
			EmailTemplate: services.EmailQuoteReceived,
			EmailData: services.EmailData{
				RFQReference: sub.Reference,
				RFQTitle:     sub.RFQData.Title,
				PartnerName:  name,
				Link:         d.rfqLink(sub.ID),
			},
		})
	}
}

// ListQuotesHandler lists the quotes of one RFQ in arrival order.
// @Summary List quotes
// @Tags Quotes
// @Produce json
// @Security BearerAuth
// @Param id path string true "RFQ ID"
// @Success 200 {array} models.RFQResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/rfqs/{id}/responses [get]
func ListQuotesHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, ok := loadSubmission(c, d, c.Param("id"))
		if !ok {
			return
		}

		responses, err := d.Store.ListResponses(c.Request.Context(), sub.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list quotes", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, responses)
	}
}

// GetQuoteHandler returns one quote.
// @Summary Get quote
// @Tags Quotes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quote ID"
// @Success 200 {object} models.RFQResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/responses/{id} [get]
func GetQuoteHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, _, ok := loadResponse(c, d, c.Param("id"))
		if !ok {
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// AnalyzeQuoteHandler normalizes a quote and stores the result on it.
// @Summary Analyze quote
// @Description Extracts unit price, MOQ, lead time, payment terms and currency from the quote text and scores it against the RFQ targets. Targets in the body override those on the RFQ. When analysis fails the stored result has score 0 and the analysis_failed flag.
// @Tags Quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quote ID"
// @Param body body models.QuoteAnalyzeRequest false "Target overrides"
// @Success 200 {object} models.QuoteAnalyzeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/responses/{id}/analyze [post]
func AnalyzeQuoteHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, sub, ok := loadResponse(c, d, c.Param("id"))
		if !ok {
			return
		}

		var req models.QuoteAnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		nreq := services.NormalizeRequest{
			ResponseID:  resp.ID,
			RawText:     resp.RawText,
			TargetPrice: sub.RFQData.TargetPrice,
			TargetMOQ:   sub.RFQData.TargetMOQ,
		}
		if req.TargetPrice != nil {
			nreq.TargetPrice = req.TargetPrice
		}
		if req.TargetMOQ != nil {
			nreq.TargetMOQ = req.TargetMOQ
		}

		result, status, err := normalizeQuote(c, d, nreq)
		if err != nil {
			if status == http.StatusInternalServerError {
				d.Logger.Error("failed to store quote analysis", zap.String("response_id", resp.ID), zap.Error(err))
				c.JSON(status, gin.H{"error": "Failed to analyze quote"})
				return
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.QuoteAnalyzeResponse{
			ResponseID:       resp.ID,
			ExtractedMetrics: result.Metrics,
			AIAnalysis:       result.Analysis,
		})

		SaveActivityLog(c, d, "Quote", "Analyze",
			fmt.Sprintf("Analyze quote %s for RFQ %s: score %d", resp.ID, sub.Reference, result.Analysis.Score), sub.ProjectID)
		SendNotificationToProjectOwner(c, d, sub.ProjectID, services.Notice{
			Title:         "Quote analyzed",
			Message:       fmt.Sprintf("A quote for %s scored %d/100", sub.Reference, result.Analysis.Score),
			Action:        "view_quote",
			Link:          "/rfqs/" + sub.ID,
			EmailTemplate: services.EmailQuoteAnalyzed,
			EmailData: services.EmailData{
				RFQReference: sub.Reference,
				RFQTitle:     sub.RFQData.Title,
				PartnerName:  partnerName(c, d, resp.PartnerID),
				Score:        strconv.Itoa(result.Analysis.Score),
				Summary:      result.Analysis.Summary,
				Link:         d.rfqLink(sub.ID),
			},
		})
	}
}
