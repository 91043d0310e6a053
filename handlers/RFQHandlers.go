package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sourcing/models"
	"sourcing/repository"
	"sourcing/services"
	"sourcing/storage"
)

// referenceAttempts bounds retries when a generated reference code collides.
const referenceAttempts = 3

func canAccessSubmission(u *models.User, sub *models.RFQSubmission) bool {
	return u != nil && sub != nil && (u.IsAdmin || sub.UserID == u.ID)
}

// loadSubmission fetches an RFQ and checks the caller may see it. On failure
// the response has been written and ok is false.
func loadSubmission(c *gin.Context, d *Deps, id string) (*models.RFQSubmission, bool) {
	sub, err := d.Store.GetSubmission(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch RFQ", "details": err.Error()})
		return nil, false
	}
	if !canAccessSubmission(currentUser(c), sub) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this RFQ"})
		return nil, false
	}
	return sub, true
}

func (d *Deps) rfqLink(id string) string {
	return strings.TrimRight(d.Config.PublicBaseURL, "/") + "/rfqs/" + id
}

// SubmitRFQHandler stores a new RFQ and snapshots the matching manufacturers.
// @Summary Submit RFQ
// @Description Validates the RFQ, applies the project readiness gate, matches manufacturers from the partner directory and stores the submission. A directory failure yields zero matches; the RFQ is still stored.
// @Tags RFQs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.RFQSubmitRequest true "RFQ data"
// @Success 201 {object} models.RFQSubmitResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} object
// @Failure 500 {object} models.ErrorResponse
// @Router /api/rfqs [post]
func SubmitRFQHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RFQSubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		req.RFQData.Title = strings.TrimSpace(req.RFQData.Title)
		if req.RFQData.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "RFQ title is required"})
			return
		}

		project, ok := loadProject(c, d, req.ProjectID)
		if !ok {
			return
		}

		if d.Config.RFQMinReadiness > 0 {
			readiness := services.Assess(project, d.Config.RFQMinReadiness)
			if !readiness.Ready {
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":     services.ErrNotReady.Error(),
					"readiness": readiness,
				})
				return
			}
		}

		// Targets left out of the RFQ are taken from the project.
		if req.RFQData.TargetPrice == nil {
			req.RFQData.TargetPrice = project.TargetPrice
		}
		if req.RFQData.TargetMOQ == nil {
			req.RFQData.TargetMOQ = project.TargetMOQ
		}

		ctx := c.Request.Context()
		match := d.Matcher.Match(ctx, req.RFQData)

		now := time.Now()
		sub := &models.RFQSubmission{
			ID:                uuid.NewString(),
			ProjectID:         project.ID,
			UserID:            currentUser(c).ID,
			RFQData:           req.RFQData,
			Status:            models.RFQSubmitted,
			MatchedPartnerIDs: match.IDs,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		var err error
		for attempt := 0; attempt < referenceAttempts; attempt++ {
			sub.Reference = repository.GenerateReferenceCode("RFQ")
			if err = d.Store.CreateSubmission(ctx, sub); !errors.Is(err, storage.ErrConflict) {
				break
			}
		}
		if err != nil {
			d.Logger.Error("failed to store rfq", zap.String("project_id", project.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit RFQ", "details": err.Error()})
			return
		}
		d.Metrics.RecordRFQSubmitted()

		c.JSON(http.StatusCreated, models.RFQSubmitResponse{Submission: *sub, MatchedPartners: match.Partners})

		SaveActivityLog(c, d, "RFQ", "Create",
			fmt.Sprintf("Submit RFQ %s with %d matched suppliers", sub.Reference, len(match.IDs)), project.ID)

		if len(match.IDs) > 0 {
			SendNotificationHelper(c, d, project.OwnerID, services.Notice{
				Title:         "Suppliers matched",
				Message:       fmt.Sprintf("%s was matched with %d suppliers", sub.Reference, len(match.IDs)),
				Action:        "view_rfq",
				Link:          "/rfqs/" + sub.ID,
				EmailTemplate: services.EmailRFQMatched,
				EmailData: services.EmailData{
					ProjectName:  project.Name,
					RFQReference: sub.Reference,
					RFQTitle:     sub.RFQData.Title,
					Summary:      fmt.Sprintf("%d suppliers", len(match.IDs)),
					Link:         d.rfqLink(sub.ID),
				},
			})
		}
	}
}

// ListRFQsHandler lists RFQs of one project, or all of the caller's RFQs.
// @Summary List RFQs
// @Tags RFQs
// @Produce json
// @Security BearerAuth
// @Param project_id query string false "Project ID"
// @Success 200 {array} models.RFQSubmission
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/rfqs [get]
func ListRFQsHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Query("project_id")
		if projectID != "" {
			if _, ok := loadProject(c, d, projectID); !ok {
				return
			}
		}

		subs, err := d.Store.ListSubmissions(c.Request.Context(), projectID, currentUser(c).ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list RFQs", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, subs)
	}
}

// GetRFQHandler returns one RFQ.
// @Summary Get RFQ
// @Tags RFQs
// @Produce json
// @Security BearerAuth
// @Param id path string true "RFQ ID"
// @Success 200 {object} models.RFQSubmission
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/rfqs/{id} [get]
func GetRFQHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, ok := loadSubmission(c, d, c.Param("id"))
		if !ok {
			return
		}
		c.JSON(http.StatusOK, sub)
	}
}

// UpdateRFQStatusHandler moves an RFQ between submitted, in_review and completed.
// @Summary Update RFQ status
// @Tags RFQs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "RFQ ID"
// @Param body body models.RFQStatusRequest true "New status"
// @Success 200 {object} models.RFQSubmission
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/rfqs/{id}/status [put]
func UpdateRFQStatusHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, ok := loadSubmission(c, d, c.Param("id"))
		if !ok {
			return
		}

		var req models.RFQStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if !req.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "details": "status must be one of submitted, in_review, completed"})
			return
		}

		if err := d.Store.UpdateSubmissionStatus(c.Request.Context(), sub.ID, req.Status); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update RFQ status", "details": err.Error()})
			return
		}
		sub.Status = req.Status
		sub.UpdatedAt = time.Now()

		c.JSON(http.StatusOK, sub)
		SaveActivityLog(c, d, "RFQ", "Update", fmt.Sprintf("Set RFQ %s status to %s", sub.Reference, req.Status), sub.ProjectID)
	}
}

// RematchRFQHandler re-runs supplier matching and replaces the stored
// snapshot. Matching never runs again on its own.
// @Summary Rematch RFQ suppliers
// @Tags RFQs
// @Produce json
// @Security BearerAuth
// @Param id path string true "RFQ ID"
// @Success 200 {object} models.RFQSubmitResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/rfqs/{id}/rematch [post]
func RematchRFQHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, ok := loadSubmission(c, d, c.Param("id"))
		if !ok {
			return
		}

		ctx := c.Request.Context()
		match := d.Matcher.Match(ctx, sub.RFQData)
		if err := d.Store.ReplaceMatchedPartners(ctx, sub.ID, match.IDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update matched suppliers", "details": err.Error()})
			return
		}
		sub.MatchedPartnerIDs = match.IDs
		sub.UpdatedAt = time.Now()

		c.JSON(http.StatusOK, models.RFQSubmitResponse{Submission: *sub, MatchedPartners: match.Partners})
		SaveActivityLog(c, d, "RFQ", "Rematch",
			fmt.Sprintf("Rematch RFQ %s: %d suppliers", sub.Reference, len(match.IDs)), sub.ProjectID)
	}
}
