package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sourcing/models"
	"sourcing/storage"
)

// CreateQCChecklistHandler creates a checklist with one unchecked item per label.
// @Summary Create QC checklist
// @Tags QC
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param project_id path string true "Project ID"
// @Param body body models.QCChecklistRequest true "Checklist name and item labels"
// @Success 201 {object} models.QCChecklist
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/projects/{project_id}/qc-checklists [post]
func CreateQCChecklistHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadProject(c, d, c.Param("project_id"))
		if !ok {
			return
		}

		var req models.QCChecklistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		now := time.Now()
		checklist := &models.QCChecklist{
			ProjectID: project.ID,
			Name:      strings.TrimSpace(req.Name),
			CreatedBy: currentUser(c).ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		for _, label := range req.Items {
			if label = strings.TrimSpace(label); label != "" {
				checklist.Items = append(checklist.Items, models.QCChecklistItem{Label: label, UpdatedAt: now})
			}
		}
		if checklist.Name == "" || len(checklist.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Checklist name and at least one item are required"})
			return
		}

		if err := d.Store.CreateQCChecklist(c.Request.Context(), checklist); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create QC checklist", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, checklist)
		SaveActivityLog(c, d, "QC", "Create", "Create QC checklist "+checklist.Name, project.ID)
	}
}

// ListQCChecklistsHandler lists a project's checklists with their items.
// @Summary List QC checklists
// @Tags QC
// @Produce json
// @Security BearerAuth
// @Param project_id path string true "Project ID"
// @Success 200 {array} models.QCChecklist
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/projects/{project_id}/qc-checklists [get]
func ListQCChecklistsHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadProject(c, d, c.Param("project_id"))
		if !ok {
			return
		}

		checklists, err := d.Store.ListQCChecklists(c.Request.Context(), project.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list QC checklists", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, checklists)
	}
}

// UpdateQCItemHandler ticks or annotates one checklist item.
// @Summary Update QC checklist item
// @Tags QC
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Checklist ID"
// @Param item_id path int true "Item ID"
// @Param body body models.QCItemUpdateRequest true "Item update"
// @Success 200 {object} models.QCChecklistItem
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/qc-checklists/{id}/items/{item_id} [put]
func UpdateQCItemHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		checklistID, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		itemID, ok := parseUintParam(c, "item_id")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		checklist, err := d.Store.GetQCChecklist(ctx, checklistID)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QC checklist not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch QC checklist", "details": err.Error()})
			return
		}
		if _, ok := loadProject(c, d, checklist.ProjectID); !ok {
			return
		}

		var req models.QCItemUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}

		item, err := d.Store.UpdateQCItem(ctx, checklistID, itemID, req.Checked, strings.TrimSpace(req.Notes))
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QC checklist item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update QC checklist item", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, item)
		SaveActivityLog(c, d, "QC", "Update", "Update QC item "+item.Label, checklist.ProjectID)
	}
}
