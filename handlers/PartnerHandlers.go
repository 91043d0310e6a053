package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sourcing/models"
	"sourcing/storage"
	"sourcing/utils"
)

func cleanCapabilities(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// CreatePartnerHandler adds a partner to the directory.
// @Summary Create partner
// @Description Adds a manufacturer, agent, shipper or legal partner to the directory. Admin only.
// @Tags Partners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.Partner true "Partner data"
// @Success 201 {object} models.Partner
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/partners [post]
func CreatePartnerHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var partner models.Partner
		if err := c.ShouldBindJSON(&partner); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if !partner.Type.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner type", "details": "type must be one of manufacturer, agent, shipper, legal"})
			return
		}

		now := time.Now()
		partner.ID = uuid.NewString()
		partner.Name = strings.TrimSpace(partner.Name)
		if partner.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Partner name is required"})
			return
		}
		partner.Capabilities = cleanCapabilities(partner.Capabilities)
		partner.CreatedAt = now
		partner.UpdatedAt = now

		if err := d.Store.CreatePartner(c.Request.Context(), &partner); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create partner", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, partner)
		SaveActivityLog(c, d, "Partner", "Create", "Create Partner "+partner.Name, "")
	}
}

// ListPartnersHandler lists the partner directory.
// @Summary List partners
// @Description Lists partners in insertion order, optionally filtered by type.
// @Tags Partners
// @Produce json
// @Security BearerAuth
// @Param type query string false "Partner type" Enums(manufacturer, agent, shipper, legal)
// @Success 200 {array} models.Partner
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/partners [get]
func ListPartnersHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.PartnerFilter
		if t := c.Query("type"); t != "" {
			filter.Type = models.PartnerType(t)
			if !filter.Type.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner type"})
				return
			}
		}

		partners, err := d.Store.ListPartners(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list partners", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, partners)
	}
}

// GetPartnerHandler returns one partner.
// @Summary Get partner
// @Tags Partners
// @Produce json
// @Security BearerAuth
// @Param id path string true "Partner ID"
// @Success 200 {object} models.Partner
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/partners/{id} [get]
func GetPartnerHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		partner, err := d.Store.GetPartner(c.Request.Context(), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch partner", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, partner)
	}
}

// UpdatePartnerHandler replaces a partner's details.
// @Summary Update partner
// @Description Replaces name, type, description, capabilities and contact fields. Admin only.
// @Tags Partners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Partner ID"
// @Param body body models.Partner true "Partner data"
// @Success 200 {object} models.Partner
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/partners/{id} [put]
func UpdatePartnerHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		existing, err := d.Store.GetPartner(ctx, c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch partner", "details": err.Error()})
			return
		}

		var partner models.Partner
		if err := c.ShouldBindJSON(&partner); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if !partner.Type.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner type", "details": "type must be one of manufacturer, agent, shipper, legal"})
			return
		}

		partner.ID = existing.ID
		partner.Name = strings.TrimSpace(partner.Name)
		if partner.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Partner name is required"})
			return
		}
		partner.Capabilities = cleanCapabilities(partner.Capabilities)
		partner.CreatedAt = existing.CreatedAt
		partner.UpdatedAt = time.Now()

		if err := d.Store.UpdatePartner(ctx, &partner); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update partner", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, partner)
		SaveActivityLog(c, d, "Partner", "Update", "Update Partner "+partner.Name, "")
	}
}

// DeletePartnerHandler removes a partner. Existing RFQ match snapshots keep
// the id.
// @Summary Delete partner
// @Tags Partners
// @Produce json
// @Security BearerAuth
// @Param id path string true "Partner ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/partners/{id} [delete]
func DeletePartnerHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		err := d.Store.DeletePartner(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete partner", "details": err.Error()})
			return
		}

		utils.SuccessResponse(c, http.StatusOK, "Partner deleted")
		SaveActivityLog(c, d, "Partner", "Delete", "Delete Partner "+id, "")
	}
}
