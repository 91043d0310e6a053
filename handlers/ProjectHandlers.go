package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sourcing/models"
	"sourcing/services"
	"sourcing/storage"
)

// loadProject fetches a project and checks the caller may see it. On failure
// the response has been written and ok is false.
func loadProject(c *gin.Context, d *Deps, id string) (*models.Project, bool) {
	project, err := d.Store.GetProject(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project", "details": err.Error()})
		return nil, false
	}
	if !canAccessProject(currentUser(c), project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this project"})
		return nil, false
	}
	return project, true
}

func applyProjectRequest(p *models.Project, req models.ProjectRequest) {
	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Category = req.Category
	p.Process = req.Process
	p.Materials = req.Materials
	p.Dimensions = req.Dimensions
	p.TargetPrice = req.TargetPrice
	p.TargetMOQ = req.TargetMOQ
	p.TargetLeadTimeDays = req.TargetLeadTimeDays
	p.Certifications = req.Certifications
	p.Playbook = req.Playbook
}

// CreateProjectHandler creates a project owned by the caller.
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.ProjectRequest true "Project data"
// @Success 201 {object} models.Project
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/projects [post]
func CreateProjectHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
			return
		}

		now := time.Now()
		project := &models.Project{
			ID:        uuid.NewString(),
			OwnerID:   currentUser(c).ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		applyProjectRequest(project, req)

		if err := d.Store.CreateProject(c.Request.Context(), project); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, project)
		SaveActivityLog(c, d, "Project", "Create", "Create Project "+project.Name, project.ID)
	}
}

// ListProjectsHandler lists the caller's projects. Admins see every project.
// @Summary List projects
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Project
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/projects [get]
func ListProjectsHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		ownerID := user.ID
		if user.IsAdmin {
			ownerID = ""
		}

		projects, err := d.Store.ListProjects(c.Request.Context(), ownerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list projects", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

// GetProjectHandler returns one project.
// @Summary Get project
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param project_id path string true "Project ID"
// @Success 200 {object} models.Project
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/projects/{project_id} [get]
func GetProjectHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadProject(c, d, c.Param("project_id"))
		if !ok {
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

// UpdateProjectHandler replaces a project's spec fields.
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param project_id path string true "Project ID"
// @Param body body models.ProjectRequest true "Project data"
// @Success 200 {object} models.Project
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/projects/{project_id} [put]
func UpdateProjectHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadProject(c, d, c.Param("project_id"))
		if !ok {
			return
		}

		var req models.ProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON input", "details": err.Error()})
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
			return
		}

		applyProjectRequest(project, req)
		project.UpdatedAt = time.Now()

		if err := d.Store.UpdateProject(c.Request.Context(), project); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, project)
		SaveActivityLog(c, d, "Project", "Update", "Update Project "+project.Name, project.ID)
	}
}

// GetProjectReadinessHandler scores how complete a project's spec is.
// @Summary Project readiness
// @Description Weighted completeness of the project's spec fields plus the list of missing fields.
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param project_id path string true "Project ID"
// @Success 200 {object} models.Readiness
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/projects/{project_id}/readiness [get]
func GetProjectReadinessHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, ok := loadProject(c, d, c.Param("project_id"))
		if !ok {
			return
		}
		c.JSON(http.StatusOK, services.Assess(project, d.Config.RFQMinReadiness))
	}
}
