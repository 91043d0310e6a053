package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sourcing/config"
	"sourcing/metrics"
	"sourcing/models"
	"sourcing/services"
	"sourcing/storage"
)

// Deps is built once in main and shared by every handler.
type Deps struct {
	Store      storage.Store
	Matcher    *services.Matcher
	Normalizer *services.Normalizer
	Notifier   *services.Notifier
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Manager
}

const (
	ctxUserKey    = "user"
	ctxSessionKey = "session"
)

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func currentSession(c *gin.Context) *models.Session {
	if v, ok := c.Get(ctxSessionKey); ok {
		if s, ok := v.(*models.Session); ok {
			return s
		}
	}
	return nil
}

// SaveActivityLog records who did what. A failure is logged and otherwise
// ignored; the request has already succeeded.
func SaveActivityLog(c *gin.Context, d *Deps, eventContext, eventName, description, projectID string) {
	entry := &models.ActivityLog{
		CreatedAt:    time.Now(),
		EventContext: eventContext,
		EventName:    eventName,
		Description:  description,
		IPAddress:    c.ClientIP(),
		ProjectID:    projectID,
	}
	if u := currentUser(c); u != nil {
		entry.UserName = u.FullName()
		entry.HostName = u.Email
	}
	if s := currentSession(c); s != nil && s.IPAddress != "" {
		entry.IPAddress = s.IPAddress
	}

	if err := d.Store.SaveActivityLog(c.Request.Context(), entry); err != nil {
		d.Logger.Error("failed to save activity log",
			zap.String("event_context", eventContext), zap.String("event_name", eventName), zap.Error(err))
	}
}

// canAccessProject reports whether the user owns the project or is an admin.
func canAccessProject(u *models.User, p *models.Project) bool {
	return u != nil && p != nil && (u.IsAdmin || p.OwnerID == u.ID)
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(v), true
}
