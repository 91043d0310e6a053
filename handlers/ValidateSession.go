package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sourcing/models"
)

// ValidateSession validates user session
// @Summary Validate session
// @Description Validate the session token. The token is checked by the session middleware; this reports who it belongs to.
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ValidateSessionResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/validate-session [post]
func ValidateSession(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		user := currentUser(c)
		if session == nil || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		c.JSON(http.StatusOK, models.ValidateSessionResponse{
			Message:   "Session validated",
			SessionID: session.SessionID,
			HostName:  session.HostName,
			IsAdmin:   user.IsAdmin,
		})
	}
}
