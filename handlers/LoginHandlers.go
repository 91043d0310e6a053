package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sourcing/models"
	"sourcing/storage"
	"sourcing/utils"
)

// maxSessions caps concurrent logins per user. Older sessions are never
// evicted automatically; the user has to log out on another device.
const maxSessions = 3

// LoginHandler handles user authentication
// @Summary Login user
// @Description Authenticate with email and password and return an access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/login [post]
func LoginHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		ctx := c.Request.Context()
		user, err := d.Store.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				d.Logger.Error("user lookup failed", zap.Error(err))
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		if !utils.ValidatePassword(user.Password, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		if user.Suspended {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is suspended"})
			return
		}

		// Check the device count before any token is generated.
		sessionCount, err := d.Store.CountActiveSessions(ctx, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check active sessions", "details": err.Error()})
			return
		}
		if sessionCount >= maxSessions {
			c.JSON(http.StatusConflict, gin.H{
				"error":           "Maximum device limit reached",
				"message":         "You have reached the maximum limit of 3 active devices. Please logout from one device to continue.",
				"max_devices":     maxSessions,
				"current_devices": sessionCount,
				"requires_logout": true,
			})
			return
		}

		token, expiresAt, err := utils.GenerateJWT(d.Config.JWTSecret, user.ID, user.Email, d.Config.SessionTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		session := &models.Session{
			UserID:    user.ID,
			SessionID: token,
			HostName:  user.Email,
			IPAddress: c.ClientIP(),
			Timestamp: time.Now(),
			ExpiresAt: expiresAt,
		}
		if err := d.Store.SaveSession(ctx, session); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.LoginResponse{
			Message:     "Login successful",
			AccessToken: token,
			ExpiresAt:   expiresAt,
			User:        *user,
		})

		c.Set(ctxUserKey, user)
		c.Set(ctxSessionKey, session)
		SaveActivityLog(c, d, "Login", "Post", "User Logged In", "")
	}
}

// LogoutHandler deletes the current session
// @Summary Logout user
// @Description Invalidate the session bound to the Authorization token
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/logout [post]
func LogoutHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		if session == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		if err := d.Store.DeleteSession(c.Request.Context(), session.SessionID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session", "details": err.Error()})
			return
		}

		utils.SuccessResponse(c, http.StatusOK, "Session deleted, user logged out")
		SaveActivityLog(c, d, "Login", "Delete", "User Logged Out", "")
	}
}
