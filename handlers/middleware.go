package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sourcing/storage"
	"sourcing/utils"
)

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// RequireSession resolves the Authorization header to a live session and
// its user, and stores both on the context.
func RequireSession(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := utils.BearerToken(c)
		if token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Missing Authorization header", nil)
			c.Abort()
			return
		}

		if _, err := utils.ValidateJWT(d.Config.JWTSecret, token); err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token", err)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		session, err := d.Store.GetSession(ctx, token)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				d.Logger.Error("session lookup failed", zap.Error(err))
			}
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired session", nil)
			c.Abort()
			return
		}

		user, err := d.Store.GetUserByID(ctx, session.UserID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
			c.Abort()
			return
		}
		if user.Suspended {
			utils.ErrorResponse(c, http.StatusForbidden, "Account is suspended", nil)
			c.Abort()
			return
		}

		c.Set(ctxSessionKey, session)
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// RequireAdmin must run after RequireSession.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil || !u.IsAdmin {
			utils.ErrorResponse(c, http.StatusForbidden, "Admin access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
