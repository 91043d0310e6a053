package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig allows the configured front-end origins.
func CORSConfig(origins []string) cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "X-XSRF-TOKEN",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer", "Accept-Language",
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type", "Content-Disposition", "X-Total-Count"}
	corsConfig.MaxAge = 12 * time.Hour // Cache preflight requests for 12 hours
	return corsConfig
}

// HealthHandler is the liveness probe.
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} object
// @Router /api/health [get]
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	}
}

// NewRouter mounts every route on a fresh engine.
func NewRouter(d *Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(d.Logger))
	if origins := d.Config.AllowedOrigins(); len(origins) > 0 {
		r.Use(cors.New(CORSConfig(origins)))
	}
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.GET("/api/health", HealthHandler())
	r.POST("/api/login", LoginHandler(d))

	auth := r.Group("/api", RequireSession(d))

	// ==================== SESSION ====================
	auth.POST("/logout", LogoutHandler(d))
	auth.POST("/validate-session", ValidateSession(d))

	// ==================== PROJECTS ====================
	auth.POST("/projects", CreateProjectHandler(d))
	auth.GET("/projects", ListProjectsHandler(d))
	auth.GET("/projects/:project_id", GetProjectHandler(d))
	auth.PUT("/projects/:project_id", UpdateProjectHandler(d))
	auth.GET("/projects/:project_id/readiness", GetProjectReadinessHandler(d))

	// ==================== PARTNERS ====================
	auth.GET("/partners", ListPartnersHandler(d))
	auth.GET("/partners/:id", GetPartnerHandler(d))
	admin := auth.Group("", RequireAdmin())
	admin.POST("/partners", CreatePartnerHandler(d))
	admin.PUT("/partners/:id", UpdatePartnerHandler(d))
	admin.DELETE("/partners/:id", DeletePartnerHandler(d))

	// ==================== RFQS ====================
	auth.POST("/rfqs", SubmitRFQHandler(d))
	auth.GET("/rfqs", ListRFQsHandler(d))
	auth.GET("/rfqs/:id", GetRFQHandler(d))
	auth.PUT("/rfqs/:id/status", UpdateRFQStatusHandler(d))
	auth.POST("/rfqs/:id/rematch", RematchRFQHandler(d))
	auth.GET("/rfqs/:id/pdf", GenerateRFQPDFHandler(d))
	auth.GET("/rfqs/:id/qr", GenerateRFQQRCodeHandler(d))

	// ==================== QUOTES ====================
	auth.POST("/rfqs/:id/responses", SubmitQuoteHandler(d))
	auth.GET("/rfqs/:id/responses", ListQuotesHandler(d))
	auth.GET("/rfqs/:id/responses/export", ExportQuotesHandler(d))
	auth.GET("/responses/:id", GetQuoteHandler(d))
	auth.POST("/responses/:id/analyze", AnalyzeQuoteHandler(d))

	// ==================== QC ====================
	auth.POST("/projects/:project_id/qc-checklists", CreateQCChecklistHandler(d))
	auth.GET("/projects/:project_id/qc-checklists", ListQCChecklistsHandler(d))
	auth.PUT("/qc-checklists/:id/items/:item_id", UpdateQCItemHandler(d))

	// ==================== NOTIFICATIONS ====================
	auth.GET("/notifications", GetMyNotificationsHandler(d))
	auth.PUT("/notifications/read-all", MarkAllNotificationsAsReadHandler(d))
	auth.PUT("/notifications/:id/read", MarkNotificationAsReadHandler(d))

	// ==================== ACTIVITY LOGS ====================
	admin.GET("/logs", GetActivityLogsHandler(d))

	// ==================== SWAGGER ====================
	mountSwagger(r)

	return r
}
