package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sourcing/models"
)

const (
	defaultLogLimit = 10
	maxLogLimit     = 100
)

// GetActivityLogsHandler godoc
// @Summary      Get activity logs
// @Description  Paginated activity log, newest first. Admin only.
// @Tags         activity-logs
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Limit"
// @Success      200    {object}  models.PaginatedActivityLogs
// @Failure      401    {object}  models.ErrorResponse
// @Failure      403    {object}  models.ErrorResponse
// @Failure      500    {object}  models.ErrorResponse
// @Router       /api/logs [get]
func GetActivityLogsHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}

		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLogLimit)))
		if err != nil || limit < 1 {
			limit = defaultLogLimit
		}
		if limit > maxLogLimit {
			limit = maxLogLimit
		}

		// keep (page-1)*limit inside int
		if page-1 > math.MaxInt/limit {
			page = math.MaxInt/limit + 1
		}
		offset := (page - 1) * limit

		logs, total, err := d.Store.ListActivityLogs(c.Request.Context(), offset, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching logs", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.PaginatedActivityLogs{
			Data:       logs,
			Page:       page,
			Limit:      limit,
			TotalCount: total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		})
	}
}
