package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sourcing/storage"
	"sourcing/utils"
)

// GetMyNotificationsHandler lists the caller's notifications, newest first.
// @Summary Get my notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Notification
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/notifications [get]
func GetMyNotificationsHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		notifications, err := d.Store.ListNotifications(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, notifications)
	}
}

// MarkNotificationAsReadHandler marks one notification as read
// @Summary Mark notification as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/notifications/{id}/read [put]
func MarkNotificationAsReadHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}

		err := d.Store.MarkNotificationRead(c.Request.Context(), currentUser(c).ID, id)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification", "details": err.Error()})
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Notification marked as read")
	}
}

// MarkAllNotificationsAsReadHandler marks every unread notification as read
// @Summary Mark all notifications as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/notifications/read-all [put]
func MarkAllNotificationsAsReadHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := d.Store.MarkAllNotificationsRead(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": count})
	}
}
