package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sourcing/services"
)

// SendNotificationHelper notifies one user, filling the email recipient from
// the user record. It never fails the calling request.
func SendNotificationHelper(c *gin.Context, d *Deps, userID string, notice services.Notice) {
	if d.Notifier == nil || userID == "" {
		return
	}

	notice.UserID = userID
	if notice.EmailTemplate != "" {
		user, err := d.Store.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			d.Logger.Warn("notification recipient lookup failed", zap.String("user_id", userID), zap.Error(err))
			notice.EmailTemplate = ""
		} else {
			notice.EmailData.Email = user.Email
			notice.EmailData.UserName = user.FullName()
		}
	}

	d.Notifier.Notify(c.Request.Context(), notice)
}

// SendNotificationToProjectOwner notifies the owner of the project behind an RFQ.
func SendNotificationToProjectOwner(c *gin.Context, d *Deps, projectID string, notice services.Notice) {
	project, err := d.Store.GetProject(c.Request.Context(), projectID)
	if err != nil {
		d.Logger.Warn("notification project lookup failed", zap.String("project_id", projectID), zap.Error(err))
		return
	}
	if notice.EmailData.ProjectName == "" {
		notice.EmailData.ProjectName = project.Name
	}
	SendNotificationHelper(c, d, project.OwnerID, notice)
}
