package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sourcing/models"
)

// Mailer sends a rendered template. *EmailService implements it.
type Mailer interface {
	SendTemplatedEmail(templateType string, data EmailData) error
}

type NotificationWriter interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Notice is one message for one user. When EmailTemplate is set and a mailer
// is configured the notice is also emailed.
type Notice struct {
	UserID        string
	Title         string
	Message       string
	Action        string
	Link          string
	EmailTemplate string
	EmailData     EmailData
}

// Notifier stores in-app notifications and optionally emails them. Failures
// are logged and never returned; a notification must not fail the request
// that caused it.
type Notifier struct {
	store  NotificationWriter
	mailer Mailer
	logger *zap.Logger
}

// NewNotifier builds a notifier. mailer may be nil to disable email.
func NewNotifier(store NotificationWriter, mailer Mailer, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{store: store, mailer: mailer, logger: logger}
}

func (n *Notifier) Notify(ctx context.Context, notice Notice) {
	if n == nil || notice.UserID == "" {
		return
	}

	now := time.Now()
	record := &models.Notification{
		UserID:    notice.UserID,
		Title:     notice.Title,
		Message:   notice.Message,
		Status:    models.NotificationUnread,
		Action:    notice.Action,
		Link:      notice.Link,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := n.store.CreateNotification(ctx, record); err != nil {
		n.logger.Error("failed to store notification",
			zap.String("user_id", notice.UserID), zap.String("title", notice.Title), zap.Error(err))
	}

	if n.mailer == nil || notice.EmailTemplate == "" || notice.EmailData.Email == "" {
		return
	}
	if err := CheckTemplate(notice.EmailTemplate); err != nil {
		n.logger.Error("notification email template is invalid",
			zap.String("user_id", notice.UserID), zap.String("template", notice.EmailTemplate), zap.Error(err))
		return
	}
	if err := n.mailer.SendTemplatedEmail(notice.EmailTemplate, notice.EmailData); err != nil {
		n.logger.Warn("failed to send notification email",
			zap.String("user_id", notice.UserID), zap.String("template", notice.EmailTemplate), zap.Error(err))
	}
}
