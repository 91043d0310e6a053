package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcing/models"
	"sourcing/storage"
)

type recordingMailer struct {
	templates []string
	err       error
}

func (r *recordingMailer) SendTemplatedEmail(templateType string, _ EmailData) error {
	r.templates = append(r.templates, templateType)
	return r.err
}

type failingNotificationStore struct{}

func (failingNotificationStore) CreateNotification(context.Context, *models.Notification) error {
	return errors.New("db down")
}

func TestNotifierStoresAndEmails(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	mailer := &recordingMailer{}
	n := NewNotifier(store, mailer, nil)

	n.Notify(ctx, Notice{
		UserID: "u1", Title: "New quote", Message: "A supplier replied", Link: "/rfqs/1",
		EmailTemplate: EmailQuoteReceived, EmailData: EmailData{Email: "u1@example.com"},
	})
	n.Notify(ctx, Notice{UserID: "u1", Title: "In-app only", Message: "no email"})

	list, err := store.ListNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.NotificationUnread, list[0].Status)
	assert.Equal(t, []string{EmailQuoteReceived}, mailer.templates)
}

func TestNotifierSwallowsFailures(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	n := NewNotifier(failingNotificationStore{}, mailer, nil)

	assert.NotPanics(t, func() {
		n.Notify(context.Background(), Notice{
			UserID: "u1", Message: "x", EmailTemplate: EmailRFQMatched, EmailData: EmailData{Email: "a@b.c"},
		})
	})
	assert.Len(t, mailer.templates, 1)

	var nilNotifier *Notifier
	assert.NotPanics(t, func() { nilNotifier.Notify(context.Background(), Notice{UserID: "u1"}) })
}

func TestNotifierSkipsInvalidTemplate(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	mailer := &recordingMailer{}
	n := NewNotifier(store, mailer, nil)

	emailTemplates["broken"] = emailTemplate{Subject: "{{rfq_reference}", Body: "<p>{{nope}}</p>"}
	t.Cleanup(func() { delete(emailTemplates, "broken") })

	for _, tmpl := range []string{"broken", "missing"} {
		n.Notify(ctx, Notice{
			UserID: "u1", Title: tmpl, Message: "x",
			EmailTemplate: tmpl, EmailData: EmailData{Email: "u1@example.com"},
		})
	}

	list, err := store.ListNotifications(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Empty(t, mailer.templates)
}

func TestCheckTemplate(t *testing.T) {
	for _, tmpl := range []string{EmailRFQMatched, EmailQuoteReceived, EmailQuoteAnalyzed} {
		assert.NoError(t, CheckTemplate(tmpl), tmpl)
	}
	assert.Error(t, CheckTemplate("missing"))
}
