package services

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcing/config"
)

func TestConvertHTMLToText(t *testing.T) {
	out := convertHTMLToText("<p>Hello <b>Jane</b></p><ul><li>Score: 80</li><li>Good</li></ul>")
	assert.Equal(t, "Hello Jane\n\n• Score: 80\n• Good", out)
}

func TestValidateTemplate(t *testing.T) {
	for name, tmpl := range emailTemplates {
		assert.NoError(t, ValidateTemplate(tmpl.Subject), name)
		assert.NoError(t, ValidateTemplate(tmpl.Body), name)
	}
	assert.Error(t, ValidateTemplate("{{user_name}"))
	assert.Error(t, ValidateTemplate("{{password}}"))
}

func TestSendTemplatedEmail(t *testing.T) {
	cfg := config.Default()
	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPFrom = "noreply@example.com"
	cfg.SMTPUser = "mailer"
	es := NewEmailService(cfg)

	var addr string
	var to []string
	var msg []byte
	es.send = func(a string, _ smtp.Auth, from string, rcpt []string, m []byte) error {
		addr, to, msg = a, rcpt, m
		assert.Equal(t, "noreply@example.com", from)
		return nil
	}

	err := es.SendTemplatedEmail(EmailQuoteAnalyzed, EmailData{
		UserName: "Jane", Email: "jane@example.com", RFQReference: "RFQ-AB12345",
		RFQTitle: "Camp Table", Score: "80", Summary: "Price above target", Link: "http://x/rfqs/1",
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", addr)
	assert.Equal(t, []string{"jane@example.com"}, to)
	assert.Contains(t, string(msg), "Subject: RFQ-AB12345: quote scored 80/100")
	assert.Contains(t, string(msg), "• Score: 80")
	assert.NotContains(t, string(msg), "<p>")
}

func TestSendTemplatedEmailErrors(t *testing.T) {
	es := NewEmailService(config.Default())
	es.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }

	assert.Error(t, es.SendTemplatedEmail("nope", EmailData{Email: "a@b.c"}))
	assert.Error(t, es.SendTemplatedEmail(EmailRFQMatched, EmailData{}))
	assert.Error(t, es.SendTemplatedEmail(EmailRFQMatched, EmailData{Email: "a@b.c"}))
}
