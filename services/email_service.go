package services

import (
	"fmt"
	"net"
	"net/smtp"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"sourcing/config"
)

// Email template types.
const (
	EmailRFQMatched    = "rfq_matched"
	EmailQuoteReceived = "quote_received"
	EmailQuoteAnalyzed = "quote_analyzed"
)

// EmailData holds the values substituted into {{placeholders}}.
type EmailData struct {
	UserName     string
	Email        string
	ProjectName  string
	RFQReference string
	RFQTitle     string
	PartnerName  string
	Score        string
	Summary      string
	Link         string
}

func (d EmailData) variables() map[string]string {
	return map[string]string{
		"user_name":     d.UserName,
		"email":         d.Email,
		"project_name":  d.ProjectName,
		"rfq_reference": d.RFQReference,
		"rfq_title":     d.RFQTitle,
		"partner_name":  d.PartnerName,
		"score":         d.Score,
		"summary":       d.Summary,
		"link":          d.Link,
	}
}

type emailTemplate struct {
	Subject string
	Body    string
}

var emailTemplates = map[string]emailTemplate{
	EmailRFQMatched: {
		Subject: "{{rfq_reference}}: suppliers matched",
		Body: `<p>Hi {{user_name}},</p>
<p>Your RFQ <b>{{rfq_title}}</b> ({{rfq_reference}}) was matched with {{summary}}.</p>
<p>Review it here: {{link}}</p>`,
	},
	EmailQuoteReceived: {
		Subject: "{{rfq_reference}}: new quote received",
		Body: `<p>Hi {{user_name}},</p>
<p>{{partner_name}} replied to <b>{{rfq_title}}</b> ({{rfq_reference}}).</p>
<p>Open the quote: {{link}}</p>`,
	},
	EmailQuoteAnalyzed: {
		Subject: "{{rfq_reference}}: quote scored {{score}}/100",
		Body: `<p>Hi {{user_name}},</p>
<p>A quote for <b>{{rfq_title}}</b> was analyzed.</p>
<ul><li>Score: {{score}}</li><li>{{summary}}</li></ul>
<p>Details: {{link}}</p>`,
	},
}

// CheckTemplate reports whether templateType names a built-in template whose
// subject and body pass ValidateTemplate.
func CheckTemplate(templateType string) error {
	tmpl, ok := emailTemplates[templateType]
	if !ok {
		return fmt.Errorf("unknown email template %q", templateType)
	}
	if err := ValidateTemplate(tmpl.Subject); err != nil {
		return fmt.Errorf("email template %q subject: %w", templateType, err)
	}
	if err := ValidateTemplate(tmpl.Body); err != nil {
		return fmt.Errorf("email template %q body: %w", templateType, err)
	}
	return nil
}

// convertHTMLToText flattens an HTML body into readable plain text.
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr", "ul":
				text.WriteString("\n")
			case "li":
				text.WriteString("\n• ")
			case "td", "th":
				text.WriteString(" | ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}
	extractText(doc)

	result := text.String()
	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(result)
}

var placeholderPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

func processTemplate(templateStr string, data EmailData) string {
	result := templateStr
	for key, value := range data.variables() {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// ValidateTemplate checks that braces balance and every placeholder is known.
func ValidateTemplate(templateStr string) error {
	if strings.Count(templateStr, "{{") != strings.Count(templateStr, "}}") {
		return fmt.Errorf("unmatched braces in template")
	}
	known := EmailData{}.variables()
	for _, match := range placeholderPattern.FindAllStringSubmatch(templateStr, -1) {
		variable := strings.TrimSpace(match[1])
		if _, ok := known[variable]; !ok {
			return fmt.Errorf("invalid variable: %s", variable)
		}
	}
	return nil
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService renders the built-in templates and sends them over SMTP.
type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
	send     sendMailFunc
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		send:     smtp.SendMail,
	}
}

// SendTemplatedEmail renders templateType with data and mails it to data.Email.
func (es *EmailService) SendTemplatedEmail(templateType string, data EmailData) error {
	tmpl, ok := emailTemplates[templateType]
	if !ok {
		return fmt.Errorf("unknown email template %q", templateType)
	}
	if data.Email == "" {
		return fmt.Errorf("email template %q: recipient is empty", templateType)
	}

	subject := processTemplate(tmpl.Subject, data)
	body := convertHTMLToText(processTemplate(tmpl.Body, data))
	return es.sendEmail(data.Email, subject, body)
}

func (es *EmailService) sendEmail(to, subject, body string) error {
	var auth smtp.Auth
	if es.user != "" {
		auth = smtp.PlainAuth("", es.user, es.password, es.host)
	}

	headers := []string{
		"From: " + es.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	if err := es.send(net.JoinHostPort(es.host, es.port), auth, es.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
