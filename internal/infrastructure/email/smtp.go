// Package email renders and delivers the templated notifications drained
// from the outbox.
package email

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"skillforge/internal/domain/notification"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

type SMTPEmailService struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPEmailService(config SMTPConfig) *SMTPEmailService {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &SMTPEmailService{
		config: config,
		dialer: dialer,
	}
}

// Send renders the record's template and delivers it. Unknown template keys
// are an error so the dispatcher can fail the record rather than silently
// dropping it.
func (s *SMTPEmailService) Send(rec *notification.Record) error {
	switch rec.TemplateKey {
	case notification.TemplatePartnerWelcome:
		return s.sendPartnerWelcome(rec)
	case notification.TemplateApplicationRejected:
		return s.sendApplicationRejected(rec)
	default:
		return fmt.Errorf("unknown notification template: %s", rec.TemplateKey)
	}
}

func (s *SMTPEmailService) sendPartnerWelcome(rec *notification.Record) error {
	ownerName := stringValue(rec.TemplateData, "owner_name")
	accessLink := stringValue(rec.TemplateData, "access_link")
	programs := stringValue(rec.TemplateData, "programs")

	subject := "Your Partner Account Is Ready"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Welcome aboard, %s!</h2>
			<p>Your partner application has been approved. Your organization now has access to: %s.</p>
			<p>Use the link below to sign in and finish setting up your account:</p>
			<p><a href="%s">Access Your Partner Portal</a></p>
			<p>Or copy and paste this URL into your browser:</p>
			<p>%s</p>
			<p>If you weren't expecting this email, please contact support.</p>
		</body>
		</html>
	`, ownerName, programs, accessLink, accessLink)

	plainBody := fmt.Sprintf(`
Welcome aboard, %s!

Your partner application has been approved. Your organization now has access to: %s.

Sign in and finish setting up your account here:
%s

If you weren't expecting this email, please contact support.
	`, ownerName, programs, accessLink)

	return s.sendEmail(rec.ToEmail, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) sendApplicationRejected(rec *notification.Record) error {
	ownerName := stringValue(rec.TemplateData, "owner_name")

	subject := "Update on Your Partner Application"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Hello %s,</h2>
			<p>Thank you for your interest in our partner program.</p>
			<p>After review, we're unable to approve your application at this time.</p>
			<p>You're welcome to apply again in the future. If you have questions, please contact support.</p>
		</body>
		</html>
	`, ownerName)

	plainBody := fmt.Sprintf(`
Hello %s,

Thank you for your interest in our partner program.

After review, we're unable to approve your application at this time.

You're welcome to apply again in the future. If you have questions, please contact support.
	`, ownerName)

	return s.sendEmail(rec.ToEmail, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func stringValue(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
