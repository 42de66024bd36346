package notify

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	gomail "gopkg.in/mail.v2"
)

// EmailConfig holds SMTP configuration for sending emails.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string
	Enabled    bool
}

// EmailSender delivers messages via SMTP.
type EmailSender struct {
	cfg    EmailConfig
	logger arbor.ILogger
}

func NewEmailSender(logger arbor.ILogger, cfg EmailConfig) *EmailSender {
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.SMTPUser
	}
	return &EmailSender{cfg: cfg, logger: logger}
}

// Send delivers an email with HTML body and plain text fallback. It is a no-op when
// email is disabled.
func (s *EmailSender) Send(msg *RenderedMessage) error {
	if !s.cfg.Enabled {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", s.cfg.ToEmail)
	m.SetHeader("Subject", msg.Subject)

	if msg.HTML != "" && msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else if msg.HTML != "" {
		m.SetBody("text/html", msg.HTML)
	} else {
		m.SetBody("text/plain", msg.Text)
	}

	dialer := gomail.NewDialer(s.cfg.SMTPServer, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second

	s.logger.Debug().Str("server", s.cfg.SMTPServer).Int("port", s.cfg.SMTPPort).Msg("Sending run summary")

	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s (subject: %s): %w", s.cfg.ToEmail, msg.Subject, err)
	}

	s.logger.Info().Str("to", s.cfg.ToEmail).Str("subject", msg.Subject).Msg("Email sent")
	return nil
}
