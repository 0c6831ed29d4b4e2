package service

import (
	"fmt"
	"log"

	"vendora/config"

	gomail "gopkg.in/gomail.v2"
)

// MailService sends transactional email over SMTP. When no host is
// configured (development), messages are logged instead of sent.
type MailService struct {
	cfg *config.MailConfig
}

func NewMailService(cfg *config.MailConfig) *MailService {
	return &MailService{cfg: cfg}
}

func (s *MailService) SendPasswordReset(to, name, resetURL string) error {
	subject := "Reset your password"
	body := fmt.Sprintf(
		"Hi %s,\n\nA password reset was requested for your account. The link below is valid for one hour:\n\n%s\n\nIf you did not request this, you can ignore this email.\n",
		name, resetURL)
	return s.send(to, subject, body)
}

func (s *MailService) send(to, subject, body string) error {
	if s.cfg.Host == "" {
		log.Printf("[mail] smtp not configured, skipping %q to %s", subject, to)
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
