package mail

import (
	"fmt"
	"net/url"

	"backend/internal/config"

	"gopkg.in/gomail.v2"
)

// Mailer sends plain-text mail. The SMTP implementation below is the only
// production one; tests substitute a recording fake.
type Mailer interface {
	Send(recipient, subject, body string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	sender string
}

// NewSMTPMailer builds a Mailer over SMTP with the credentials from cfg.
func NewSMTPMailer(cfg *config.Config) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailSender, cfg.EmailPassword),
		sender: cfg.EmailSender,
	}
}

func (m *smtpMailer) Send(recipient, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", recipient, err)
	}
	return nil
}

// ConfirmationMessage builds the subject and body of the account confirmation
// mail, embedding the single-use token in a frontend link.
func ConfirmationMessage(baseURL, token string) (subject, body string) {
	link := baseURL + "/auth?mode=confirm&" + url.Values{"token": {token}}.Encode()
	return "Account confirmation", "Follow the link to confirm your account: " + link
}

// ResetPasswordMessage builds the subject and body of the password reset mail.
func ResetPasswordMessage(baseURL, token string) (subject, body string) {
	link := baseURL + "/auth?mode=reset-password&" + url.Values{"token": {token}}.Encode()
	return "Password reset", "Follow the link to reset your password: " + link
}
