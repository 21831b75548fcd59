package mailer

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

type Attachment struct {
	Filename string
	Content  []byte
}

type Mailer interface {
	Send(to []string, subject, text, html string, attachments []Attachment) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

func NewSMTPMailer(config SMTPConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(config.Host, config.Port, config.User, config.Password),
		from:   config.User,
	}
}

func (m *smtpMailer) Send(to []string, subject, text, html string, attachments []Attachment) error {
	if m.from == "" {
		return fmt.Errorf("mail error: SMTP credentials not configured")
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, "Where is Curtis")
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	if html != "" {
		msg.AddAlternative("text/html", html)
	}

	for _, attachment := range attachments {
		content := attachment.Content
		msg.Attach(attachment.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(content))
			return err
		}))
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mail error: %w", err)
	}
	return nil
}
