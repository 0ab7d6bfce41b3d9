package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/pkg/errors"
)

// SMTPConfig holds the configuration for SMTP email sending
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (c SMTPConfig) validate() error {
	if c.Host == "" || c.Port == "" || c.Username == "" || c.Password == "" || c.From == "" {
		return errors.New("invalid smtp configuration")
	}
	return nil
}

// SMTPSender implements Sender over plain SMTP with AUTH PLAIN.
type SMTPSender struct {
	config SMTPConfig
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(config SMTPConfig) (*SMTPSender, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &SMTPSender{config: config}, nil
}

func (s *SMTPSender) Send(msg Message) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	raw := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.config.From, msg.To, msg.Subject, msg.Body))

	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)
	if err := smtp.SendMail(addr, auth, s.config.From, []string{msg.To}, raw); err != nil {
		return errors.Wrap(err, "SMTPSender.Send")
	}
	return nil
}
