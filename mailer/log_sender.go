package mailer

import "github.com/rs/zerolog/log"

// LogSender writes mail to the application log instead of delivering it.
// Used in development when no SMTP account is configured.
type LogSender struct{}

var _ Sender = LogSender{}

func (LogSender) Send(msg Message) error {
	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail (log sender, not delivered)")
	return nil
}
