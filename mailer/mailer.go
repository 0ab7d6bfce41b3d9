package mailer

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender dispatches mail. The auth service treats delivery failure as a hard
// error and compensates (reset-token rollback), so implementations must not
// swallow errors.
type Sender interface {
	Send(msg Message) error
}
