package mailerfake

import (
	"sync"

	"github.com/ovenworks/go-backoffice-auth/mailer"
)

var _ mailer.Sender = (*FakeSender)(nil)

// FakeSender records sent messages and can be told to fail, for exercising
// the reset-token rollback path.
type FakeSender struct {
	mu       sync.Mutex
	messages []mailer.Message
	failWith error
}

func NewFakeSender() *FakeSender {
	return &FakeSender{}
}

func (f *FakeSender) Send(msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}
	f.messages = append(f.messages, msg)
	return nil
}

// FailWith makes every subsequent Send return err (nil restores delivery).
func (f *FakeSender) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

func (f *FakeSender) Messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mailer.Message, len(f.messages))
	copy(out, f.messages)
	return out
}
