package noop

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pure-golang/encourager/logger"
	"github.com/pure-golang/encourager/mail"
)

var _ mail.Sender = (*Sender)(nil)

// Sender accepts every email without contacting a relay. Used for dry runs.
type Sender struct {
	record bool

	mx   sync.Mutex
	sent []mail.Email
}

type Option func(*Sender)

// WithRecording keeps accepted emails for Sent. Attachments stay in memory
// until the Sender is dropped.
func WithRecording() Option {
	return func(n *Sender) {
		n.record = true
	}
}

func NewSender(opts ...Option) *Sender {
	n := &Sender{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Send logs the emails instead of delivering them.
func (n *Sender) Send(ctx context.Context, emails ...mail.Email) error {
	n.mx.Lock()
	defer n.mx.Unlock()

	for _, email := range emails {
		logger.FromContext(ctx).Info("dry run: email not sent",
			slog.Any("to", email.Recipients()),
			slog.String("subject", email.Subject),
			slog.Int("attachments", len(email.Attachments)),
		)
		if n.record {
			n.sent = append(n.sent, email)
		}
	}
	return nil
}

// Sent returns the emails accepted so far. It is empty unless the Sender
// was built WithRecording.
func (n *Sender) Sent() []mail.Email {
	n.mx.Lock()
	defer n.mx.Unlock()

	return append([]mail.Email(nil), n.sent...)
}

func (n *Sender) Close() error {
	return nil
}
