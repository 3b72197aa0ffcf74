package mail

import (
	"context"
	"io"
)

// Sender delivers composed emails to a relay.
type Sender interface {
	Send(ctx context.Context, emails ...Email) error
	io.Closer
}

// Email represents an email message.
type Email struct {
	From    Address
	To      []Address
	Subject string

	Headers map[string]string

	Body string // plain text body
	HTML string // HTML alternative (optional)

	// Attachments with Inline set are referenced from HTML as cid:<ContentID>.
	Attachments []Attachment
}

// Address represents an email address.
type Address struct {
	Name    string // "Ann Smith"
	Address string // "ann@example.com"
}

// Attachment is a file carried by the message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
	Inline      bool
	ContentID   string
}

// Recipients returns the envelope addresses of e.
func (e Email) Recipients() []string {
	result := make([]string, 0, len(e.To))
	for _, a := range e.To {
		if a.Address != "" {
			result = append(result, a.Address)
		}
	}
	return result
}
