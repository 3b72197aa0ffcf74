package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/gomail.v2"

	"github.com/pure-golang/encourager/mail"
)

var _ mail.Sender = (*Sender)(nil)

const defaultAttachmentName = "attachment"

// Sender implements mail.Sender over net/smtp, composing MIME with gomail.
type Sender struct {
	mx     sync.Mutex
	cfg    Config
	closed bool
}

func NewSender(cfg Config) *Sender {
	return &Sender{cfg: cfg}
}

// Send sends emails one by one over a fresh connection each, stopping at the first failure.
func (s *Sender) Send(ctx context.Context, emails ...mail.Email) error {
	for _, email := range emails {
		if err := s.send(ctx, email); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sender) send(ctx context.Context, email mail.Email) error {
	ctx, span := tracer.Start(ctx, "SMTP.Send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("smtp.subject", email.Subject),
		attribute.Int("smtp.to_count", len(email.To)),
		attribute.Int("smtp.attachments", len(email.Attachments)),
		attribute.String("smtp.host", s.cfg.Host),
		attribute.Int("smtp.port", s.cfg.Port),
		attribute.Bool("smtp.tls", s.cfg.TLS),
	)

	s.mx.Lock()
	defer s.mx.Unlock()

	if s.closed {
		span.SetStatus(codes.Error, "sender is closed")
		return errors.New("sender is closed")
	}

	from := s.from(email)
	if from.Address == "" {
		return errors.New("no from address specified")
	}
	email.From = from

	to := email.Recipients()
	if len(to) == 0 {
		return errors.New("no recipients specified")
	}

	msg := s.buildMessage(email)

	if err := s.deliver(ctx, from.Address, to, msg); err != nil {
		recordError(span, err, err.Error())
		return errors.Wrap(err, "failed to send email")
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// deliver runs one SMTP session: dial, STARTTLS, AUTH, MAIL, RCPT, DATA.
func (s *Sender) deliver(ctx context.Context, from string, to []string, msg *gomail.Message) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("smtp.address", addr))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrap(err, "failed to connect to SMTP server")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "failed to greet SMTP server")
	}
	defer func() {
		// The message is either accepted or already failed by now.
		_ = client.Close()
	}()

	if s.cfg.TLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return errors.New("SMTP server does not support STARTTLS")
		}
		tlsConfig := &tls.Config{
			ServerName:         s.cfg.Host,
			InsecureSkipVerify: s.cfg.Insecure, // #nosec G402 -- controlled by config
			MinVersion:         tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return errors.Wrap(err, "failed to start TLS")
		}
		span.SetAttributes(attribute.Bool("smtp.starttls", true))
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return errors.Wrap(err, "failed to authenticate")
		}
	}

	if err := client.Mail(from); err != nil {
		return errors.Wrap(err, "failed to set sender")
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return errors.Wrapf(err, "failed to set recipient: %s", rcpt)
		}
	}

	w, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "failed to get data writer")
	}
	if _, err := msg.WriteTo(w); err != nil {
		_ = w.Close()
		return errors.Wrap(err, "failed to write message")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "message rejected")
	}

	// The relay has accepted the message; a failed QUIT changes nothing.
	_ = client.Quit()
	return nil
}

func (s *Sender) from(email mail.Email) mail.Address {
	from := email.From
	if from.Address == "" {
		from.Address = s.cfg.Username
	}
	if from.Name == "" {
		from.Name = s.cfg.FromName
	}
	return from
}

// buildMessage composes the MIME message. Inline attachments turn the body into
// multipart/related so HTML can reference them by Content-ID.
func (s *Sender) buildMessage(email mail.Email) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))

	m.SetHeader("From", m.FormatAddress(email.From.Address, email.From.Name))
	to := make([]string, 0, len(email.To))
	for _, a := range email.To {
		if a.Address != "" {
			to = append(to, m.FormatAddress(a.Address, a.Name))
		}
	}
	m.SetHeader("To", to...)
	m.SetHeader("Subject", email.Subject)
	m.SetDateHeader("Date", time.Now())

	for k, v := range email.Headers {
		m.SetHeader(k, v)
	}

	m.SetBody("text/plain", email.Body)
	if email.HTML != "" {
		m.AddAlternative("text/html", email.HTML)
	}

	for _, a := range email.Attachments {
		name := a.Filename
		if name == "" {
			name = defaultAttachmentName
		}

		header := map[string][]string{}
		if a.ContentType != "" {
			header["Content-Type"] = []string{a.ContentType}
		}

		data := a.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}

		if a.Inline {
			if a.ContentID != "" {
				header["Content-ID"] = []string{"<" + a.ContentID + ">"}
			}
			m.Embed(name, append(settings, gomail.SetHeader(header))...)
			continue
		}
		m.Attach(name, append(settings, gomail.SetHeader(header))...)
	}

	return m
}

func (s *Sender) Close() error {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.closed = true
	return nil
}
