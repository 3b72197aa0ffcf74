package campaign

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pure-golang/encourager/image"
	"github.com/pure-golang/encourager/logger"
	"github.com/pure-golang/encourager/mail"
)

// Mailer turns a composed text into a mail.Email and reports delivery as a bool.
type Mailer struct {
	sender mail.Sender
}

func NewMailer(sender mail.Sender) *Mailer {
	return &Mailer{sender: sender}
}

// Deliver sends one email. Errors are logged, never returned.
func (m *Mailer) Deliver(ctx context.Context, to, subject, body string, img *image.Image) bool {
	ctx, span := tracer.Start(ctx, "Mailer.Deliver")
	defer span.End()

	withImage := img != nil && len(img.Data) > 0
	span.SetAttributes(attribute.Bool("mail.image", withImage))

	email := mail.Email{
		To:      []mail.Address{{Address: to}},
		Subject: subject,
		Body:    body,
		HTML:    HTML(body, withImage),
	}
	if withImage {
		email.Attachments = []mail.Attachment{{
			Filename:    ImageContentID + img.Extension(),
			ContentType: img.ContentType,
			Data:        img.Data,
			Inline:      true,
			ContentID:   ImageContentID,
		}}
	}

	if err := m.sender.Send(ctx, email); err != nil {
		recordError(span, err, "send failed")
		logger.FromContextWithErr(ctx, err).Error("failed to send email", slog.String("to", to))
		return false
	}

	span.SetStatus(codes.Ok, "")
	logger.FromContext(ctx).Info("email sent", slog.String("to", to))
	return true
}
