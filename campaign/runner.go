// Package campaign runs one pass of the daily encouragement emails.
package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pure-golang/encourager/image"
	"github.com/pure-golang/encourager/logger"
	"github.com/pure-golang/encourager/recipient"
)

// RecipientSource lists who gets an email this run.
type RecipientSource interface {
	Load(ctx context.Context) []recipient.Recipient
}

// Suppressor reports addresses on the deletion list.
type Suppressor interface {
	IsSuppressed(ctx context.Context, email string) bool
}

// Generator writes the message for what a recipient shared.
type Generator interface {
	Generate(ctx context.Context, content string) string
}

// Deliverer sends one composed email.
type Deliverer interface {
	Deliver(ctx context.Context, to, subject, body string, img *image.Image) bool
}

// Summary counts the outcome of a run.
type Summary struct {
	Sent    int
	Failed  int
	Skipped int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d sent, %d failed", s.Sent, s.Failed)
}

// Runner walks the recipients once, in order, one at a time.
type Runner struct {
	cfg        Config
	source     RecipientSource
	suppressor Suppressor
	generator  Generator
	images     image.Fetcher // nil disables pictures
	mailer     Deliverer
}

func NewRunner(cfg Config, source RecipientSource, suppressor Suppressor, generator Generator, images image.Fetcher, mailer Deliverer) *Runner {
	if !cfg.ImagesEnabled {
		images = nil
	}
	return &Runner{
		cfg:        cfg,
		source:     source,
		suppressor: suppressor,
		generator:  generator,
		images:     images,
		mailer:     mailer,
	}
}

// Run sends today's emails and returns the tally. A canceled ctx stops the
// run before the next recipient.
func (r *Runner) Run(ctx context.Context) Summary {
	ctx, span := tracer.Start(ctx, "Runner.Run")
	defer span.End()

	var summary Summary
	recipients := r.source.Load(ctx)
	if len(recipients) == 0 {
		logger.FromContext(ctx).Info("no recipients found")
		return summary
	}

	for i, rcpt := range recipients {
		if err := ctx.Err(); err != nil {
			recordError(span, err, "interrupted")
			logger.FromContextWithErr(ctx, err).Warn("run interrupted", slog.Int("remaining", len(recipients)-i))
			break
		}

		switch r.process(ctx, rcpt) {
		case statusSent:
			summary.Sent++
		case statusFailed:
			summary.Failed++
		case statusSkipped:
			summary.Skipped++
		}
	}

	span.SetAttributes(
		attribute.Int("campaign.sent", summary.Sent),
		attribute.Int("campaign.failed", summary.Failed),
		attribute.Int("campaign.skipped", summary.Skipped),
	)
	logger.FromContext(ctx).Info("Summary: "+summary.String(), slog.Int("skipped", summary.Skipped))
	return summary
}

func (r *Runner) process(ctx context.Context, rcpt recipient.Recipient) string {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "Runner.process")
	defer span.End()
	ctx = logger.With(ctx, slog.String("recipient", rcpt.Email))

	status := r.deliver(ctx, rcpt)

	span.SetAttributes(attribute.String("campaign.status", status))
	if status == statusFailed {
		span.SetStatus(codes.Error, "delivery failed")
	}
	recordRecipient(status, time.Since(start).Seconds())
	return status
}

func (r *Runner) deliver(ctx context.Context, rcpt recipient.Recipient) string {
	if r.suppressor.IsSuppressed(ctx, rcpt.Email) {
		logger.FromContext(ctx).Info("skipping recipient on deletion list")
		return statusSkipped
	}

	img := r.fetchImage(ctx)
	message := r.generator.Generate(ctx, rcpt.Content)
	body := Body(rcpt.Name, message, r.cfg.Signature, img != nil)

	if !r.mailer.Deliver(ctx, rcpt.Email, Subject(rcpt.Name), body, img) {
		return statusFailed
	}
	return statusSent
}

// fetchImage returns nil when pictures are off or the fetch fails.
func (r *Runner) fetchImage(ctx context.Context) *image.Image {
	if r.images == nil {
		return nil
	}

	img, err := r.images.Random(ctx)
	if err != nil {
		logger.FromContextWithErr(ctx, err).Warn("failed to fetch image, sending without one")
		return nil
	}
	if img == nil || len(img.Data) == 0 {
		return nil
	}
	return img
}
