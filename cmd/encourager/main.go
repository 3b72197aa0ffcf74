package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/pure-golang/encourager/campaign"
	"github.com/pure-golang/encourager/chat/mistral"
	"github.com/pure-golang/encourager/encourage"
	"github.com/pure-golang/encourager/env"
	"github.com/pure-golang/encourager/image"
	"github.com/pure-golang/encourager/image/catapi"
	"github.com/pure-golang/encourager/logger"
	"github.com/pure-golang/encourager/mail"
	"github.com/pure-golang/encourager/mail/noop"
	"github.com/pure-golang/encourager/mail/smtp"
	"github.com/pure-golang/encourager/metrics"
	"github.com/pure-golang/encourager/recipient"
	"github.com/pure-golang/encourager/sheet/gsheets"
	"github.com/pure-golang/encourager/tracing"
	"github.com/pure-golang/encourager/tracing/otlp"
)

func main() {
	var cfg Config
	if err := env.InitConfig(&cfg); err != nil {
		slog.Error("invalid configuration", "error", err.Error())
		_ = env.Usage(&cfg)
		os.Exit(1)
	}

	logger.InitDefault(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := run(ctx, cfg); err != nil {
		logger.WithErr(err).Error("run failed")
		stop()
		os.Exit(1)
	}
}

// run wires the components and sends one round of emails. Only setup
// failures are returned; per-recipient problems end up in the summary.
func run(ctx context.Context, cfg Config) (campaign.Summary, error) {
	if cfg.Tracing.Enabled() {
		provider, err := tracing.Init(otlp.NewProviderBuilder(cfg.Tracing))
		if err != nil {
			logger.FromContextWithErr(ctx, err).Warn("tracing disabled")
		}
		defer func() {
			logger.FromContextWithErrIf(ctx, provider.Close()).Warn("failed to flush traces")
		}()
	}

	m, err := metrics.InitDefault(cfg.Metrics)
	if err != nil {
		return campaign.Summary{}, errors.Wrap(err, "failed to init metrics")
	}
	// Pushes after the run.
	defer func() { _ = m.Close() }()

	var sender mail.Sender = smtp.NewSender(cfg.SMTP)
	if cfg.Campaign.DryRun {
		logger.FromContext(ctx).Info("dry run, emails are logged instead of sent")
		sender = noop.NewSender()
	}
	defer func() {
		logger.FromContextWithErrIf(ctx, sender.Close()).Warn("failed to close sender")
	}()

	var images image.Fetcher
	if cfg.Campaign.ImagesEnabled {
		images = catapi.New(cfg.Images)
	}

	reader := gsheets.New(cfg.Sheets)
	runner := campaign.NewRunner(
		cfg.Campaign,
		recipient.NewSource(reader, cfg.Recipients.Recipients()),
		recipient.NewSuppressor(reader, cfg.Recipients.DeletionList(),
			recipient.WithFailClosed(cfg.Recipients.DeletionFailClosed)),
		encourage.NewGenerator(mistral.New(cfg.Mistral)),
		images,
		campaign.NewMailer(sender),
	)

	return runner.Run(ctx), nil
}
