package main

import (
	"github.com/pure-golang/encourager/campaign"
	"github.com/pure-golang/encourager/chat/mistral"
	"github.com/pure-golang/encourager/image/catapi"
	"github.com/pure-golang/encourager/logger"
	"github.com/pure-golang/encourager/mail/smtp"
	"github.com/pure-golang/encourager/metrics"
	"github.com/pure-golang/encourager/recipient"
	"github.com/pure-golang/encourager/sheet/gsheets"
	"github.com/pure-golang/encourager/tracing/otlp"
)

// Config gathers the settings of every component. Variable names are the
// ones declared by each package, without a prefix.
type Config struct {
	Logger     logger.Config
	Tracing    otlp.Config
	Metrics    metrics.Config
	Sheets     gsheets.Config
	Recipients recipient.Config
	Mistral    mistral.Config
	Images     catapi.Config
	SMTP       smtp.Config
	Campaign   campaign.Config
}
