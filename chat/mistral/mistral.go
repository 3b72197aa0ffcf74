package mistral

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/encourager/chat"
)

var _ chat.Completer = (*Client)(nil)

var tracer = otel.Tracer("github.com/pure-golang/encourager/chat/mistral")

// Config for the Mistral chat completions API. It speaks the OpenAI wire format.
type Config struct {
	APIKey  string        `envconfig:"MISTRAL_API_KEY"`
	Model   string        `envconfig:"MISTRAL_MODEL" default:"mistral-small-latest"`
	BaseURL string        `envconfig:"MISTRAL_BASE_URL" default:"https://api.mistral.ai/v1"`
	Timeout time.Duration `envconfig:"MISTRAL_TIMEOUT" default:"60s"`
}

// Client implements chat.Completer. A Client without a key is valid and
// fails every call with chat.ErrMissingAPIKey.
type Client struct {
	cfg    Config
	client *openai.Client
}

func New(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.Timeout,
	}

	return &Client{
		cfg:    cfg,
		client: openai.NewClientWithConfig(oc),
	}
}

// Complete sends req and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req chat.Request) (string, error) {
	ctx, span := tracer.Start(ctx, "Mistral.Complete", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("chat.model", c.cfg.Model),
		attribute.Int("chat.messages", len(req.Messages)),
		attribute.Float64("chat.temperature", float64(req.Temperature)),
		attribute.Int("chat.max_tokens", req.MaxTokens),
	)

	if c.cfg.APIKey == "" {
		span.SetStatus(codes.Error, chat.ErrMissingAPIKey.Error())
		return "", chat.ErrMissingAPIKey
	}

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", errors.Wrap(err, "failed to create chat completion")
	}

	span.SetAttributes(attribute.Int("chat.completion_tokens", resp.Usage.CompletionTokens))

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		span.SetStatus(codes.Error, chat.ErrEmptyCompletion.Error())
		return "", chat.ErrEmptyCompletion
	}

	span.SetStatus(codes.Ok, "")
	return resp.Choices[0].Message.Content, nil
}
