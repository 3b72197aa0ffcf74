package catapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/encourager/image"
)

var _ image.Fetcher = (*Fetcher)(nil)

var tracer = otel.Tracer("github.com/pure-golang/encourager/image/catapi")

// Config for a search endpoint answering with a JSON array of {"url": ...} objects.
type Config struct {
	SearchURL string        `envconfig:"IMAGE_SEARCH_URL" default:"https://api.thecatapi.com/v1/images/search"`
	APIKey    string        `envconfig:"IMAGE_API_KEY"` // sent as x-api-key when set
	Timeout   time.Duration `envconfig:"IMAGE_TIMEOUT" default:"30s"`
	MaxBytes  int64         `envconfig:"IMAGE_MAX_BYTES" default:"10485760"`
}

type searchResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Fetcher implements image.Fetcher over plain HTTP.
type Fetcher struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Fetcher {
	return &Fetcher{
		cfg: cfg,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
	}
}

// Random searches for one image and downloads it.
func (f *Fetcher) Random(ctx context.Context) (*image.Image, error) {
	ctx, span := tracer.Start(ctx, "CatAPI.Random", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	url, err := f.search(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("image.url", url))

	img, err := f.download(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "download failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("image.content_type", img.ContentType),
		attribute.Int("image.size", len(img.Data)),
	)
	span.SetStatus(codes.Ok, "")
	return img, nil
}

func (f *Fetcher) search(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.SearchURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build search request")
	}
	req.Header.Set("Accept", "application/json")
	if f.cfg.APIKey != "" {
		req.Header.Set("x-api-key", f.cfg.APIKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to search images")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("image search returned %s", resp.Status)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", errors.Wrap(err, "failed to decode search response")
	}
	if len(results) == 0 || results[0].URL == "" {
		return "", errors.WithStack(image.ErrNoResult)
	}

	return results[0].URL, nil
}

func (f *Fetcher) download(ctx context.Context, url string) (*image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build download request for %s", url)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to download image")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("image download returned %s", resp.Status)
	}

	limit := f.cfg.MaxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image")
	}
	if int64(len(data)) > limit {
		return nil, errors.Errorf("image exceeds %d bytes", limit)
	}
	if len(data) == 0 {
		return nil, errors.WithStack(image.ErrNoResult)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &image.Image{Data: data, ContentType: contentType}, nil
}
