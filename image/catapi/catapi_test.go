package catapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure-golang/encourager/image"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeCatAPI struct {
	results     []map[string]any
	searchCode  int
	imageCode   int
	contentType string
	data        []byte

	mu     sync.Mutex
	apiKey string
}

func (f *fakeCatAPI) key() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apiKey
}

func (f *fakeCatAPI) start(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/v1/images/search", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.apiKey = r.Header.Get("x-api-key")
		f.mu.Unlock()
		if f.searchCode != 0 {
			w.WriteHeader(f.searchCode)
			return
		}
		results := f.results
		if results == nil {
			results = []map[string]any{{"id": "abc", "url": srv.URL + "/images/abc.png", "width": 10, "height": 10}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(results)
	})
	mux.HandleFunc("/images/abc.png", func(w http.ResponseWriter, _ *http.Request) {
		if f.imageCode != 0 {
			w.WriteHeader(f.imageCode)
			return
		}
		if f.contentType != "" {
			w.Header().Set("Content-Type", f.contentType)
		}
		_, _ = w.Write(f.data)
	})

	return srv
}

func newFetcher(srv *httptest.Server) *Fetcher {
	return New(Config{SearchURL: srv.URL + "/v1/images/search", Timeout: 5 * time.Second})
}

func TestFetcher_Random(t *testing.T) {
	f := &fakeCatAPI{contentType: "image/png", data: pngBytes}
	srv := f.start(t)

	img, err := newFetcher(srv).Random(context.Background())
	require.NoError(t, err)

	assert.Equal(t, pngBytes, img.Data)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, ".png", img.Extension())
	assert.Empty(t, f.key())
}

func TestFetcher_Random_SendsAPIKey(t *testing.T) {
	f := &fakeCatAPI{contentType: "image/png", data: pngBytes}
	srv := f.start(t)
	fetcher := New(Config{SearchURL: srv.URL + "/v1/images/search", APIKey: "live_key"})

	_, err := fetcher.Random(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "live_key", f.key())
}

func TestFetcher_Random_DetectsContentType(t *testing.T) {
	f := &fakeCatAPI{data: pngBytes}
	srv := f.start(t)

	img, err := newFetcher(srv).Random(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "image/png", img.ContentType)
}

func TestFetcher_Random_EmptyResults(t *testing.T) {
	f := &fakeCatAPI{results: []map[string]any{}}
	srv := f.start(t)

	_, err := newFetcher(srv).Random(context.Background())

	assert.True(t, errors.Is(err, image.ErrNoResult))
}

func TestFetcher_Random_MissingURL(t *testing.T) {
	f := &fakeCatAPI{results: []map[string]any{{"id": "abc"}}}
	srv := f.start(t)

	_, err := newFetcher(srv).Random(context.Background())

	assert.True(t, errors.Is(err, image.ErrNoResult))
}

func TestFetcher_Random_SearchStatus(t *testing.T) {
	f := &fakeCatAPI{searchCode: http.StatusTooManyRequests}
	srv := f.start(t)

	_, err := newFetcher(srv).Random(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "image search returned 429")
}

func TestFetcher_Random_DownloadStatus(t *testing.T) {
	f := &fakeCatAPI{imageCode: http.StatusNotFound}
	srv := f.start(t)

	_, err := newFetcher(srv).Random(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "image download returned 404")
}

func TestFetcher_Random_EmptyBody(t *testing.T) {
	f := &fakeCatAPI{contentType: "image/jpeg"}
	srv := f.start(t)

	_, err := newFetcher(srv).Random(context.Background())

	assert.True(t, errors.Is(err, image.ErrNoResult))
}

func TestFetcher_Random_TooLarge(t *testing.T) {
	f := &fakeCatAPI{contentType: "image/png", data: pngBytes}
	srv := f.start(t)
	fetcher := New(Config{SearchURL: srv.URL + "/v1/images/search", MaxBytes: 4})

	_, err := fetcher.Random(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "image exceeds 4 bytes")
}

func TestFetcher_Random_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(Config{SearchURL: url, Timeout: time.Second}).Random(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to search images")
}
