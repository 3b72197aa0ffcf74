// Package image describes fetching a picture to embed in an email.
package image

import (
	"context"
	"mime"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoResult is returned when a search yields nothing usable.
var ErrNoResult = errors.New("image: no result")

// Image is raw picture data with the type reported by the server.
type Image struct {
	Data        []byte
	ContentType string
}

// Extension guesses a file extension for the image, ".jpg" when unknown.
func (i Image) Extension() string {
	mediaType, _, err := mime.ParseMediaType(i.ContentType)
	if err != nil {
		return ".jpg"
	}
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if sub, ok := strings.CutPrefix(mediaType, "image/"); ok && sub != "" {
		return "." + sub
	}
	return ".jpg"
}

// Fetcher returns a random image.
type Fetcher interface {
	Random(ctx context.Context) (*Image, error)
}
