// Package chat describes role-tagged text completion.
package chat

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrMissingAPIKey is returned before any request when no key is configured.
	ErrMissingAPIKey = errors.New("chat: api key is not set")
	// ErrEmptyCompletion is returned when the model answers with no text.
	ErrEmptyCompletion = errors.New("chat: empty completion")
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Message struct {
	Role    Role
	Content string
}

// Request carries the conversation and sampling parameters of one completion.
type Request struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Completer returns the text of a single completion choice.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
