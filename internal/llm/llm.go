package llm

import (
	"context"
	"errors"
)

// GenerateInput carries one generation request to the inference backend.
type GenerateInput struct {
	Model  string
	Prompt string
}

// Fragment is one decoded piece of a streamed generation. HasText
// distinguishes an absent response field from an empty fragment; the final
// line usually carries Done with an empty fragment.
type Fragment struct {
	Text    string
	HasText bool
	Done    bool
}

// TokenStream is a lazy, forward-only, non-restartable sequence of
// fragments. Next returns io.EOF after the final fragment or when the
// connection closes. Close releases the underlying connection and must be
// called exactly once by the consumer.
type TokenStream interface {
	Next() (Fragment, error)
	Close() error
}

// Client abstracts the text-generation backend.
type Client interface {
	// Generate performs one blocking generation and returns the full text.
	Generate(ctx context.Context, input GenerateInput) (string, error)
	// Stream opens a streaming generation. The caller owns the returned
	// stream and must Close it.
	Stream(ctx context.Context, input GenerateInput) (TokenStream, error)
}

var (
	// ErrUnavailable means the backend did not answer within the deadline.
	ErrUnavailable = errors.New("inference backend timed out")
	// ErrUpstream means the backend failed in some other way.
	ErrUpstream = errors.New("inference backend error")
	// ErrNotConfigured is returned by the placeholder client.
	ErrNotConfigured = errors.New("inference backend not configured")
)

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderClient) Generate(ctx context.Context, input GenerateInput) (string, error) {
	_ = ctx
	_ = input
	return "", ErrNotConfigured
}

// Stream returns ErrNotConfigured.
func (PlaceholderClient) Stream(ctx context.Context, input GenerateInput) (TokenStream, error) {
	_ = ctx
	_ = input
	return nil, ErrNotConfigured
}
