// Package llm wraps the external classification service behind a small
// completion interface with model fallback and congestion backoff.
package llm

import (
	"context"
	"time"
)

// ContentBlock is one ordered element of a request: either text or an
// encoded page image.
type ContentBlock struct {
	Text      string
	Data      []byte // image payload, nil for text blocks
	MediaType string // "image/png" or "image/jpeg" for image blocks
}

// TextBlock builds a text content block.
func TextBlock(s string) ContentBlock {
	return ContentBlock{Text: s}
}

// ImageBlock builds an image content block.
func ImageBlock(data []byte, mediaType string) ContentBlock {
	return ContentBlock{Data: data, MediaType: mediaType}
}

// IsImage reports whether the block carries an image payload.
func (b ContentBlock) IsImage() bool {
	return len(b.Data) > 0
}

// Request is a single completion request against one model.
type Request struct {
	Model       string
	Blocks      []ContentBlock
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Client defines the transport to the classification service.
type Client interface {
	// Complete sends one request and returns the raw text completion.
	Complete(ctx context.Context, req Request) (string, error)
}

// Config holds client configuration.
type Config struct {
	APIKey      string
	Model       string
	Fallback    string
	MaxRetries  int
	InitialWait time.Duration
}

// Default models. The fallback is tried after the primary is exhausted.
const (
	DefaultModel    = "claude-sonnet-4-20250514"
	DefaultFallback = "claude-3-5-sonnet-20241022"
)

// modelAliases maps display names from older configs onto API model IDs.
var modelAliases = map[string]string{
	"Claude 4 Sonnet": "claude-sonnet-4-20250514",
	"claude-4-sonnet": "claude-sonnet-4-20250514",
}

// ResolveModel maps a configured model name or alias to an API model ID.
func ResolveModel(configured string) string {
	if configured == "" {
		return DefaultModel
	}
	if id, ok := modelAliases[configured]; ok {
		return id
	}
	return configured
}
