package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pdfwatch/pdfwatch/internal/common"
)

// Adapter runs completions against an ordered model list. Each model gets
// a bounded number of attempts with exponential backoff on congestion
// signatures; any other failure moves straight to the next model. All
// callers share this policy instead of duplicating retry loops.
type Adapter struct {
	client  Client
	logger  *slog.Logger
	models  []string
	retries int
}

// NewAdapter creates an adapter over a transport client.
func NewAdapter(client Client, cfg Config, logger *slog.Logger) *Adapter {
	primary := ResolveModel(cfg.Model)
	fallback := cfg.Fallback
	if fallback == "" {
		fallback = DefaultFallback
	}

	models := []string{primary}
	if fallback != primary {
		models = append(models, fallback)
	}

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}

	return &Adapter{
		client:  client,
		logger:  logger,
		models:  models,
		retries: retries,
	}
}

// Invoke sends the content blocks, trying each candidate model in order.
// An empty candidates slice uses the configured primary/fallback pair.
func (a *Adapter) Invoke(ctx context.Context, blocks []ContentBlock, maxTokens int, temperature float64, timeout time.Duration, candidates []string) (string, error) {
	models := candidates
	if len(models) == 0 {
		models = a.models
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var lastErr error
	for _, m := range models {
		delay := 1500 * time.Millisecond
		for attempt := 1; attempt <= a.retries; attempt++ {
			text, err := a.client.Complete(ctx, Request{
				Model:       m,
				Blocks:      blocks,
				MaxTokens:   maxTokens,
				Temperature: temperature,
				Timeout:     timeout,
			})
			if err == nil {
				return text, nil
			}
			lastErr = err

			if common.IsRetryable(err) && attempt < a.retries {
				wait := time.Duration(float64(delay) * (1 + 0.25*rand.Float64()))
				a.logger.Warn("model congested, backing off",
					"model", m,
					"attempt", attempt,
					"max_attempts", a.retries,
					"wait", wait)
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(wait):
				}
				delay *= 2
				continue
			}

			a.logger.Warn("model invocation failed",
				"model", m,
				"error", err)
			break
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate models configured")
	}
	return "", fmt.Errorf("%w: %v", common.ErrServiceUnavailable, lastErr)
}
