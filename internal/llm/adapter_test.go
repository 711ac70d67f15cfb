package llm

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfwatch/pdfwatch/internal/common"
	"github.com/pdfwatch/pdfwatch/internal/testutil"
)

// scriptedClient fails or answers per model, recording every request.
type scriptedClient struct {
	mu       sync.Mutex
	answers  map[string]string
	failures map[string]error
	// failCount makes a model fail N times before succeeding.
	failCount map[string]int
	requests  []Request
}

func (c *scriptedClient) Complete(_ context.Context, req Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)

	if n, ok := c.failCount[req.Model]; ok && n > 0 {
		c.failCount[req.Model] = n - 1
		return "", fmt.Errorf("%w: overloaded_error (529)", common.ErrServiceOverloaded)
	}
	if err, ok := c.failures[req.Model]; ok {
		return "", err
	}
	if ans, ok := c.answers[req.Model]; ok {
		return ans, nil
	}
	return "", fmt.Errorf("unknown model %s", req.Model)
}

func newTestAdapter(client Client) *Adapter {
	return NewAdapter(client, Config{MaxRetries: 3}, testutil.DiscardLogger())
}

func TestAdapter_PrimarySucceeds(t *testing.T) {
	client := &scriptedClient{answers: map[string]string{DefaultModel: "請求書"}}
	a := newTestAdapter(client)

	got, err := a.Invoke(context.Background(), []ContentBlock{TextBlock("x")}, 50, 0, time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, "請求書", got)
	assert.Len(t, client.requests, 1)
}

func TestAdapter_FallsBackAfterHardFailure(t *testing.T) {
	client := &scriptedClient{
		failures: map[string]error{DefaultModel: fmt.Errorf("invalid request")},
		answers:  map[string]string{DefaultFallback: "見積書"},
	}
	a := newTestAdapter(client)

	got, err := a.Invoke(context.Background(), []ContentBlock{TextBlock("x")}, 50, 0, time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, "見積書", got)

	// A non-retryable failure moves straight to the fallback model.
	require.Len(t, client.requests, 2)
	assert.Equal(t, DefaultModel, client.requests[0].Model)
	assert.Equal(t, DefaultFallback, client.requests[1].Model)
}

func TestAdapter_RetriesCongestionThenSucceeds(t *testing.T) {
	client := &scriptedClient{
		failCount: map[string]int{DefaultModel: 2},
		answers:   map[string]string{DefaultModel: "領収書"},
	}
	a := newTestAdapter(client)

	start := time.Now()
	got, err := a.Invoke(context.Background(), []ContentBlock{TextBlock("x")}, 50, 0, time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, "領収書", got)
	assert.Len(t, client.requests, 3)

	// Two backoffs: 1.5s then 3s, each with up to 25% jitter.
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 4500*time.Millisecond)
}

func TestAdapter_AllModelsExhausted(t *testing.T) {
	client := &scriptedClient{
		failures: map[string]error{
			DefaultModel:    fmt.Errorf("bad request"),
			DefaultFallback: fmt.Errorf("bad request"),
		},
	}
	a := newTestAdapter(client)

	_, err := a.Invoke(context.Background(), []ContentBlock{TextBlock("x")}, 50, 0, time.Second, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
}

func TestAdapter_ContextCancelledDuringBackoff(t *testing.T) {
	client := &scriptedClient{failCount: map[string]int{DefaultModel: 3}}
	a := newTestAdapter(client)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := a.Invoke(ctx, []ContentBlock{TextBlock("x")}, 50, 0, time.Second, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAdapter_ExplicitCandidatesOverrideConfig(t *testing.T) {
	client := &scriptedClient{answers: map[string]string{"claude-3-5-haiku-20241022": "ok"}}
	a := newTestAdapter(client)

	got, err := a.Invoke(context.Background(), []ContentBlock{TextBlock("x")}, 50, 0, time.Second,
		[]string{"claude-3-5-haiku-20241022"})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	require.Len(t, client.requests, 1)
	assert.Equal(t, "claude-3-5-haiku-20241022", client.requests[0].Model)
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", DefaultModel},
		{"Claude 4 Sonnet", "claude-sonnet-4-20250514"},
		{"claude-4-sonnet", "claude-sonnet-4-20250514"},
		{"claude-3-5-sonnet-20241022", "claude-3-5-sonnet-20241022"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveModel(tt.input))
	}
}
