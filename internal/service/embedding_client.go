package service

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// EmbeddingClient generates embedding vectors for text.
// Implemented by provider-specific clients (e.g. OpenAI).
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)
}

// RateLimitedEmbeddingClient wraps an EmbeddingClient with a token-bucket
// limiter so batch work (analysis, backfill) stays under the provider's
// request quota. Wait blocks rather than drops; callers cancel via ctx.
type RateLimitedEmbeddingClient struct {
	inner   EmbeddingClient
	limiter *rate.Limiter
}

// NewRateLimitedEmbeddingClient creates a rate-limited wrapper allowing
// requestsPerSecond sustained throughput with the given burst.
func NewRateLimitedEmbeddingClient(inner EmbeddingClient, requestsPerSecond float64, burst int) *RateLimitedEmbeddingClient {
	if burst < 1 {
		burst = 1
	}

	return &RateLimitedEmbeddingClient{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// CreateEmbedding implements EmbeddingClient.
func (c *RateLimitedEmbeddingClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}

	return c.inner.CreateEmbedding(ctx, input)
}
