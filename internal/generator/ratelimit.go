package generator

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// LimitedGenerator wraps a Generator behind a shared rate limiter so
// concurrent harness runs cannot overwhelm the upstream API. Waiting
// honors context cancellation.
type LimitedGenerator struct {
	inner   Generator
	limiter *rate.Limiter
}

// Limited wraps gen with the given limiter. A nil limiter returns gen
// unchanged.
func Limited(gen Generator, limiter *rate.Limiter) Generator {
	if limiter == nil {
		return gen
	}
	return &LimitedGenerator{inner: gen, limiter: limiter}
}

// Generate waits for limiter admission, then delegates.
func (g *LimitedGenerator) Generate(ctx context.Context, req Request) ([]string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return g.inner.Generate(ctx, req)
}
