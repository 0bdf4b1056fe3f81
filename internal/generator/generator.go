// Package generator defines the external generative-model contract the
// coordinator consumes, plus the HTTP and SDK backends that implement it.
package generator

import "context"

// SamplingHint carries the opaque sampling knobs a backend may honor.
// Backends are free to ignore fields they cannot express.
type SamplingHint struct {
	// Temperature in the model's native range. 0 means backend default.
	Temperature float64
	// Seed requests reproducible sampling when the backend supports it.
	Seed *int64
	// Variant distinguishes otherwise-identical retry calls so backends
	// can derive alternate sampling (seed offsets, nucleus changes).
	Variant int
}

// Request is one generation call: produce Count named items for Topic,
// steering away from Avoid when the backend supports guidance.
type Request struct {
	Topic string
	Count int
	Avoid []string
	Hint  SamplingHint
}

// Generator produces candidate item names for a topic. Implementations
// may fail with a generic error, may return fewer, more, or
// duplicate-laden results than requested, and guarantee no ordering.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]string, error)
}
