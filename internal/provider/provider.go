// Package provider defines the external embedding and generation
// capabilities and their implementations. Providers are constructed once at
// startup and passed into components by reference; nothing here is ambient
// global state.
package provider

import (
	"context"
	"errors"
)

// Common errors returned by providers.
var (
	// ErrProviderFailure indicates an embedding or generation call failed.
	// Callers recover by treating the unit as zero-score or non-matching.
	ErrProviderFailure = errors.New("provider call failed")
	// ErrUnknownKind is returned when the registry is asked for a provider
	// kind it does not know.
	ErrUnknownKind = errors.New("unknown provider kind")
)

// Embedder maps text and images into one shared vector space so cross-modal
// cosine similarity is well defined.
type Embedder interface {
	// EmbedText returns the embedding vector for the given text.
	EmbedText(ctx context.Context, text string) ([]float32, error)
	// EmbedImage returns the embedding vector for the image at the given
	// URL, with the same dimensionality as EmbedText output.
	EmbedImage(ctx context.Context, imageURL string) ([]float32, error)
}

// GenerateOptions tunes a generation call.
type GenerateOptions struct {
	// MaxTokens bounds the generated output length. Zero means provider
	// default.
	MaxTokens int
	// Temperature controls sampling randomness. Zero means provider default.
	Temperature float64
}

// Generator produces text from a prompt. Used for title condensing, tagging,
// and bias-neutral rewriting.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}
