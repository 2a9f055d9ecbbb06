package provider

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"

	"github.com/jonesrussell/newsfuse/internal/textutil"
)

// staticDimensions is the vector size produced by the static provider.
const staticDimensions = 64

// Static is a deterministic in-process provider. Text embeddings are bags of
// hashed tokens, so lexically similar texts land near each other; image
// embeddings hash the URL path. It exists for tests and offline runs, not
// for quality.
type Static struct{}

var (
	_ Embedder  = (*Static)(nil)
	_ Generator = (*Static)(nil)
)

// NewStatic creates a new static provider.
func NewStatic() *Static {
	return &Static{}
}

// EmbedText returns a deterministic token-hash embedding.
func (s *Static) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, staticDimensions)
	for token := range textutil.TokenSet(text) {
		h := sha256.Sum256([]byte(token))
		idx := binary.BigEndian.Uint32(h[:4]) % staticDimensions
		vec[idx]++
	}
	return vec, nil
}

// EmbedImage returns a deterministic embedding derived from the URL.
func (s *Static) EmbedImage(ctx context.Context, imageURL string) ([]float32, error) {
	return s.EmbedText(ctx, strings.ReplaceAll(imageURL, "/", " "))
}

// Generate echoes a truncated prompt. Deterministic placeholder output.
func (s *Static) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	const maxEcho = 200
	prompt = strings.TrimSpace(prompt)
	if len(prompt) > maxEcho {
		prompt = prompt[:maxEcho]
	}
	return prompt, nil
}
