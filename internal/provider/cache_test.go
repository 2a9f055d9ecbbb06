package provider_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsfuse/internal/provider"
)

// countingEmbedder counts delegated calls.
type countingEmbedder struct {
	calls atomic.Int64
}

func (c *countingEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	c.calls.Add(1)
	return []float32{1, 2, 3}, nil
}

func (c *countingEmbedder) EmbedImage(_ context.Context, _ string) ([]float32, error) {
	c.calls.Add(1)
	return []float32{4, 5, 6}, nil
}

func newCachedEmbedder(t *testing.T, inner provider.Embedder) (*provider.CachedEmbedder, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return provider.NewCachedEmbedder(inner, client, time.Hour, nil), mr
}

func TestCachedEmbedderHitsSkipInner(t *testing.T) {
	inner := &countingEmbedder{}
	cached, _ := newCachedEmbedder(t, inner)
	ctx := context.Background()

	first, err := cached.EmbedText(ctx, "some text")
	require.NoError(t, err)
	second, err := cached.EmbedText(ctx, "some text")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestCachedEmbedderSeparatesTextAndImageKeys(t *testing.T) {
	inner := &countingEmbedder{}
	cached, _ := newCachedEmbedder(t, inner)
	ctx := context.Background()

	textVec, err := cached.EmbedText(ctx, "same content")
	require.NoError(t, err)
	imageVec, err := cached.EmbedImage(ctx, "same content")
	require.NoError(t, err)

	assert.NotEqual(t, textVec, imageVec)
	assert.Equal(t, int64(2), inner.calls.Load())
}

func TestCachedEmbedderSurvivesRedisOutage(t *testing.T) {
	inner := &countingEmbedder{}
	cached, mr := newCachedEmbedder(t, inner)
	mr.Close()

	// The cache can only make things faster, never break them.
	vec, err := cached.EmbedText(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
}

func TestCachedEmbedderOverwritesCorruptEntry(t *testing.T) {
	inner := &countingEmbedder{}
	cached, mr := newCachedEmbedder(t, inner)
	ctx := context.Background()

	_, err := cached.EmbedText(ctx, "some text")
	require.NoError(t, err)
	require.Equal(t, 1, len(mr.Keys()))

	// Corrupt the stored entry; the next lookup must fall through.
	require.NoError(t, mr.Set(mr.Keys()[0], "not json"))

	vec, err := cached.EmbedText(ctx, "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
	assert.Equal(t, int64(2), inner.calls.Load())
}
