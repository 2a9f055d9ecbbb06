package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/newsfuse/internal/logger"
)

const (
	// DefaultCacheTTL is how long cached embeddings live.
	DefaultCacheTTL = 24 * time.Hour

	textKeyPrefix  = "emb:text:"
	imageKeyPrefix = "emb:image:"
)

// CacheConfig configures the redis-backed embedding cache.
type CacheConfig struct {
	// Addr is the redis address. Empty disables the cache.
	Addr string `yaml:"addr" mapstructure:"addr"`
	// Password for redis auth.
	Password string `yaml:"password" mapstructure:"password"`
	// DB selects the redis database.
	DB int `yaml:"db" mapstructure:"db"`
	// TTL for cached embeddings.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// CachedEmbedder wraps an Embedder with a redis cache keyed by content hash.
// Cache failures fall through to the underlying embedder; the cache can only
// ever make things faster, never break them.
type CachedEmbedder struct {
	inner  Embedder
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner with a redis embedding cache.
func NewCachedEmbedder(inner Embedder, client *redis.Client, ttl time.Duration, log logger.Interface) *CachedEmbedder {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &CachedEmbedder{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.WithComponent("embed_cache"),
	}
}

// EmbedText returns the cached embedding when present, otherwise delegates
// and stores the result.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return c.lookup(ctx, textKeyPrefix, text, func() ([]float32, error) {
		return c.inner.EmbedText(ctx, text)
	})
}

// EmbedImage returns the cached embedding when present, otherwise delegates
// and stores the result.
func (c *CachedEmbedder) EmbedImage(ctx context.Context, imageURL string) ([]float32, error) {
	return c.lookup(ctx, imageKeyPrefix, imageURL, func() ([]float32, error) {
		return c.inner.EmbedImage(ctx, imageURL)
	})
}

func (c *CachedEmbedder) lookup(ctx context.Context, prefix, content string, embed func() ([]float32, error)) ([]float32, error) {
	key := prefix + contentHash(content)

	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var vec []float32
		if unmarshalErr := json.Unmarshal(cached, &vec); unmarshalErr == nil && len(vec) > 0 {
			return vec, nil
		}
		// Corrupt entry: fall through and overwrite.
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("embedding cache read failed", "error", err)
	}

	vec, err := embed()
	if err != nil {
		return nil, err
	}

	payload, marshalErr := json.Marshal(vec)
	if marshalErr == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("embedding cache write failed", "error", setErr)
		}
	}

	return vec, nil
}

// contentHash returns the hex-encoded SHA-256 digest of the content.
func contentHash(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}
