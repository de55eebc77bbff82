package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"rentwise/internal/verification/models"
)

const (
	documentKeyPrefix = "vision:doc:"
	selfieKeyPrefix   = "vision:selfie:"

	defaultCacheTTL = 10 * time.Minute
)

// RedisCache remembers successful analyses per image reference so a resubmitted
// image does not cost another provider call. Failures are never cached, and a
// Redis error falls through to the wrapped analyzer.
type RedisCache struct {
	next    Analyzer
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	lookups *prometheus.CounterVec
}

type CacheOption func(*RedisCache)

func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *RedisCache) {
		c.logger = logger
	}
}

// WithCacheMetrics registers the lookup counter on reg.
func WithCacheMetrics(reg prometheus.Registerer) CacheOption {
	return func(c *RedisCache) {
		if reg == nil {
			return
		}
		c.lookups = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "rentwise_vision_cache_lookups_total",
			Help: "Vision analysis cache lookups by kind and result",
		}, []string{"kind", "result"})
	}
}

func NewRedisCache(next Analyzer, client *redis.Client, opts ...CacheOption) *RedisCache {
	c := &RedisCache{next: next, client: client, ttl: defaultCacheTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *RedisCache) AnalyzeDocument(ctx context.Context, imageRef string, docType models.DocumentType) (models.DocumentAnalysis, error) {
	key := documentKey(imageRef, docType)
	var cached models.DocumentAnalysis
	if c.load(ctx, "document", key, &cached) {
		return cached, nil
	}
	result, err := c.next.AnalyzeDocument(ctx, imageRef, docType)
	if err != nil {
		return result, err
	}
	c.store(ctx, key, result)
	return result, nil
}

func (c *RedisCache) AnalyzeSelfie(ctx context.Context, imageRef string) (models.SelfieAnalysis, error) {
	key := selfieKey(imageRef)
	var cached models.SelfieAnalysis
	if c.load(ctx, "selfie", key, &cached) {
		return cached, nil
	}
	result, err := c.next.AnalyzeSelfie(ctx, imageRef)
	if err != nil {
		return result, err
	}
	c.store(ctx, key, result)
	return result, nil
}

func (c *RedisCache) load(ctx context.Context, kind, key string, dst any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.countLookup(kind, "miss")
		return false
	}
	if err != nil {
		c.countLookup(kind, "error")
		c.warn(ctx, "vision cache read failed", key, err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.countLookup(kind, "error")
		c.warn(ctx, "vision cache entry unreadable", key, err)
		return false
	}
	c.countLookup(kind, "hit")
	return true
}

func (c *RedisCache) countLookup(kind, result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(kind, result).Inc()
	}
}

func (c *RedisCache) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.warn(ctx, "vision cache encode failed", key, err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.warn(ctx, "vision cache write failed", key, err)
	}
}

func (c *RedisCache) warn(ctx context.Context, msg, key string, err error) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, "key", key, "error", err)
	}
}

// Keys hash the reference so signed URLs never land in Redis verbatim.
func documentKey(imageRef string, docType models.DocumentType) string {
	return documentKeyPrefix + string(docType) + ":" + hashRef(imageRef)
}

func selfieKey(imageRef string) string {
	return selfieKeyPrefix + hashRef(imageRef)
}

func hashRef(ref string) string {
	sum := sha256.Sum256([]byte(ref))
	return hex.EncodeToString(sum[:])
}
