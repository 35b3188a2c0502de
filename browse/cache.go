package browse

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/asktoapi/engine/internal/metrics"
)

const answerCacheType = "answer"

// AnswerCache memoizes chain answers in Redis, keyed by a digest of the
// normalized query. Cache failures are never fatal: a broken Redis degrades
// to answering every query through the model.
type AnswerCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewAnswerCache creates an AnswerCache. The metrics collector may be nil.
func NewAnswerCache(client *redis.Client, ttl time.Duration, collector *metrics.Collector, logger *zap.Logger) *AnswerCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnswerCache{
		client:  client,
		ttl:     ttl,
		metrics: collector,
		logger:  logger.With(zap.String("component", "answer_cache")),
	}
}

func answerCacheKey(query string) string {
	digest := sha256.Sum256([]byte(strings.TrimSpace(query)))
	return "browse:answer:" + hex.EncodeToString(digest[:])
}

// Get returns the cached answer for query, if any.
func (c *AnswerCache) Get(ctx context.Context, query string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}

	answer, err := c.client.Get(ctx, answerCacheKey(query)).Result()
	if errors.Is(err, redis.Nil) {
		c.recordMiss()
		return "", false
	}
	if err != nil {
		c.logger.Warn("answer cache get failed", zap.Error(err))
		c.recordMiss()
		return "", false
	}

	if c.metrics != nil {
		c.metrics.RecordCacheHit(answerCacheType)
	}
	return answer, true
}

// Set stores an answer for query. Errors are logged and swallowed.
func (c *AnswerCache) Set(ctx context.Context, query, answer string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, answerCacheKey(query), answer, c.ttl).Err(); err != nil {
		c.logger.Warn("answer cache set failed", zap.Error(err))
	}
}

func (c *AnswerCache) recordMiss() {
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(answerCacheType)
	}
}
