package advisory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "advisory:analysis:"

// CachedClient memoizes successful analyses in Redis. Cache errors never fail a call.
type CachedClient struct {
	next   Client
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedClient wraps next. With a nil rdb it returns next unchanged.
func NewCachedClient(next Client, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) Client {
	if rdb == nil || next == nil {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedClient{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(req Request) string {
	sum := sha256.Sum256([]byte(req.Subject + "\x00" + req.Description))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// Analyze implements Client.
func (c *CachedClient) Analyze(ctx context.Context, req Request) (Analyzed, error) {
	key := cacheKey(req)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached Analyzed
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		c.logger.Warn("discarding corrupt advisory cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("advisory cache read failed", zap.Error(err))
	}

	analyzed, err := c.next.Analyze(ctx, req)
	if err != nil {
		return Analyzed{}, err
	}

	payload, err := json.Marshal(analyzed)
	if err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("advisory cache write failed", zap.Error(err))
		}
	}
	return analyzed, nil
}
