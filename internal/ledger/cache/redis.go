// Package cache fronts notarization reads with Redis. Records are write-once
// so cached entries never go stale; the TTL only bounds memory, not
// correctness.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
)

var (
	cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexseal_notarization_cache_requests_total",
		Help: "Notarization cache lookups by result",
	}, []string{"result"})
)

const notarizationKeyPrefix = "ledger:notarization:"

// RedisCache implements ledger.ReadCache over a shared Redis client. Cache
// errors degrade to misses; the ledger store remains the source of truth.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache creates a notarization read cache. ttl <= 0 means no expiry.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

type cachedNotarization struct {
	Root        fingerprint.Digest `json:"root"`
	Publisher   string             `json:"publisher"`
	BlockHeight uint64             `json:"block_height"`
	Timestamp   time.Time          `json:"timestamp"`
}

func (c *RedisCache) GetNotarization(ctx context.Context, runID ledger.Key) (ledger.NotarizationRecord, bool) {
	data, err := c.client.Get(ctx, notarizationKeyPrefix+runID.Hex()).Bytes()
	if errors.Is(err, redis.Nil) {
		cacheHitsTotal.WithLabelValues("miss").Inc()
		return ledger.NotarizationRecord{}, false
	}
	if err != nil {
		cacheHitsTotal.WithLabelValues("error").Inc()
		c.logger.Warn("notarization cache read failed", "error", err)
		return ledger.NotarizationRecord{}, false
	}

	var row cachedNotarization
	if err := json.Unmarshal(data, &row); err != nil {
		cacheHitsTotal.WithLabelValues("error").Inc()
		c.logger.Warn("notarization cache entry corrupt", "run_id", runID.Hex(), "error", err)
		return ledger.NotarizationRecord{}, false
	}

	cacheHitsTotal.WithLabelValues("hit").Inc()
	return ledger.NotarizationRecord{
		RunID:       runID,
		Root:        row.Root,
		Publisher:   row.Publisher,
		BlockHeight: row.BlockHeight,
		Timestamp:   row.Timestamp,
	}, true
}

func (c *RedisCache) PutNotarization(ctx context.Context, rec ledger.NotarizationRecord) {
	data, err := json.Marshal(cachedNotarization{
		Root:        rec.Root,
		Publisher:   rec.Publisher,
		BlockHeight: rec.BlockHeight,
		Timestamp:   rec.Timestamp,
	})
	if err != nil {
		c.logger.Warn("encode notarization cache entry", "error", err)
		return
	}
	if err := c.client.Set(ctx, notarizationKeyPrefix+rec.RunID.Hex(), data, c.ttl).Err(); err != nil {
		c.logger.Warn("notarization cache write failed", "error", err)
	}
}

var _ ledger.ReadCache = (*RedisCache)(nil)
