//go:build integration

package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
	"lexseal/internal/ledger/cache"
	"lexseal/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.cache = cache.NewRedisCache(s.redis.Client, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	runID := ledger.DeriveKey("run_cache")
	rec := ledger.NotarizationRecord{
		RunID:       runID,
		Root:        fingerprint.Keccak256([]byte("root")),
		Publisher:   "svc",
		BlockHeight: 7,
		Timestamp:   time.Now().UTC().Truncate(time.Millisecond),
	}

	_, ok := s.cache.GetNotarization(ctx, runID)
	s.False(ok, "empty cache misses")

	s.cache.PutNotarization(ctx, rec)

	got, ok := s.cache.GetNotarization(ctx, runID)
	s.Require().True(ok)
	s.Equal(rec.Root, got.Root)
	s.Equal(rec.Publisher, got.Publisher)
	s.Equal(rec.BlockHeight, got.BlockHeight)
	s.True(rec.Timestamp.Equal(got.Timestamp))
}

func (s *RedisCacheSuite) TestCorruptEntryDegradesToMiss() {
	ctx := context.Background()
	runID := ledger.DeriveKey("run_corrupt")

	err := s.redis.Client.Set(ctx, "ledger:notarization:"+runID.Hex(), "not-json", 0).Err()
	s.Require().NoError(err)

	_, ok := s.cache.GetNotarization(ctx, runID)
	s.False(ok)
}

func (s *RedisCacheSuite) TestTTLExpiry() {
	ctx := context.Background()
	short := cache.NewRedisCache(s.redis.Client, 500*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	runID := ledger.DeriveKey("run_ttl")

	short.PutNotarization(ctx, ledger.NotarizationRecord{RunID: runID, Publisher: "svc"})

	_, ok := short.GetNotarization(ctx, runID)
	s.Require().True(ok)

	time.Sleep(700 * time.Millisecond)

	_, ok = short.GetNotarization(ctx, runID)
	s.False(ok)
}
