package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"
)

// Backend selects the ledger store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendLevelDB  Backend = "leveldb"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	Publisher     string
	JWTSigningKey string

	// VaultKey is the 32-byte audit encryption key, hex-encoded in the
	// environment.
	VaultKey []byte

	Backend     Backend
	PostgresDSN string
	LevelDBPath string

	RedisURL     string
	CacheTTL     time.Duration
	KafkaBrokers []string

	SubmitRetryInitial time.Duration
	SubmitRetryWindow  time.Duration
}

// FromEnv builds a Server config from LEXSEAL_* environment variables so
// main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:               envOr("LEXSEAL_ADDR", ":8080"),
		Publisher:          envOr("LEXSEAL_PUBLISHER", "lexseal-server"),
		JWTSigningKey:      envOr("LEXSEAL_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Backend:            Backend(envOr("LEXSEAL_LEDGER_BACKEND", string(BackendMemory))),
		PostgresDSN:        os.Getenv("LEXSEAL_POSTGRES_DSN"),
		LevelDBPath:        envOr("LEXSEAL_LEVELDB_PATH", "data/ledger"),
		RedisURL:           os.Getenv("LEXSEAL_REDIS_URL"),
		CacheTTL:           durationOr("LEXSEAL_CACHE_TTL", 24*time.Hour),
		SubmitRetryInitial: durationOr("LEXSEAL_SUBMIT_RETRY_INITIAL", 100*time.Millisecond),
		SubmitRetryWindow:  durationOr("LEXSEAL_SUBMIT_RETRY_WINDOW", 10*time.Second),
	}

	if brokers := os.Getenv("LEXSEAL_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	switch cfg.Backend {
	case BackendMemory, BackendPostgres, BackendLevelDB:
	default:
		return Server{}, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
	if cfg.Backend == BackendPostgres && cfg.PostgresDSN == "" {
		return Server{}, fmt.Errorf("LEXSEAL_POSTGRES_DSN required for postgres backend")
	}

	keyHex := os.Getenv("LEXSEAL_VAULT_KEY")
	if keyHex == "" {
		// Development default. A production deployment must set its own key:
		// losing it makes every sealed audit payload unreadable.
		keyHex = strings.Repeat("0b", 32)
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return Server{}, fmt.Errorf("decode LEXSEAL_VAULT_KEY: %w", err)
	}
	if len(key) != 32 {
		return Server{}, fmt.Errorf("LEXSEAL_VAULT_KEY must be 32 bytes, got %d", len(key))
	}
	cfg.VaultKey = key

	return cfg, nil
}

// Redis is the connection configuration consumed by platform/redis.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisConfig derives Redis settings with conservative defaults.
func (s Server) RedisConfig() Redis {
	return Redis{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
