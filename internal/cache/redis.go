package cache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrLockTimeout = errors.New("timeout waiting for lock")

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// Config holds Redis configuration
type Config struct {
	Host       string
	Port       int
	Password   string
	DB         int
	TLSEnabled bool
	TTL        time.Duration
	MutexTTL   time.Duration
}

// LoadConfigFromEnv loads Redis configuration from environment variables
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, _ := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	mutexTTL, _ := time.ParseDuration(getEnv("CACHE_MUTEX_TTL", "5s"))

	return &Config{
		Host:       getEnv("REDIS_HOST", "localhost"),
		Port:       port,
		Password:   getEnv("REDIS_PASSWORD", ""),
		DB:         db,
		TLSEnabled: getEnv("REDIS_TLS_ENABLED", "false") == "true",
		TTL:        ttl,
		MutexTTL:   mutexTTL,
	}
}

// Options converts the config into go-redis client options
func (c *Config) Options() *redis.Options {
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.Host, c.Port),
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}
	if c.TLSEnabled {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	return opts
}

// GetClient returns the global Redis client (singleton pattern)
func GetClient() (*redis.Client, error) {
	clientOnce.Do(func() {
		client = redis.NewClient(LoadConfigFromEnv().Options())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			clientErr = fmt.Errorf("failed to connect to Redis: %w", err)
		}
	})

	return client, clientErr
}

// Close closes the Redis client
func Close() {
	if client != nil {
		client.Close()
	}
}

// Store caches serialized query responses for one loaded network.
// Every key is prefixed by the network fingerprint, so a reloaded network never reads stale entries.
type Store struct {
	client      redis.Cmdable
	fingerprint string
	ttl         time.Duration
	mutexTTL    time.Duration
}

// NewStore creates a response cache over a Redis client
func NewStore(client redis.Cmdable, fingerprint string, ttl, mutexTTL time.Duration) *Store {
	return &Store{
		client:      client,
		fingerprint: fingerprint,
		ttl:         ttl,
		mutexTTL:    mutexTTL,
	}
}

// Fingerprint derives a short network identity from its source bytes
func Fingerprint(source []byte) string {
	hash := sha256.Sum256(source)
	return fmt.Sprintf("%x", hash[:8])
}

// Key generates a cache key for a query of the given kind
func (s *Store) Key(kind string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return fmt.Sprintf("tc:%s:%s:%x", s.fingerprint, kind, hash[:8])
}

// LockKey generates a mutex lock key
func LockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

// Get retrieves a cached response. A miss returns nil without error.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set caches a response with the store TTL
func (s *Store) Set(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// AcquireLock attempts to acquire the computation lock of a key.
// Returns true if the lock was acquired, false if it is already held.
func (s *Store) AcquireLock(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, LockKey(key), "1", s.mutexTTL).Result()
}

// ReleaseLock releases the computation lock of a key
func (s *Store) ReleaseLock(ctx context.Context, key string) error {
	return s.client.Del(ctx, LockKey(key)).Err()
}

// WaitForLock waits for another computation of key to finish and returns its cached result
func (s *Store) WaitForLock(ctx context.Context, key string, maxWait time.Duration) ([]byte, error) {
	lockKey := LockKey(key)
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		exists, err := s.client.Exists(ctx, lockKey).Result()
		if err != nil {
			return nil, err
		}

		if exists == 0 {
			return s.Get(ctx, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	return nil, ErrLockTimeout
}

// HealthCheck performs a health check on the Redis connection
func HealthCheck(ctx context.Context) error {
	client, err := GetClient()
	if err != nil {
		return fmt.Errorf("Redis client not initialized: %w", err)
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis ping failed: %w", err)
	}

	return nil
}

// StatsSource is the client surface read by ClientStats
type StatsSource interface {
	Info(ctx context.Context, section ...string) *redis.StringCmd
	PoolStats() *redis.PoolStats
}

// Stats returns keyspace and connection pool stats of the global client
func Stats(ctx context.Context) (map[string]interface{}, error) {
	client, err := GetClient()
	if err != nil {
		return nil, err
	}
	return ClientStats(ctx, client)
}

// ClientStats returns keyspace hit/miss counters and connection pool stats
func ClientStats(ctx context.Context, c StatsSource) (map[string]interface{}, error) {
	info, err := c.Info(ctx, "stats").Result()
	if err != nil {
		return nil, fmt.Errorf("Redis info failed: %w", err)
	}

	fields := parseInfo(info)
	keyspaceHits, _ := strconv.ParseInt(fields["keyspace_hits"], 10, 64)
	keyspaceMisses, _ := strconv.ParseInt(fields["keyspace_misses"], 10, 64)
	poolStats := c.PoolStats()

	return map[string]interface{}{
		"keyspace_hits":   keyspaceHits,
		"keyspace_misses": keyspaceMisses,
		"hits":            poolStats.Hits,
		"misses":          poolStats.Misses,
		"timeouts":        poolStats.Timeouts,
		"total_conns":     poolStats.TotalConns,
		"idle_conns":      poolStats.IdleConns,
		"stale_conns":     poolStats.StaleConns,
	}, nil
}

// parseInfo reads the "name:value" lines of an INFO reply
func parseInfo(info string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if name, value, ok := strings.Cut(line, ":"); ok {
			fields[name] = value
		}
	}
	return fields
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
