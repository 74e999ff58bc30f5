package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/crisiswatch/crisiswatch/pkg/config"
	"github.com/crisiswatch/crisiswatch/pkg/logging"
)

var (
	// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
	ErrCacheDisabled = fmt.Errorf("cache is disabled")
	// ErrCacheMiss is returned when a key is not present
	ErrCacheMiss = fmt.Errorf("cache miss")
)

// Cache wraps the Redis client used to persist geocoding results
// across runs. A nil *Cache is a valid disabled cache.
type Cache struct {
	client *redis.Client
}

// New creates a new Redis cache client
func New(cfg *config.RedisConfig) (*Cache, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &Cache{client: client}, nil
}

// geoEntry is the stored form of a geocoding result; Found false marks
// a definitive no-match.
type geoEntry struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Found bool    `json:"found"`
}

// GetCoordinates looks up a previously resolved place name. The bool
// result mirrors the stored outcome: (coords, true) for a hit with a
// match, (nil, true) for a cached no-match.
func (c *Cache) GetCoordinates(ctx context.Context, place string) (lat, lng float64, found bool, err error) {
	if c == nil || c.client == nil {
		return 0, 0, false, ErrCacheDisabled
	}

	raw, err := c.client.Get(ctx, c.geoKey(place)).Result()
	if err == redis.Nil {
		return 0, 0, false, ErrCacheMiss
	}
	if err != nil {
		return 0, 0, false, err
	}

	var entry geoEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return 0, 0, false, fmt.Errorf("corrupt geocode entry for %q: %w", place, err)
	}
	if !entry.Found {
		return 0, 0, false, nil
	}
	return entry.Lat, entry.Lng, true, nil
}

// SetCoordinates stores a geocoding outcome with TTL. Pass found=false
// to record a definitive no-match.
func (c *Cache) SetCoordinates(ctx context.Context, place string, lat, lng float64, found bool, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}

	raw, err := json.Marshal(geoEntry{Lat: lat, Lng: lng, Found: found})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.geoKey(place), raw, ttl).Err()
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Cache) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}

// geoKey builds the namespaced key for a place name. Place strings are
// free text, so they are hashed rather than embedded.
func (c *Cache) geoKey(place string) string {
	return c.namespaceKey("geo:" + HashKey(strings.ToLower(place)))
}

// namespaceKey prefixes a key with the application namespace
func (c *Cache) namespaceKey(key string) string {
	return "crisiswatch:" + key
}

// HashKey hashes arbitrary key parts into a fixed-length hex string
func HashKey(parts ...string) string {
	h := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(h[:])
}
