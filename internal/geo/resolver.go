// Package geo extracts place names from text and resolves them to
// coordinates via a Nominatim-style geocoder.
package geo

import (
	"context"
	"strings"
	"sync"

	geocoding "github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/openstreetmap"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/crisiswatch/crisiswatch/internal/cache"
	"github.com/crisiswatch/crisiswatch/pkg/config"
	"github.com/crisiswatch/crisiswatch/pkg/logging"
	"github.com/crisiswatch/crisiswatch/pkg/telemetry"
)

// Geocoder resolves a free-text place name to a location. A nil
// location with a nil error is a definitive no-match.
type Geocoder interface {
	Geocode(address string) (*geocoding.Location, error)
}

// NewNominatim returns the OpenStreetMap Nominatim geocoder
func NewNominatim() Geocoder {
	return openstreetmap.Geocoder()
}

// Coordinates is a resolved map position
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinates are inside the legal ranges
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// cacheEntry records a resolved outcome; a nil coords marks a place the
// geocoder definitively could not match.
type cacheEntry struct {
	coords *Coordinates
}

// Resolver resolves place names with a process-lifetime cache. At most
// one external geocoding call is made per distinct place string per
// process run; transient failures are not cached so a later occurrence
// retries. An optional Redis tier persists outcomes across runs.
type Resolver struct {
	geocoder Geocoder
	courtesy *rate.Limiter
	redis    *cache.Cache
	cfg      config.GeocoderConfig
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry

	geocoderCalls metric.Int64Counter
}

// NewResolver creates a resolver. redisCache may be nil.
func NewResolver(geocoder Geocoder, cfg *config.GeocoderConfig, redisCache *cache.Cache) *Resolver {
	var courtesy *rate.Limiter
	if cfg.CourtesyDelay > 0 {
		courtesy = rate.NewLimiter(rate.Every(cfg.CourtesyDelay), 1)
	}

	calls, _ := telemetry.Meter().Int64Counter("crisiswatch.geocoder.calls")

	return &Resolver{
		geocoder:      geocoder,
		courtesy:      courtesy,
		redis:         redisCache,
		cfg:           *cfg,
		logger:        logging.WithComponent("geo-resolver"),
		entries:       make(map[string]cacheEntry),
		geocoderCalls: calls,
	}
}

// Resolve returns coordinates for a place name, or nil when the place
// is unknown. The error is non-nil only for transient geocoder
// failures, which are never cached.
func (r *Resolver) Resolve(ctx context.Context, place string) (*Coordinates, error) {
	key := strings.ToLower(strings.TrimSpace(place))
	if key == "" {
		return nil, nil
	}

	r.mu.Lock()
	if entry, ok := r.entries[key]; ok {
		r.mu.Unlock()
		return entry.coords, nil
	}
	r.mu.Unlock()

	if coords, ok := r.lookupRedis(ctx, key); ok {
		r.store(key, coords)
		return coords, nil
	}

	// Courtesy delay before hitting the geocoding service
	if r.courtesy != nil {
		if err := r.courtesy.Wait(ctx); err != nil {
			return nil, err
		}
	}

	r.geocoderCalls.Add(ctx, 1)
	loc, err := r.geocoder.Geocode(place)
	if err != nil {
		r.logger.Warn("Geocoding failed",
			zap.String("place", place),
			zap.Error(err))
		return nil, err
	}

	if loc == nil {
		// Definitive no-match; cache the sentinel
		r.store(key, nil)
		r.storeRedis(ctx, key, nil)
		return nil, nil
	}

	coords := &Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}
	if !coords.Valid() {
		r.logger.Warn("Geocoder returned out-of-range coordinates",
			zap.String("place", place),
			zap.Float64("lat", coords.Latitude),
			zap.Float64("lng", coords.Longitude))
		r.store(key, nil)
		return nil, nil
	}

	r.store(key, coords)
	r.storeRedis(ctx, key, coords)
	return coords, nil
}

func (r *Resolver) store(key string, coords *Coordinates) {
	r.mu.Lock()
	r.entries[key] = cacheEntry{coords: coords}
	r.mu.Unlock()
}

func (r *Resolver) lookupRedis(ctx context.Context, key string) (*Coordinates, bool) {
	lat, lng, found, err := r.redis.GetCoordinates(ctx, key)
	if err != nil {
		if err != cache.ErrCacheDisabled && err != cache.ErrCacheMiss {
			r.logger.Warn("Redis geocode lookup failed", zap.Error(err))
		}
		return nil, false
	}
	if !found {
		// Cached no-match
		return nil, true
	}
	return &Coordinates{Latitude: lat, Longitude: lng}, true
}

func (r *Resolver) storeRedis(ctx context.Context, key string, coords *Coordinates) {
	var err error
	if coords == nil {
		err = r.redis.SetCoordinates(ctx, key, 0, 0, false, r.cfg.CacheTTL)
	} else {
		err = r.redis.SetCoordinates(ctx, key, coords.Latitude, coords.Longitude, true, r.cfg.CacheTTL)
	}
	if err != nil && err != cache.ErrCacheDisabled {
		r.logger.Warn("Redis geocode store failed", zap.Error(err))
	}
}
