package cache

import (
	"context"
	"testing"
)

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{
			name:  "single part",
			parts: []string{"chicago"},
		},
		{
			name:  "multiple parts",
			parts: []string{"new", "york", "city"},
		},
		{
			name:  "empty parts",
			parts: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed1 := HashKey(tt.parts...)
			hashed2 := HashKey(tt.parts...)

			// Hash should be consistent
			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}

			// Hash should be 32 characters (MD5 hex)
			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}
}

func TestCache_GeoKey(t *testing.T) {
	cache := &Cache{}

	// Same place in different cases maps to one key
	if cache.geoKey("Chicago") != cache.geoKey("chicago") {
		t.Error("geoKey() should be case insensitive")
	}

	// Distinct places map to distinct keys
	if cache.geoKey("Chicago") == cache.geoKey("London") {
		t.Error("geoKey() should differ for distinct places")
	}

	// Keys carry the application namespace
	key := cache.geoKey("Chicago")
	if len(key) == 0 || key[:12] != "crisiswatch:" {
		t.Errorf("geoKey() = %q, want crisiswatch: prefix", key)
	}
}

func TestDisabledCache(t *testing.T) {
	var disabled *Cache

	if _, _, _, err := disabled.GetCoordinates(context.Background(), "Chicago"); err != ErrCacheDisabled {
		t.Errorf("GetCoordinates() on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := disabled.SetCoordinates(context.Background(), "Chicago", 41.8, -87.6, true, 0); err != ErrCacheDisabled {
		t.Errorf("SetCoordinates() on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := disabled.Close(); err != nil {
		t.Errorf("Close() on nil cache = %v, want nil", err)
	}
	if err := disabled.Health(context.Background()); err != ErrCacheDisabled {
		t.Errorf("Health() on nil cache = %v, want ErrCacheDisabled", err)
	}
}
