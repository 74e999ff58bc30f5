package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Save original env
	originalID := os.Getenv("CRISIS_REDDIT_CLIENT_ID")
	defer func() {
		if originalID != "" {
			os.Setenv("CRISIS_REDDIT_CLIENT_ID", originalID)
		} else {
			os.Unsetenv("CRISIS_REDDIT_CLIENT_ID")
		}
	}()

	os.Setenv("CRISIS_REDDIT_CLIENT_ID", "test-client")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Reddit.ClientID != "test-client" {
		t.Errorf("Expected reddit client id from env, got: %s", cfg.Reddit.ClientID)
	}
	if cfg.Reddit.Configured() {
		t.Error("Reddit should not be configured without a client secret")
	}
	if len(cfg.Twitter.Keywords) == 0 {
		t.Error("Expected default crisis keywords")
	}
	if cfg.RateLimit.Window != 15*time.Minute {
		t.Errorf("Expected default 15m rate limit window, got %v", cfg.RateLimit.Window)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Twitter:   TwitterConfig{MaxResults: 100},
			Reddit:    RedditConfig{Limit: 100},
			RateLimit: RateLimitConfig{Window: 15 * time.Minute, MaxCalls: 100, MinInterval: 3 * time.Second, MaxRetries: 3},
			Output:    OutputConfig{DataDir: "data", OutputDir: "output"},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("Valid config should not error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max calls", func(c *Config) { c.RateLimit.MaxCalls = 0 }},
		{"zero window", func(c *Config) { c.RateLimit.Window = 0 }},
		{"negative min interval", func(c *Config) { c.RateLimit.MinInterval = -time.Second }},
		{"too many retries", func(c *Config) { c.RateLimit.MaxRetries = 11 }},
		{"twitter max results over cap", func(c *Config) { c.Twitter.MaxResults = 500 }},
		{"reddit limit over cap", func(c *Config) { c.Reddit.Limit = 5000 }},
		{"missing output dir", func(c *Config) { c.Output.OutputDir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestConfigured(t *testing.T) {
	tw := TwitterConfig{}
	if tw.Configured() {
		t.Error("Twitter without bearer token should not be configured")
	}
	tw.BearerToken = "token"
	if !tw.Configured() {
		t.Error("Twitter with bearer token should be configured")
	}

	rd := RedditConfig{ClientID: "id"}
	if rd.Configured() {
		t.Error("Reddit without secret should not be configured")
	}
	rd.ClientSecret = "secret"
	if !rd.Configured() {
		t.Error("Reddit with id and secret should be configured")
	}
}
