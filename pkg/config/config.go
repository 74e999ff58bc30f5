package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Twitter   TwitterConfig
	Reddit    RedditConfig
	RateLimit RateLimitConfig
	Geocoder  GeocoderConfig
	Output    OutputConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// TwitterConfig holds Twitter API credentials and search settings
type TwitterConfig struct {
	BearerToken  string
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
	Keywords     []string
	MaxResults   int
	KeywordDelay time.Duration
}

// Configured reports whether the Twitter extractor has credentials
func (c *TwitterConfig) Configured() bool {
	return c.BearerToken != ""
}

// RedditConfig holds Reddit API credentials and search settings
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	Subreddits   []string
	Keywords     []string
	Limit        int
	TimeFilter   string
}

// Configured reports whether the Reddit extractor has credentials
func (c *RedditConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// RateLimitConfig holds outbound search API throttling settings
type RateLimitConfig struct {
	Window      time.Duration
	MaxCalls    int
	MinInterval time.Duration
	MaxRetries  int
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// GeocoderConfig holds geocoding service settings
type GeocoderConfig struct {
	UserAgent     string
	CourtesyDelay time.Duration
	CacheTTL      time.Duration
}

// OutputConfig holds artifact directory settings
type OutputConfig struct {
	DataDir   string
	OutputDir string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL     string
	Enabled bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	Host string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	PrometheusPort    int
	ServiceName       string
}

// DefaultKeywords is the crisis vocabulary searched on both platforms
var DefaultKeywords = []string{
	"depressed", "anxiety", "suicidal", "mental health",
	"overwhelmed", "help needed", "crisis", "addiction",
	"therapy", "counseling", "support", "mental illness",
	"psychiatric", "emotional distress", "self harm",
}

// DefaultSubreddits is the set of crisis-related subreddits searched
var DefaultSubreddits = []string{
	"depression", "anxiety", "mentalhealth",
	"SuicideWatch", "addiction", "therapy",
	"mentalillness", "psychology", "selfhelp",
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	// .env is optional; absence is not an error
	_ = godotenv.Load()

	setDefaults()

	viper.SetEnvPrefix("CRISIS")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.crisiswatch")
	viper.AddConfigPath("/etc/crisiswatch")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; this is OK if we have env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Twitter: TwitterConfig{
			BearerToken:  getString("twitter_bearer_token", ""),
			APIKey:       getString("twitter_api_key", ""),
			APISecret:    getString("twitter_api_secret", ""),
			AccessToken:  getString("twitter_access_token", ""),
			AccessSecret: getString("twitter_access_secret", ""),
			Keywords:     getStringSlice("twitter_keywords", DefaultKeywords),
			MaxResults:   getInt("twitter_max_results", 100),
			KeywordDelay: getDuration("twitter_keyword_delay", 10*time.Second),
		},
		Reddit: RedditConfig{
			ClientID:     getString("reddit_client_id", ""),
			ClientSecret: getString("reddit_client_secret", ""),
			Username:     getString("reddit_username", ""),
			Password:     getString("reddit_password", ""),
			UserAgent:    getString("reddit_user_agent", "crisiswatch/0.1"),
			Subreddits:   getStringSlice("reddit_subreddits", DefaultSubreddits),
			Keywords:     getStringSlice("reddit_keywords", DefaultKeywords),
			Limit:        getInt("reddit_limit", 100),
			TimeFilter:   getString("reddit_time_filter", "month"),
		},
		RateLimit: RateLimitConfig{
			Window:      getDuration("rate_limit_window", 15*time.Minute),
			MaxCalls:    getInt("rate_limit_max_calls", 100),
			MinInterval: getDuration("rate_limit_min_interval", 3*time.Second),
			MaxRetries:  getInt("rate_limit_max_retries", 3),
			BackoffBase: getDuration("rate_limit_backoff_base", time.Minute),
			BackoffCap:  getDuration("rate_limit_backoff_cap", 5*time.Minute),
		},
		Geocoder: GeocoderConfig{
			UserAgent:     getString("geocoder_user_agent", "crisiswatch"),
			CourtesyDelay: getDuration("geocoder_courtesy_delay", time.Second),
			CacheTTL:      getDuration("geocoder_cache_ttl", 7*24*time.Hour),
		},
		Output: OutputConfig{
			DataDir:   getString("data_dir", "data"),
			OutputDir: getString("output_dir", "output"),
		},
		Database: DatabaseConfig{
			URL:     getString("database_url", ""),
			Enabled: getString("database_url", "") != "",
		},
		Redis: RedisConfig{
			URL:     getString("redis_url", ""),
			Enabled: getString("redis_url", "") != "",
		},
		Server: ServerConfig{
			Port: getInt("http_server_port", 8080),
			Host: getString("http_server_host", "0.0.0.0"),
		},
		Logging: LoggingConfig{
			Level:  getString("log_level", "INFO"),
			Format: getString("log_format", "json"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           getBool("telemetry_enabled", false),
			JaegerURL:         getString("jaeger_url", "http://localhost:14268/api/traces"),
			PrometheusEnabled: getBool("prometheus_enabled", false),
			PrometheusPort:    getInt("prometheus_port", 9090),
			ServiceName:       getString("service_name", "crisiswatch"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("data_dir", "data")
	viper.SetDefault("output_dir", "output")
	viper.SetDefault("http_server_port", 8080)
	viper.SetDefault("http_server_host", "0.0.0.0")
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("rate_limit_max_calls", 100)
	viper.SetDefault("rate_limit_max_retries", 3)
	viper.SetDefault("twitter_max_results", 100)
	viper.SetDefault("reddit_limit", 100)
	viper.SetDefault("reddit_time_filter", "month")
	viper.SetDefault("telemetry_enabled", false)
	viper.SetDefault("prometheus_enabled", false)
	viper.SetDefault("prometheus_port", 9090)
	viper.SetDefault("service_name", "crisiswatch")
}

func getString(key, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	// Also check environment variable directly
	if val := os.Getenv("CRISIS_" + toEnvKey(key)); val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if val := os.Getenv("CRISIS_" + toEnvKey(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if val := os.Getenv("CRISIS_" + toEnvKey(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	if val := os.Getenv("CRISIS_" + toEnvKey(key)); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultValue
}

// getStringSlice reads a comma-separated list, falling back to defaults
func getStringSlice(key string, defaultValue []string) []string {
	raw := getString(key, "")
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func toEnvKey(key string) string {
	// Convert snake_case to UPPER_SNAKE_CASE
	result := ""
	for _, r := range key {
		if r == '-' || r == '_' {
			result += "_"
		} else if r >= 'a' && r <= 'z' {
			result += string(r - 'a' + 'A')
		} else {
			result += string(r)
		}
	}
	return result
}

// Validate validates the configuration.
// Platform credentials are deliberately not validated here: a missing
// credential set disables that extractor only, it does not fail startup.
func (c *Config) Validate() error {
	if c.RateLimit.MaxCalls <= 0 {
		return fmt.Errorf("rate_limit_max_calls must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit_window must be positive")
	}
	if c.RateLimit.MinInterval < 0 {
		return fmt.Errorf("rate_limit_min_interval must not be negative")
	}
	if c.RateLimit.MaxRetries <= 0 || c.RateLimit.MaxRetries > 10 {
		return fmt.Errorf("rate_limit_max_retries must be between 1 and 10")
	}
	if c.Twitter.MaxResults <= 0 || c.Twitter.MaxResults > 100 {
		return fmt.Errorf("twitter_max_results must be between 1 and 100")
	}
	if c.Reddit.Limit <= 0 || c.Reddit.Limit > 1000 {
		return fmt.Errorf("reddit_limit must be between 1 and 1000")
	}
	if c.Output.DataDir == "" || c.Output.OutputDir == "" {
		return fmt.Errorf("data_dir and output_dir are required")
	}
	return nil
}
