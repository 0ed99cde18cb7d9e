package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Kroger    KrogerConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Fetch     FetchConfig
	Output    OutputConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	LogLevel       string   `mapstructure:"log_level"`
}

// KrogerConfig holds catalog API configuration
type KrogerConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	ZipCode      string `mapstructure:"zip_code"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	UseSandbox   bool   `mapstructure:"use_sandbox"`
	// BaseURL overrides the sandbox/production choice when set.
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration.
// PerIP limits API requests per minute; the rest pace catalog calls.
type RateLimitConfig struct {
	PerIP             int           `mapstructure:"per_ip"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Wait              time.Duration `mapstructure:"wait"`
	MaxRetries        int           `mapstructure:"max_retries"`
}

// FetchConfig controls what the collector pulls from the catalog
type FetchConfig struct {
	SearchTerms []string      `mapstructure:"search_terms"`
	MaxResults  int           `mapstructure:"max_results"`
	MaxProducts int           `mapstructure:"max_products"`
	PageSize    int           `mapstructure:"page_size"`
	PageDelay   time.Duration `mapstructure:"page_delay"`
}

// OutputConfig names the files the fetch command writes
type OutputConfig struct {
	SearchReport string `mapstructure:"search_report"`
	AllReport    string `mapstructure:"all_report"`
	Rows         string `mapstructure:"rows"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/caloriecart/")

	// Environment variable settings
	v.SetEnvPrefix("CALORIECART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment without overriding existing variables.
// A missing file is not an error.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.log_level", "info")

	// Kroger defaults; empty values are registered so env vars bind on Unmarshal
	v.SetDefault("kroger.client_id", "")
	v.SetDefault("kroger.client_secret", "")
	v.SetDefault("kroger.zip_code", "")
	v.SetDefault("kroger.redirect_uri", "http://localhost:8000/callback")
	v.SetDefault("kroger.use_sandbox", true)
	v.SetDefault("kroger.base_url", "")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.requests_per_second", 2)
	v.SetDefault("ratelimit.wait", "60s")
	v.SetDefault("ratelimit.max_retries", 5)

	// Fetch defaults
	v.SetDefault("fetch.search_terms", []string{"chicken", "milk", "bread", "eggs", "bananas"})
	v.SetDefault("fetch.max_results", 50)
	v.SetDefault("fetch.max_products", 200)
	v.SetDefault("fetch.page_size", 50)
	v.SetDefault("fetch.page_delay", "500ms")

	// Output defaults
	v.SetDefault("output.search_report", "kroger_search_products.txt")
	v.SetDefault("output.all_report", "kroger_all_products.txt")
	v.SetDefault("output.rows", "products.csv")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Fetch.PageSize <= 0 || config.Fetch.PageSize > 50 {
		return fmt.Errorf("fetch page size must be between 1 and 50, got: %d", config.Fetch.PageSize)
	}

	if config.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit requests per second must be positive, got: %v", config.RateLimit.RequestsPerSecond)
	}

	return nil
}

// RequireKroger checks the settings needed to talk to the catalog.
// Only the commands that call the catalog need them.
func (c *Config) RequireKroger() error {
	var missing []string
	if c.Kroger.ClientID == "" {
		missing = append(missing, "CALORIECART_KROGER_CLIENT_ID")
	}
	if c.Kroger.ClientSecret == "" {
		missing = append(missing, "CALORIECART_KROGER_CLIENT_SECRET")
	}
	if c.Kroger.ZipCode == "" {
		missing = append(missing, "CALORIECART_KROGER_ZIP_CODE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing Kroger settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsProduction reports whether the server runs in production mode
func (c ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}
