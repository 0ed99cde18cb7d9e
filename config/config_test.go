package config

import (
	"bytes"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Kroger.RedirectURI != "http://localhost:8000/callback" {
			t.Errorf("Kroger.RedirectURI = %s, want http://localhost:8000/callback", cfg.Kroger.RedirectURI)
		}
		if !cfg.Kroger.UseSandbox {
			t.Error("Kroger.UseSandbox = false, want true")
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.Wait != 60*time.Second {
			t.Errorf("RateLimit.Wait = %v, want 60s", cfg.RateLimit.Wait)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
		if cfg.RateLimit.MaxRetries != 5 {
			t.Errorf("RateLimit.MaxRetries = %d, want 5", cfg.RateLimit.MaxRetries)
		}
		wantTerms := []string{"chicken", "milk", "bread", "eggs", "bananas"}
		if !reflect.DeepEqual(cfg.Fetch.SearchTerms, wantTerms) {
			t.Errorf("Fetch.SearchTerms = %v, want %v", cfg.Fetch.SearchTerms, wantTerms)
		}
		if cfg.Fetch.MaxResults != 50 || cfg.Fetch.MaxProducts != 200 || cfg.Fetch.PageSize != 50 {
			t.Errorf("Fetch = %+v, want max_results 50, max_products 200, page_size 50", cfg.Fetch)
		}
		if cfg.Fetch.PageDelay != 500*time.Millisecond {
			t.Errorf("Fetch.PageDelay = %v, want 500ms", cfg.Fetch.PageDelay)
		}
		if cfg.Output.Rows != "products.csv" {
			t.Errorf("Output.Rows = %s, want products.csv", cfg.Output.Rows)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		t.Setenv("CALORIECART_SERVER_PORT", "9090")
		t.Setenv("CALORIECART_SERVER_ENVIRONMENT", "production")
		t.Setenv("CALORIECART_KROGER_CLIENT_ID", "client")
		t.Setenv("CALORIECART_KROGER_CLIENT_SECRET", "secret")
		t.Setenv("CALORIECART_KROGER_ZIP_CODE", "45202")
		t.Setenv("CALORIECART_KROGER_USE_SANDBOX", "false")
		t.Setenv("CALORIECART_CACHE_TYPE", "redis")
		t.Setenv("CALORIECART_CACHE_REDIS_URL", "redis://localhost:6379")
		t.Setenv("CALORIECART_CACHE_TTL", "1h")
		t.Setenv("CALORIECART_RATELIMIT_MAX_RETRIES", "2")
		t.Setenv("CALORIECART_FETCH_SEARCH_TERMS", "rice,beans")
		t.Setenv("CALORIECART_FETCH_PAGE_DELAY", "1s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if !cfg.Server.IsProduction() {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Kroger.ClientID != "client" || cfg.Kroger.ClientSecret != "secret" || cfg.Kroger.ZipCode != "45202" {
			t.Errorf("Kroger = %+v, want client/secret/45202", cfg.Kroger)
		}
		if cfg.Kroger.UseSandbox {
			t.Error("Kroger.UseSandbox = true, want false")
		}
		if cfg.Cache.Type != "redis" || cfg.Cache.RedisURL != "redis://localhost:6379" {
			t.Errorf("Cache = %+v, want redis at localhost", cfg.Cache)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.MaxRetries != 2 {
			t.Errorf("RateLimit.MaxRetries = %d, want 2", cfg.RateLimit.MaxRetries)
		}
		if !reflect.DeepEqual(cfg.Fetch.SearchTerms, []string{"rice", "beans"}) {
			t.Errorf("Fetch.SearchTerms = %v, want [rice beans]", cfg.Fetch.SearchTerms)
		}
		if cfg.Fetch.PageDelay != time.Second {
			t.Errorf("Fetch.PageDelay = %v, want 1s", cfg.Fetch.PageDelay)
		}
		if err := cfg.RequireKroger(); err != nil {
			t.Errorf("RequireKroger() error = %v, want nil", err)
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		t.Setenv("CALORIECART_CACHE_TYPE", "invalid")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		t.Setenv("CALORIECART_CACHE_TYPE", "redis")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables and skips comments", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		envContent := `
# Comment line
TEST_VAR_1=value1

TEST_VAR_2=value2
# TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		defer func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
		}()

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		t.Setenv("TEST_OVERRIDE", "existing-value")
		if err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})

	t.Run("feeds Load", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		if err := os.WriteFile(".env", []byte("CALORIECART_KROGER_ZIP_CODE=30301\n"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		defer os.Unsetenv("CALORIECART_KROGER_ZIP_CODE")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Kroger.ZipCode != "30301" {
			t.Errorf("Kroger.ZipCode = %s, want 30301", cfg.Kroger.ZipCode)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Cache:     CacheConfig{Type: "memory"},
			RateLimit: RateLimitConfig{RequestsPerSecond: 2},
			Fetch:     FetchConfig{PageSize: 50},
		}
	}

	t.Run("validates successfully with defaults", func(t *testing.T) {
		if err := validate(valid()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails for invalid cache type", func(t *testing.T) {
		cfg := valid()
		cfg.Cache.Type = "invalid-type"
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for invalid cache type")
		}
	})

	t.Run("validates redis cache type with URL", func(t *testing.T) {
		cfg := valid()
		cfg.Cache = CacheConfig{Type: "redis", RedisURL: "redis://localhost:6379"}
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for valid redis config", err)
		}
	})

	t.Run("fails for page size above the catalog limit", func(t *testing.T) {
		cfg := valid()
		cfg.Fetch.PageSize = 51
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for page size 51")
		}
	})

	t.Run("fails for non-positive request rate", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimit.RequestsPerSecond = 0
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for zero request rate")
		}
	})
}

func TestRequireKroger(t *testing.T) {
	cfg := &Config{Kroger: KrogerConfig{ClientID: "id"}}

	err := cfg.RequireKroger()
	if err == nil {
		t.Fatal("RequireKroger() error = nil, want missing settings")
	}
	if !strings.Contains(err.Error(), "CALORIECART_KROGER_CLIENT_SECRET") || !strings.Contains(err.Error(), "CALORIECART_KROGER_ZIP_CODE") {
		t.Errorf("RequireKroger() error = %v, want secret and zip code named", err)
	}
	if strings.Contains(err.Error(), "CALORIECART_KROGER_CLIENT_ID") {
		t.Errorf("RequireKroger() error = %v, client id is set", err)
	}
}

func TestConfigureLogging(t *testing.T) {
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFormatter(&log.TextFormatter{})
		log.SetLevel(log.InfoLevel)
	}()

	var buf bytes.Buffer
	ConfigureLogging(ServerConfig{Environment: "production", LogLevel: "debug"}, &buf)
	log.WithField("k", "v").Debug("hello")

	if log.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", log.GetLevel())
	}
	if !strings.Contains(buf.String(), `"msg":"hello"`) || !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("output = %q, want JSON entry", buf.String())
	}

	ConfigureLogging(ServerConfig{LogLevel: "bogus"}, nil)
	if log.GetLevel() != log.InfoLevel {
		t.Errorf("level = %v, want info fallback", log.GetLevel())
	}
}
