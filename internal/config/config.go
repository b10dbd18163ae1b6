package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Scraper  ScraperConfig
	Browser  BrowserConfig
	Proxy    ProxyConfig
	Catalog  CatalogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type ScraperConfig struct {
	// AttemptDelayMin/Max bound the randomized pause applied after every
	// attempt, regardless of outcome.
	AttemptDelayMin  time.Duration
	AttemptDelayMax  time.Duration
	Concurrency      int
	ChallengeTimeout time.Duration
	RenderTimeout    time.Duration
	CaptureDir       string
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	UserAgent      string
}

type ProxyConfig struct {
	Server   string
	Username string
	Password string
}

type CatalogConfig struct {
	// Source is "file" or "postgres".
	Source string
	Path   string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getIntOrDefault("SERVER_PORT", 8080),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Scraper: ScraperConfig{
			AttemptDelayMin:  getDurationOrDefault("SCRAPER_ATTEMPT_DELAY_MIN", 3*time.Second),
			AttemptDelayMax:  getDurationOrDefault("SCRAPER_ATTEMPT_DELAY_MAX", 7*time.Second),
			Concurrency:      getIntOrDefault("SCRAPER_CONCURRENCY", 1),
			ChallengeTimeout: getDurationOrDefault("SCRAPER_CHALLENGE_TIMEOUT", 30*time.Second),
			RenderTimeout:    getDurationOrDefault("SCRAPER_RENDER_TIMEOUT", 60*time.Second),
			CaptureDir:       getEnvOrDefault("SCRAPER_CAPTURE_DIR", "captures"),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 60*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "America/New_York"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-US"),
			UserAgent:      getEnvOrDefault("BROWSER_USER_AGENT", ""),
		},
		Proxy: ProxyConfig{
			Server:   getEnvOrDefault("PROXY_SERVER", ""),
			Username: getEnvOrDefault("PROXY_USERNAME", ""),
			Password: getEnvOrDefault("PROXY_PASSWORD", ""),
		},
		Catalog: CatalogConfig{
			Source: getEnvOrDefault("CATALOG_SOURCE", "file"),
			Path:   getEnvOrDefault("CATALOG_PATH", "catalog.json"),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", ""),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "pricewatch"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", ""),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			Stream:   getEnvOrDefault("REDIS_STREAM", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scraper.Concurrency < 1 {
		return fmt.Errorf("SCRAPER_CONCURRENCY must be at least 1")
	}

	if c.Scraper.AttemptDelayMin > c.Scraper.AttemptDelayMax {
		return fmt.Errorf("SCRAPER_ATTEMPT_DELAY_MIN cannot be greater than SCRAPER_ATTEMPT_DELAY_MAX")
	}

	if c.Scraper.AttemptDelayMin < 0 {
		return fmt.Errorf("SCRAPER_ATTEMPT_DELAY_MIN cannot be negative")
	}

	switch c.Catalog.Source {
	case "file", "postgres":
	default:
		return fmt.Errorf("CATALOG_SOURCE must be file or postgres, got %q", c.Catalog.Source)
	}

	if c.Catalog.Source == "postgres" && c.Database.Host == "" {
		return fmt.Errorf("CATALOG_SOURCE=postgres requires DB_HOST")
	}

	if c.Proxy.Server != "" && (c.Proxy.Username == "" || c.Proxy.Password == "") {
		return fmt.Errorf("PROXY_SERVER requires PROXY_USERNAME and PROXY_PASSWORD")
	}

	return nil
}

// ConnString renders the database settings as a pgx connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
