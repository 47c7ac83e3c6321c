package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port   string
	AppEnv string

	DBDriver    string
	DatabaseURL string
	RedisURL    string

	PriceAPIKey   string
	PriceAPIURL   string
	PriceState    string
	PriceLimit    int
	PriceCacheTTL time.Duration
	SessionTTL    time.Duration

	OSRMURL       string
	NominatimURL  string
	ReferencePath string

	HTTPTimeout time.Duration
	HTTPRetries int
	UserAgent   string

	CORSOrigins []string
}

// LoadDotEnv loads .env into the process environment when present. It reports
// whether a file was found.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var errs []error

	c := &Config{
		Port:          Get("PORT", "8080"),
		AppEnv:        Get("APP_ENV", "development"),
		DBDriver:      Get("DB_DRIVER", "sqlite"),
		DatabaseURL:   Get("DATABASE_URL", "data/app.db"),
		RedisURL:      Get("REDIS_URL", ""),
		PriceAPIKey:   Get("PRICE_API_KEY", ""),
		PriceAPIURL:   Get("PRICE_API_URL", ""),
		PriceState:    Get("PRICE_STATE", "Kerala"),
		OSRMURL:       Get("OSRM_URL", ""),
		NominatimURL:  Get("NOMINATIM_URL", ""),
		ReferencePath: Get("REFERENCE_PATH", ""),
		UserAgent:     Get("USER_AGENT", "mandi-profit-service/1.0"),
		CORSOrigins:   splitList(Get("CORS_ORIGINS", "*")),
	}

	var err error
	if c.PriceLimit, err = getInt("PRICE_LIMIT", 200); err != nil {
		errs = append(errs, err)
	}
	if c.HTTPRetries, err = getInt("HTTP_RETRIES", 0); err != nil {
		errs = append(errs, err)
	}
	if c.PriceCacheTTL, err = getDuration("PRICE_CACHE_TTL", 15*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if c.HTTPTimeout, err = getDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		errs = append(errs, err)
	}
	if c.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		errs = append(errs, err)
	}

	if err := c.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("load config: %w", errors.Join(errs...))
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.PriceAPIKey) == "" {
		errs = append(errs, errors.New("PRICE_API_KEY is required"))
	}
	switch c.DBDriver {
	case "sqlite", "pgx":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or pgx, got %q", c.DBDriver))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if strings.TrimSpace(c.PriceState) == "" {
		errs = append(errs, errors.New("PRICE_STATE must not be empty"))
	}
	if c.PriceLimit <= 0 {
		errs = append(errs, fmt.Errorf("PRICE_LIMIT must be positive, got %d", c.PriceLimit))
	}
	if c.HTTPRetries < 0 {
		errs = append(errs, fmt.Errorf("HTTP_RETRIES must not be negative, got %d", c.HTTPRetries))
	}
	if c.PriceCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("PRICE_CACHE_TTL must be positive, got %s", c.PriceCacheTTL))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	return errors.Join(errs...)
}

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
