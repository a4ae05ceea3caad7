// Package config handles application configuration loading from environment
// variables. An optional .env file in the working directory is read first so
// local development does not need exported variables. Secrets never have
// literal defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"blogcms/internal/models"
)

// DefaultFallbackImage is served as a draft's featured image whenever the
// image search fails or returns nothing.
const DefaultFallbackImage = models.DefaultFeaturedImage

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache + sessions)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Seeded admin account. Seeding is skipped while the password is unset.
	AdminEmail    string
	AdminName     string
	AdminPassword string

	// Text-completion providers
	AIProvider        string // "openrouter", "openai", "mistral", "claude"
	AITimeout         time.Duration
	OpenRouterKey     string
	OpenRouterModel   string
	OpenRouterBaseURL string
	OpenRouterReferer string
	OpenRouterTitle   string
	OpenAIKey         string
	OpenAIModel       string
	OpenAIBaseURL     string
	MistralKey        string
	MistralModel      string
	MistralBaseURL    string
	ClaudeKey         string
	ClaudeModel       string
	ClaudeBaseURL     string

	// Image search (Pexels)
	PexelsKey     string
	PexelsBaseURL string
	FallbackImage string

	// S3-compatible object storage (optional)
	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BucketPublic string
	S3PublicURL    string

	// HTTP surface
	CORSOrigins    []string
	AIRateLimit    int // AI requests per minute per client
	LoginRateLimit int // login attempts per minute per client
	CacheTTL       time.Duration
	MetricsToken   string

	// TrustedProxies are the peers whose X-Forwarded-For and X-Real-IP
	// headers identify the client for rate limiting.
	TrustedProxies []netip.Prefix
}

// Load reads an optional .env file, then configuration from environment
// variables, applying development defaults where appropriate. Returns an
// error if a secret is missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "blogcms"),
		DBPassword: os.Getenv("POSTGRES_PASSWORD"),
		DBName:     envOrDefault("POSTGRES_DB", "blogcms"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AdminEmail:    envOrDefault("ADMIN_EMAIL", "admin@blogcms.local"),
		AdminName:     envOrDefault("ADMIN_NAME", "Admin User"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		AIProvider:        envOrDefault("AI_PROVIDER", "openrouter"),
		AITimeout:         envDuration("AI_TIMEOUT", 90*time.Second),
		OpenRouterKey:     os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   envOrDefault("OPENROUTER_MODEL", "deepseek/deepseek-r1-0528-qwen3-8b:free"),
		OpenRouterBaseURL: envOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterReferer: os.Getenv("OPENROUTER_REFERER"),
		OpenRouterTitle:   envOrDefault("OPENROUTER_TITLE", "BlogCMS"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		MistralKey:        os.Getenv("MISTRAL_API_KEY"),
		MistralModel:      envOrDefault("MISTRAL_MODEL", "mistral-large-latest"),
		MistralBaseURL:    envOrDefault("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
		ClaudeKey:         os.Getenv("CLAUDE_API_KEY"),
		ClaudeModel:       envOrDefault("CLAUDE_MODEL", "claude-sonnet-4-6"),
		ClaudeBaseURL:     envOrDefault("CLAUDE_BASE_URL", "https://api.anthropic.com"),

		PexelsKey:     os.Getenv("PEXELS_API_KEY"),
		PexelsBaseURL: envOrDefault("PEXELS_BASE_URL", "https://api.pexels.com/v1"),
		FallbackImage: envOrDefault("FALLBACK_IMAGE_URL", DefaultFallbackImage),

		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3Region:       envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		S3BucketPublic: envOrDefault("S3_BUCKET_PUBLIC", "blogcms-public"),
		S3PublicURL:    os.Getenv("S3_PUBLIC_URL"),

		CORSOrigins:    envList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		AIRateLimit:    envInt("AI_RATE_LIMIT", 10),
		LoginRateLimit: envInt("LOGIN_RATE_LIMIT", 10),
		CacheTTL:       envDuration("CACHE_TTL", 2*time.Minute),
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	}

	if !isHTTPURL(cfg.FallbackImage) {
		return nil, fmt.Errorf("FALLBACK_IMAGE_URL must be an http(s) URL with a host, got %q", cfg.FallbackImage)
	}

	proxies, err := parsePrefixes(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		return nil, fmt.Errorf("parse TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = proxies

	if cfg.Env == "production" {
		if cfg.DBPassword == "" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AdminPassword == "" {
			return nil, fmt.Errorf("ADMIN_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasStorage reports whether S3 credentials are configured.
func (c *Config) HasStorage() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt parses an integer variable; malformed values fall back silently.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// envDuration parses a Go duration string such as "30s" or "2m".
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// parsePrefixes reads a comma-separated list of CIDR ranges or bare IPs.
// A bare IP becomes a single-address prefix.
func parsePrefixes(v string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			p, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, err
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
