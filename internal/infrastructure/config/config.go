package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store kinds selected by the DATABASE_URL scheme.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
	ClientURL string `env:"CLIENT_URL, default=http://localhost:5173"`
	BodyLimit string `env:"BODY_LIMIT, default=10M"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Database DatabaseConfig
	Redis    RedisConfig
	Proxy    ProxyConfig
}

type DatabaseConfig struct {
	URL     string `env:"DATABASE_URL, default=mongodb://localhost:27017"`
	MongoDB string `env:"MONGO_DB,     default=apiforge"`
}

type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED,     default=true"`
	Addr     string        `env:"REDIS_ADDR,        default=localhost:6379"`
	DB       int           `env:"REDIS_DB,          default=0"`
	CacheTTL time.Duration `env:"SESSION_CACHE_TTL, default=5m"`
}

type ProxyConfig struct {
	Timeout          time.Duration `env:"PROXY_TIMEOUT,            default=30s"`
	MaxResponseBytes int64         `env:"PROXY_MAX_RESPONSE_BYTES, default=10485760"`
}

// Load reads configuration from environment variables using go-envconfig and validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	if _, err := c.StoreKind(); err != nil {
		return err
	}
	if c.Proxy.Timeout <= 0 {
		return errors.New("config: PROXY_TIMEOUT must be positive")
	}
	if c.Proxy.MaxResponseBytes <= 0 {
		return errors.New("config: PROXY_MAX_RESPONSE_BYTES must be positive")
	}
	return nil
}

// StoreKind reports which store DATABASE_URL points at.
func (c *Config) StoreKind() (string, error) {
	u, err := url.Parse(c.Database.URL)
	if err != nil {
		return "", fmt.Errorf("config: invalid DATABASE_URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "mongodb", "mongodb+srv":
		return StoreMongo, nil
	case "postgres", "postgresql":
		return StorePostgres, nil
	default:
		return "", fmt.Errorf("config: unsupported DATABASE_URL scheme %q", u.Scheme)
	}
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}
