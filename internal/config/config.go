package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// MinJWTSecretLength is the shortest HMAC key accepted for signing tokens.
const MinJWTSecretLength = 32

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string        `env:"SERVER_PORT,default=8080"`
	DBDriver    string        `env:"DB_DRIVER,default=mysql"`
	DatabaseDSN string        `env:"DATABASE_DSN,default=rankhwa:rankhwa@tcp(localhost:3306)/rankhwa?charset=utf8mb4&parseTime=True&loc=UTC"`
	RedisAddr   string        `env:"REDIS_ADDR,default=localhost:6379"`
	RedisDB     int           `env:"REDIS_DB,default=0"`
	RedisPass   string        `env:"REDIS_PASSWORD"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,default=24h"`
	MaxPageSize int           `env:"MAX_PAGE_SIZE,default=100"`
	LogLevel    string        `env:"LOG_LEVEL,default=info"`
	LogFormat   string        `env:"LOG_FORMAT,default=json"`
	SwaggerHost string        `env:"SWAGGER_HOST"`
}

// Load builds Config from the environment. Any env files given are read first;
// variables already present in the environment take precedence over them.
func Load(envFiles ...string) (*Config, error) {
	var cfg Config
	if err := decode(&cfg, envFiles); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SeedConfig is the subset of settings the AniList seeder reads. It does not
// need a signing key.
type SeedConfig struct {
	DBDriver            string `env:"DB_DRIVER,default=mysql"`
	DatabaseDSN         string `env:"DATABASE_DSN,default=rankhwa:rankhwa@tcp(localhost:3306)/rankhwa?charset=utf8mb4&parseTime=True&loc=UTC"`
	PopulationThreshold int    `env:"POPULATION_THRESHOLD,default=100"`
	AnilistEndpoint     string `env:"ANILIST_ENDPOINT,default=https://graphql.anilist.co"`
	LogLevel            string `env:"LOG_LEVEL,default=info"`
	LogFormat           string `env:"LOG_FORMAT,default=json"`
}

// LoadSeed builds SeedConfig the same way Load does.
func LoadSeed(envFiles ...string) (*SeedConfig, error) {
	var cfg SeedConfig
	if err := decode(&cfg, envFiles); err != nil {
		return nil, err
	}
	switch cfg.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return &cfg, nil
}

func decode(target interface{}, envFiles []string) error {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	if err := envdecode.Decode(target); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("decode environment: %w", err)
	}
	return nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET missing or too short (minimum %d characters)", MinJWTSecretLength)
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.MaxPageSize < 1 {
		return fmt.Errorf("MAX_PAGE_SIZE must be positive, got %d", c.MaxPageSize)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}
