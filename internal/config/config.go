package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type R2Config struct {
	AccountID       string `env:"ACCOUNT_ID"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	Bucket          string `env:"BUCKET"`
	PublicURL       string `env:"PUBLIC_URL"`
	// Endpoint overrides the account endpoint, e.g. for a local S3 gateway.
	Endpoint string `env:"ENDPOINT"`
}

type MinioConfig struct {
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	Bucket          string `env:"BUCKET" envDefault:"images"`
	UseSSL          bool   `env:"USE_SSL" envDefault:"false"`
	PublicURL       string `env:"PUBLIC_URL"`
}

type CloudflareImagesConfig struct {
	AccountID string `env:"ACCOUNT_ID"`
	Token     string `env:"TOKEN"`
	Hash      string `env:"HASH"` // imagedelivery.net account hash
}

type DatabaseConfig struct {
	Driver       string `env:"DRIVER" envDefault:"postgres"`
	URL          string `env:"URL"`
	Name         string `env:"NAME" envDefault:"ourphotos"`
	Transactions bool   `env:"TRANSACTIONS" envDefault:"false"`
}

type JWTConfig struct {
	Secret string        `env:"SECRET"`
	Expiry time.Duration `env:"EXPIRY" envDefault:"10h"`
}

type GoogleConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURI  string `env:"REDIRECT_URI"`
}

type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	StateTTL time.Duration `env:"STATE_TTL" envDefault:"10m"`
}

type Config struct {
	Env              string   `env:"APP_ENV" envDefault:"development"`
	LogLevel         string   `env:"LOG_LEVEL" envDefault:"info"`
	Port             string   `env:"PORT" envDefault:"5500"`
	CORSAllowOrigins string   `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:5173"`
	EnablePprof      bool     `env:"ENABLE_PPROF" envDefault:"false"`
	FrontendURL      string   `env:"FRONTEND_URL"`
	StorageDriver    string   `env:"STORAGE_DRIVER" envDefault:"r2"`
	FavoritePolicy   string   `env:"FAVORITE_POLICY" envDefault:"any"`
	AllowedMimeTypes []string `env:"ALLOWED_MIME_TYPES" envSeparator:"," envDefault:"image/jpeg,image/png,image/gif,image/webp,image/heic"`

	Database         DatabaseConfig         `envPrefix:"DATABASE_"`
	JWT              JWTConfig              `envPrefix:"JWT_"`
	Google           GoogleConfig           `envPrefix:"GOOGLE_"`
	Redis            RedisConfig            `envPrefix:"REDIS_"`
	R2               R2Config               `envPrefix:"R2_"`
	Minio            MinioConfig            `envPrefix:"MINIO_"`
	CloudflareImages CloudflareImagesConfig `envPrefix:"CLOUDFLARE_IMAGES_"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "postgres", "mongodb":
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is not set"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver))
	}

	switch c.StorageDriver {
	case "r2", "minio", "images":
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	switch c.FavoritePolicy {
	case "any", "collaborators", "owner":
	default:
		errs = append(errs, fmt.Errorf("unknown FAVORITE_POLICY %q", c.FavoritePolicy))
	}

	return errors.Join(errs...)
}
