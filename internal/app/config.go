package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/urbantwin/citytwin-backend/internal/platform/envutil"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type Config struct {
	HTTPAddr    string `yaml:"http_addr"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`

	JWTSecretKey    string        `yaml:"jwt_secret_key"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`

	EncryptionKey     string `yaml:"encryption_key"`
	OpenWeatherAPIKey string `yaml:"openweather_api_key"`
	AmapAPIKey        string `yaml:"amap_api_key"`

	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	CORSOrigins        []string `yaml:"cors_origins"`
}

// LoadConfig reads an optional yaml file pointed at by CONFIG_FILE,
// then lets environment variables override every field.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		HTTPAddr:           ":8080",
		Environment:        "development",
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    24 * time.Hour,
		RateLimitPerMinute: 120,
	}

	if path := envutil.String("CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		log.Info("Loaded config file", "path", path)
	}

	cfg.HTTPAddr = envutil.String("HTTP_ADDR", cfg.HTTPAddr)
	cfg.Environment = envutil.String("APP_ENV", cfg.Environment)
	cfg.Version = envutil.String("APP_VERSION", cfg.Version)
	cfg.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.JWTSecretKey)
	cfg.AccessTokenTTL = envDuration("ACCESS_TOKEN_TTL", cfg.AccessTokenTTL)
	cfg.RefreshTokenTTL = envDuration("REFRESH_TOKEN_TTL", cfg.RefreshTokenTTL)
	cfg.EncryptionKey = envutil.String("ENCRYPTION_KEY", cfg.EncryptionKey)
	cfg.OpenWeatherAPIKey = envutil.String("OPENWEATHER_API_KEY", cfg.OpenWeatherAPIKey)
	cfg.AmapAPIKey = envutil.String("AMAP_API_KEY", cfg.AmapAPIKey)
	cfg.RateLimitPerMinute = envutil.Int("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)
	cfg.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.CORSOrigins)

	if cfg.JWTSecretKey == "" {
		cfg.JWTSecretKey = "defaultsecret"
		log.Warn("JWT_SECRET_KEY not set, using insecure default")
	}
	return cfg, nil
}

// TTLs accept seconds ("3600") or Go durations ("1h").
func envDuration(name string, def time.Duration) time.Duration {
	raw := envutil.String(name, "")
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs := envutil.Int(name, 0); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}
