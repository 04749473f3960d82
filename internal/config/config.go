package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xxxsen/common/logger"
)

const (
	defaultJWTTTLMinutes       = 30
	defaultPostCacheTTLSeconds = 300
	defaultMaxPostBytes        = 1024 * 1024
	defaultMaxBodyBytes        = 8 * 1024 * 1024
	defaultCacheProbeSpec      = "*/5 * * * *"
)

type Config struct {
	Port                int              `json:"port"`
	JWTSecret           string           `json:"jwt_secret"`
	JWTTTLMinutes       int              `json:"jwt_ttl_minutes"`
	Database            DatabaseConfig   `json:"database"`
	Cache               CacheConfig      `json:"cache"`
	PostCacheTTLSeconds int              `json:"post_cache_ttl_seconds"`
	MaxPostBytes        int              `json:"max_post_bytes"`
	MaxBodyBytes        int64            `json:"max_body_bytes"`
	CORSOrigins         []string         `json:"cors_origins"`
	CacheProbeSpec      string           `json:"cache_probe_spec"`
	LogConfig           logger.LogConfig `json:"log_config"`
}

type DatabaseConfig struct {
	Driver       string `json:"driver"`
	DSN          string `json:"dsn"`
	Path         string `json:"path"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	DBName       string `json:"dbname"`
	SSLMode      string `json:"sslmode"`
	MaxOpenConns int    `json:"max_open_conns"`
}

// CacheConfig selects a registered cache backend; Data is decoded by the
// backend factory.
type CacheConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.JWTTTLMinutes <= 0 {
		cfg.JWTTTLMinutes = defaultJWTTTLMinutes
	}
	if cfg.PostCacheTTLSeconds <= 0 {
		cfg.PostCacheTTLSeconds = defaultPostCacheTTLSeconds
	}
	if cfg.MaxPostBytes <= 0 {
		cfg.MaxPostBytes = defaultMaxPostBytes
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.CacheProbeSpec == "" {
		cfg.CacheProbeSpec = defaultCacheProbeSpec
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = "lru"
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.DSN == "" && cfg.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if cfg.Database.DSN == "" && cfg.Database.Host == "" {
			return fmt.Errorf("database.dsn or database.host is required for postgres")
		}
		if cfg.Database.Port == 0 {
			cfg.Database.Port = 5432
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres")
	}
	return nil
}
