package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig reads configFile (YAML) and overlays environment variables.
// An empty configFile searches ./config.yaml and ./config/config.yaml and
// tolerates their absence, so a deployment can run from the environment alone.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// JWT_SECRET is what older deployments export.
	if err := v.BindEnv("jwt.secret_key", "JWT_SECRET_KEY", "JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.production_mode", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/crack.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.upload_max_concurrency", 4)
	v.SetDefault("redis.slot_ttl_seconds", 60)

	v.SetDefault("jwt.expire_hours", 7*24)

	v.SetDefault("upload.max_size", 10<<20)

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local.dir", "./public/uploads")
	v.SetDefault("storage.local.public_prefix", "/uploads")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.prefix", "uploads")
	v.SetDefault("storage.s3.public_base_url", "")

	v.SetDefault("analyzer.kind", "stub")
	v.SetDefault("analyzer.endpoint", "")
	v.SetDefault("analyzer.api_key", "")
	v.SetDefault("analyzer.timeout_seconds", 30)
	v.SetDefault("analyzer.max_concurrency", 4)

	v.SetDefault("cors.origins", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Authorization", "Content-Type"})

	v.SetDefault("log.level", "info")
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.JWT.SecretKey == "" {
		return errors.New("jwt secret key must not be empty")
	}
	if cfg.JWT.ExpireHours <= 0 {
		return fmt.Errorf("invalid jwt expire hours: %d", cfg.JWT.ExpireHours)
	}

	if cfg.Upload.MaxSize <= 0 {
		return fmt.Errorf("invalid upload max size: %d", cfg.Upload.MaxSize)
	}

	if cfg.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("invalid database max open conns: %d", cfg.Database.MaxOpenConns)
	}

	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.Path != ":memory:" {
			dbDir := filepath.Dir(cfg.Database.Path)
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	case "postgres", "mysql":
		if cfg.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for driver %q", cfg.Database.Driver)
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}

	switch cfg.Storage.Driver {
	case "local":
		if cfg.Storage.Local.Dir == "" {
			return errors.New("storage.local.dir must not be empty")
		}
		if !strings.HasPrefix(cfg.Storage.Local.PublicPrefix, "/") {
			return fmt.Errorf("storage.local.public_prefix must start with '/': %q", cfg.Storage.Local.PublicPrefix)
		}
	case "s3":
		if cfg.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket must not be empty")
		}
		if cfg.Storage.S3.PublicBaseURL == "" {
			return errors.New("storage.s3.public_base_url must not be empty")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %q", cfg.Storage.Driver)
	}

	switch cfg.Analyzer.Kind {
	case "stub":
	case "remote":
		if cfg.Analyzer.Endpoint == "" {
			return errors.New("analyzer.endpoint is required for the remote analyzer")
		}
		if cfg.Analyzer.TimeoutSeconds <= 0 {
			return fmt.Errorf("invalid analyzer timeout: %d", cfg.Analyzer.TimeoutSeconds)
		}
		if cfg.Analyzer.MaxConcurrency <= 0 {
			return fmt.Errorf("invalid analyzer max concurrency: %d", cfg.Analyzer.MaxConcurrency)
		}
	default:
		return fmt.Errorf("unsupported analyzer kind: %q", cfg.Analyzer.Kind)
	}

	if cfg.Redis.Enabled && cfg.Redis.UploadMaxConcurrency <= 0 {
		return fmt.Errorf("invalid redis upload max concurrency: %d", cfg.Redis.UploadMaxConcurrency)
	}

	return nil
}
