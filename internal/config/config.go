package config

import (
	"fmt"
	"time"
)

// Config is the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	ProductionMode bool   `mapstructure:"production_mode"`
}

// GetAddress returns host:port for the HTTP listener.
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the gorm dialect and sizes the connection pool.
// Path is used by sqlite, DSN by postgres and mysql.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	Path         string `mapstructure:"path"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// RedisConfig configures the optional redis used for upload slot limiting.
type RedisConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Host                 string `mapstructure:"host"`
	Port                 int    `mapstructure:"port"`
	DB                   int    `mapstructure:"db"`
	Password             string `mapstructure:"password"`
	UploadMaxConcurrency int    `mapstructure:"upload_max_concurrency"`
	SlotTTLSeconds       int    `mapstructure:"slot_ttl_seconds"`
}

// GetAddress returns the redis address.
func (r *RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GetSlotTTL returns how long an upload slot survives without release.
func (r *RedisConfig) GetSlotTTL() time.Duration {
	return time.Duration(r.SlotTTLSeconds) * time.Second
}

// JWTConfig JWT settings.
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret_key"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// GetExpireDuration returns the token validity window.
func (j *JWTConfig) GetExpireDuration() time.Duration {
	return time.Duration(j.ExpireHours) * time.Hour
}

// UploadConfig limits accepted images.
type UploadConfig struct {
	MaxSize int64 `mapstructure:"max_size"`
}

// StorageConfig selects where uploaded images live.
type StorageConfig struct {
	Driver string             `mapstructure:"driver"`
	Local  LocalStorageConfig `mapstructure:"local"`
	S3     S3StorageConfig    `mapstructure:"s3"`
}

// LocalStorageConfig stores images on disk and serves them under PublicPrefix.
type LocalStorageConfig struct {
	Dir          string `mapstructure:"dir"`
	PublicPrefix string `mapstructure:"public_prefix"`
}

// S3StorageConfig stores images in an S3-compatible bucket.
type S3StorageConfig struct {
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Prefix        string `mapstructure:"prefix"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// AnalyzerConfig selects the crack analyzer implementation.
type AnalyzerConfig struct {
	Kind           string `mapstructure:"kind"`
	Endpoint       string `mapstructure:"endpoint"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxConcurrency int    `mapstructure:"max_concurrency"`
}

// GetTimeout returns the remote analyzer request timeout.
func (a *AnalyzerConfig) GetTimeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// CORSConfig CORS settings.
type CORSConfig struct {
	Origins          []string `mapstructure:"origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
}

// LogConfig logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}
