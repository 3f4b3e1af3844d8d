package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Blob      BlobConfig      `yaml:"blob"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Upload    UploadConfig    `yaml:"upload"`
	Import    ImportConfig    `yaml:"import"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	// APIKey authenticates the directory upload client.
	APIKey string `yaml:"api_key"`
	// JWTSecret verifies HS256 bearer tokens issued by the auth provider.
	JWTSecret string `yaml:"jwt_secret"`
}

type BlobConfig struct {
	Driver    string   `yaml:"driver"` // fs or s3
	Dir       string   `yaml:"dir"`
	PublicURL string   `yaml:"public_url"`
	S3        S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type UploadConfig struct {
	// MaxBytes caps a program CSV upload.
	MaxBytes int64 `yaml:"max_bytes"`
	// MaxVideoBytes caps a single video upload.
	MaxVideoBytes int64 `yaml:"max_video_bytes"`
}

type ImportConfig struct {
	// Concurrency is how many training days are written in parallel.
	Concurrency int `yaml:"concurrency"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Defaults applied when a value is left unset.
const (
	DefaultMaxBytes      = 5 << 20
	DefaultMaxVideoBytes = 500 << 20
	DefaultConcurrency   = 1
)

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// SlogLevel returns the configured log level, defaulting to info.
func (l LoggingConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix COACHLOG_ and underscore-separated paths:
//
//	COACHLOG_SERVER_HOST, COACHLOG_SERVER_PORT,
//	COACHLOG_DB_HOST, COACHLOG_DB_PORT, COACHLOG_DB_NAME,
//	COACHLOG_DB_USER, COACHLOG_DB_PASSWORD, COACHLOG_DB_SSLMODE,
//	COACHLOG_AUTH_API_KEY, COACHLOG_AUTH_JWT_SECRET,
//	COACHLOG_BLOB_DRIVER, COACHLOG_BLOB_DIR, COACHLOG_BLOB_PUBLIC_URL,
//	COACHLOG_BLOB_S3_BUCKET, COACHLOG_BLOB_S3_REGION, COACHLOG_BLOB_S3_ENDPOINT,
//	COACHLOG_BLOB_S3_PATH_STYLE,
//	COACHLOG_TAILSCALE_ENABLED, COACHLOG_TAILSCALE_HOSTNAME, COACHLOG_TAILSCALE_STATE_DIR,
//	COACHLOG_UPLOAD_MAX_BYTES, COACHLOG_UPLOAD_MAX_VIDEO_BYTES,
//	COACHLOG_IMPORT_CONCURRENCY, COACHLOG_LOG_LEVEL
//
// S3 credentials are read from the standard AWS environment when not set in YAML.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Host, "COACHLOG_SERVER_HOST")
	setInt(&cfg.Server.Port, "COACHLOG_SERVER_PORT")

	setString(&cfg.Database.Host, "COACHLOG_DB_HOST")
	setInt(&cfg.Database.Port, "COACHLOG_DB_PORT")
	setString(&cfg.Database.Name, "COACHLOG_DB_NAME")
	setString(&cfg.Database.User, "COACHLOG_DB_USER")
	setString(&cfg.Database.Password, "COACHLOG_DB_PASSWORD")
	setString(&cfg.Database.SSLMode, "COACHLOG_DB_SSLMODE")

	setString(&cfg.Auth.APIKey, "COACHLOG_AUTH_API_KEY")
	setString(&cfg.Auth.JWTSecret, "COACHLOG_AUTH_JWT_SECRET")

	setString(&cfg.Blob.Driver, "COACHLOG_BLOB_DRIVER")
	setString(&cfg.Blob.Dir, "COACHLOG_BLOB_DIR")
	setString(&cfg.Blob.PublicURL, "COACHLOG_BLOB_PUBLIC_URL")
	setString(&cfg.Blob.S3.Bucket, "COACHLOG_BLOB_S3_BUCKET")
	setString(&cfg.Blob.S3.Region, "COACHLOG_BLOB_S3_REGION")
	setString(&cfg.Blob.S3.Endpoint, "COACHLOG_BLOB_S3_ENDPOINT")
	setBool(&cfg.Blob.S3.PathStyle, "COACHLOG_BLOB_S3_PATH_STYLE")

	setBool(&cfg.Tailscale.Enabled, "COACHLOG_TAILSCALE_ENABLED")
	setString(&cfg.Tailscale.Hostname, "COACHLOG_TAILSCALE_HOSTNAME")
	setString(&cfg.Tailscale.StateDir, "COACHLOG_TAILSCALE_STATE_DIR")

	setInt64(&cfg.Upload.MaxBytes, "COACHLOG_UPLOAD_MAX_BYTES")
	setInt64(&cfg.Upload.MaxVideoBytes, "COACHLOG_UPLOAD_MAX_VIDEO_BYTES")
	setInt(&cfg.Import.Concurrency, "COACHLOG_IMPORT_CONCURRENCY")
	setString(&cfg.Logging.Level, "COACHLOG_LOG_LEVEL")
}

func (c *Config) applyDefaults() {
	if c.Blob.Driver == "" {
		c.Blob.Driver = "fs"
	}
	if c.Blob.Driver == "fs" && c.Blob.Dir == "" {
		c.Blob.Dir = "./videos"
	}
	if c.Blob.Driver == "fs" && c.Blob.PublicURL == "" {
		c.Blob.PublicURL = "/media"
	}
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "coachlog"
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = DefaultMaxBytes
	}
	if c.Upload.MaxVideoBytes <= 0 {
		c.Upload.MaxVideoBytes = DefaultMaxVideoBytes
	}
	if c.Import.Concurrency <= 0 {
		c.Import.Concurrency = DefaultConcurrency
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	switch strings.ToLower(c.Blob.Driver) {
	case "fs":
	case "s3":
		if c.Blob.S3.Bucket == "" {
			return fmt.Errorf("blob.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("blob.driver must be fs or s3, got %q", c.Blob.Driver)
	}
	return nil
}
