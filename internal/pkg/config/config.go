package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverBadger   = "badger"
	DriverS3       = "s3"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	BodyLimit    int    `mapstructure:"body_limit"`
	StaticDir    string `mapstructure:"static_dir"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig selects the pin store backend.
type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	Dir       string `mapstructure:"dir"`
	BadgerDir string `mapstructure:"badger_dir"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// GeocoderConfig configures the reverse geocoding client.
// Pace is the delay before every outbound lookup.
type GeocoderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Pace      time.Duration `mapstructure:"pace"`
	Zoom      int           `mapstructure:"zoom"`
}

type BroadcastConfig struct {
	History   int           `mapstructure:"history"`
	Heartbeat time.Duration `mapstructure:"heartbeat"`
}

// NATSConfig is optional; an empty URL disables event publishing.
type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// ValkeyConfig is optional; an empty address disables the shared geocode cache.
type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from .env, file and environment variables.
func Load(service string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: PINMAP_STORAGE_DRIVER → storage.driver
	v.SetEnvPrefix("PINMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 0) // streams stay open
	v.SetDefault("server.body_limit", 1024*1024)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.allow_origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.dir", "pins")
	v.SetDefault("storage.badger_dir", "data/badger")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "pinmap")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "pinmap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("s3.endpoint", "localhost:9000")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.bucket", "pins")
	v.SetDefault("s3.prefix", "pins")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.use_ssl", false)
	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.user_agent", "TUI Map Application/1.0")
	v.SetDefault("geocoder.timeout", 5*time.Second)
	v.SetDefault("geocoder.pace", 1*time.Second)
	v.SetDefault("geocoder.zoom", 10)
	v.SetDefault("broadcast.history", 100)
	v.SetDefault("broadcast.heartbeat", 15*time.Second)
	v.SetDefault("nats.url", "")
	v.SetDefault("valkey.addr", "")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
}

// Validate checks that required configuration fields are present and sane.
// Backend sections are only checked for the selected storage driver.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout < 0 {
		errs = append(errs, "server.write_timeout must not be negative")
	}

	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Dir == "" {
			errs = append(errs, "storage.dir is required for the file driver")
		}
	case DriverBadger:
		if c.Storage.BadgerDir == "" {
			errs = append(errs, "storage.badger_dir is required for the badger driver")
		}
	case DriverS3:
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3.endpoint is required for the s3 driver")
		}
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			errs = append(errs, "s3.access_key and s3.secret_key are required for the s3 driver")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3.bucket is required for the s3 driver")
		}
	case DriverPostgres:
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.driver must be one of file, badger, s3, postgres, got %q", c.Storage.Driver))
	}

	if c.Geocoder.BaseURL == "" {
		errs = append(errs, "geocoder.base_url is required")
	}
	if c.Geocoder.Timeout <= 0 {
		errs = append(errs, "geocoder.timeout must be positive")
	}
	if c.Geocoder.Pace < 0 {
		errs = append(errs, "geocoder.pace must not be negative")
	}
	if c.Broadcast.History <= 0 {
		errs = append(errs, "broadcast.history must be positive")
	}
	if c.Broadcast.Heartbeat <= 0 {
		errs = append(errs, "broadcast.heartbeat must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
