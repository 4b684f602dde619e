package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/charlesng35/orgdirectory/internal/database"
	"github.com/charlesng35/orgdirectory/internal/services"
)

// Config represents the runtime configuration for the organization directory.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Directory   DirectoryConfig   `mapstructure:"directory"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int             `mapstructure:"port"`
	LogLevel        string          `mapstructure:"log_level"`
	GinMode         string          `mapstructure:"gin_mode"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig      `mapstructure:"cors"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig throttles the seeding endpoint per client.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	// Store is "memory" or "database"; the latter shares counters across instances.
	Store string `mapstructure:"store"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver"`
	Path            string            `mapstructure:"path"`
	DSN             string            `mapstructure:"dsn"`
	Postgres        DBAuthConfig      `mapstructure:"postgres"`
	MySQL           DBAuthConfig      `mapstructure:"mysql"`
	Options         map[string]string `mapstructure:"options"`
	CommandTimeout  time.Duration     `mapstructure:"command_timeout"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration     `mapstructure:"conn_max_lifetime"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// DirectoryConfig bounds listing, search and seeding requests.
type DirectoryConfig struct {
	DefaultPageSize  int    `mapstructure:"default_page_size"`
	MaxPageSize      int    `mapstructure:"max_page_size"`
	DefaultSeedCount int    `mapstructure:"default_seed_count"`
	MaxSeedCount     int    `mapstructure:"max_seed_count"`
	SeedBatchSize    int    `mapstructure:"seed_batch_size"`
	FakerSeed        uint64 `mapstructure:"faker_seed"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles the metrics endpoint.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MaintenanceConfig schedules background jobs using cron expressions.
type MaintenanceConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	CounterSchedule string `mapstructure:"counter_schedule"`
	StatsSchedule   string `mapstructure:"stats_schedule"`
}

// ServiceConfig converts the directory section into service limits.
func (c DirectoryConfig) ServiceConfig() services.DirectoryConfig {
	return services.DirectoryConfig{
		DefaultPageSize:  c.DefaultPageSize,
		MaxPageSize:      c.MaxPageSize,
		DefaultSeedCount: c.DefaultSeedCount,
		MaxSeedCount:     c.MaxSeedCount,
		SeedBatchSize:    c.SeedBatchSize,
	}
}

// ConnectionConfig converts the database section into connection options,
// picking the host block that matches the driver.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	cfg := database.Config{
		Driver:          c.Driver,
		Path:            c.Path,
		DSN:             c.DSN,
		Options:         c.Options,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}

	var auth DBAuthConfig
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "postgres", "postgresql":
		auth = c.Postgres
	case "mysql":
		auth = c.MySQL
	default:
		return cfg
	}

	cfg.Host = auth.Host
	cfg.Port = auth.Port
	cfg.Name = auth.Database
	cfg.User = auth.Username
	cfg.Password = auth.Password
	return cfg
}

// Validate rejects settings that would leave the service unable to answer requests.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil configuration")
	}

	var problems []string
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case "sqlite", "postgres", "postgresql", "mysql":
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Database.CommandTimeout < 0 {
		problems = append(problems, "database.command_timeout must not be negative")
	}
	if c.Directory.MaxPageSize < 1 {
		problems = append(problems, "directory.max_page_size must be at least 1")
	}
	if c.Directory.DefaultPageSize < 1 || c.Directory.DefaultPageSize > c.Directory.MaxPageSize {
		problems = append(problems, "directory.default_page_size must be between 1 and directory.max_page_size")
	}
	if c.Directory.DefaultSeedCount < 0 || c.Directory.DefaultSeedCount > c.Directory.MaxSeedCount {
		problems = append(problems, "directory.default_seed_count must be between 0 and directory.max_seed_count")
	}
	if c.Directory.SeedBatchSize < 1 {
		problems = append(problems, "directory.seed_batch_size must be at least 1")
	}
	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.Requests < 1 || c.Server.RateLimit.Window <= 0 {
			problems = append(problems, "server.rate_limit requires positive requests and window")
		}
		switch strings.ToLower(strings.TrimSpace(c.Server.RateLimit.Store)) {
		case "memory", "database":
		default:
			problems = append(problems, fmt.Sprintf("server.rate_limit.store %q is not supported", c.Server.RateLimit.Store))
		}
	}
	if c.Monitoring.Prometheus.Enabled && !strings.HasPrefix(c.Monitoring.Prometheus.Endpoint, "/") {
		problems = append(problems, "monitoring.prometheus.endpoint must start with /")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
// Each path may be a directory containing config.yaml or a config file itself.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			v.SetConfigFile(path)
			continue
		}
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("ORGDIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.requests", 30)
	v.SetDefault("server.rate_limit.window", "1m")
	v.SetDefault("server.rate_limit.store", "memory")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/orgdirectory.sqlite")
	v.SetDefault("database.command_timeout", database.DefaultCommandTimeout.String())
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.mysql.port", 3306)

	v.SetDefault("directory.default_page_size", services.DefaultPageSize)
	v.SetDefault("directory.max_page_size", services.DefaultMaxPageSize)
	v.SetDefault("directory.default_seed_count", services.DefaultSeedCount)
	v.SetDefault("directory.max_seed_count", services.DefaultMaxSeedCount)
	v.SetDefault("directory.seed_batch_size", database.DefaultInsertBatchSize)
	v.SetDefault("directory.faker_seed", 0)

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)
	v.SetDefault("monitoring.health_check.timeout", "2s")

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.counter_schedule", "@hourly")
	v.SetDefault("maintenance.stats_schedule", "@every 1m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
