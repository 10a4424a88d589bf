package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/sptzx"
	sptzxhttp "github.com/sagarc03/sptzx/http"
	"github.com/sagarc03/sptzx/keybackend"
	"github.com/sagarc03/sptzx/redisstore"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "SPTZX"

// Storage media.
const (
	MediumMemory     = "memory"
	MediumFilesystem = "filesystem"
	MediumSQLite     = "sqlite"
	MediumPostgres   = "postgres"
	MediumRedis      = "redis"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for sptzx.
type Config struct {
	Env       string                    `mapstructure:"env" validate:"omitempty,oneof=dev development prod production"`
	Server    ServerConfig              `mapstructure:"server"`
	Relay     RelayConfig               `mapstructure:"relay"`
	Storage   StorageConfig             `mapstructure:"storage"`
	RateLimit sptzxhttp.RateLimitConfig `mapstructure:"ratelimit"`
	CORS      sptzxhttp.CORSConfig      `mapstructure:"cors"`
	Log       LogConfig                 `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration. Timeouts are in seconds.
type ServerConfig struct {
	Addr            string `mapstructure:"addr" validate:"required,hostname_port"`
	BaseURL         string `mapstructure:"base_url" validate:"omitempty,http_url"`
	ReadTimeout     int    `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    int    `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout     int    `mapstructure:"idle_timeout" validate:"min=0"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" validate:"min=1"`
	Compress        bool   `mapstructure:"compress"`
}

// RelayConfig holds the relay's core settings. Durations are in seconds.
type RelayConfig struct {
	keybackend.SecretConfig `mapstructure:",squash"`

	Lifetime         int   `mapstructure:"lifetime" validate:"min=1"`
	MaxPayloadSize   int64 `mapstructure:"max_payload_size" validate:"min=1"`
	MaxResidentBytes int64 `mapstructure:"max_resident_bytes" validate:"min=0"`
	SweepInterval    int   `mapstructure:"sweep_interval" validate:"min=1,ltfield=Lifetime"`
	SweepTimeout     int   `mapstructure:"sweep_timeout" validate:"min=1"`
}

// LifetimeDuration returns Lifetime as a time.Duration.
func (c RelayConfig) LifetimeDuration() time.Duration {
	return time.Duration(c.Lifetime) * time.Second
}

// SweepIntervalDuration returns SweepInterval as a time.Duration.
func (c RelayConfig) SweepIntervalDuration() time.Duration {
	return time.Duration(c.SweepInterval) * time.Second
}

// SweepTimeoutDuration returns SweepTimeout as a time.Duration.
func (c RelayConfig) SweepTimeoutDuration() time.Duration {
	return time.Duration(c.SweepTimeout) * time.Second
}

// StorageConfig selects and configures the medium holding object bytes.
type StorageConfig struct {
	Medium string            `mapstructure:"medium" validate:"required,oneof=memory filesystem sqlite postgres redis"`
	Path   string            `mapstructure:"path" validate:"required_if=Medium filesystem"`
	DSN    string            `mapstructure:"dsn" validate:"required_if=Medium postgres"`
	Tables sptzx.Tables      `mapstructure:"tables"`
	Redis  redisstore.Config `mapstructure:"redis"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// IsProduction reports whether env selects production behaviour.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"addr":             "server.addr",
	"base-url":         "server.base_url",
	"medium":           "storage.medium",
	"storage-path":     "storage.path",
	"dsn":              "storage.dsn",
	"lifetime":         "relay.lifetime",
	"max-payload-size": "relay.max_payload_size",
	"sweep-interval":   "relay.sweep_interval",
	"secret-file":      "relay.secret_file",
	"log-level":        "log.level",
}

// envAliases keeps the flat variable names of earlier releases working.
// The canonical SPTZX_<SECTION>_<KEY> name wins when both are set.
var envAliases = map[string]string{
	"relay.secret_key":       "SPTZX_SECRET_KEY",
	"storage.path":           "SPTZX_UPLOAD_DIR",
	"relay.max_payload_size": "SPTZX_MAX_FILE_SIZE",
	"relay.lifetime":         "SPTZX_FILE_LIFETIME",
	"server.addr":            "SPTZX_BIND_ADDR",
	"server.base_url":        "SPTZX_BASE_URL",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

func bindEnv(v *viper.Viper) {
	replacer := strings.NewReplacer(".", "_")
	keys := []string{"relay.secret_file"}
	for key := range envAliases {
		keys = append(keys, key)
	}
	for _, key := range keys {
		names := []string{key, EnvPrefix + "_" + strings.ToUpper(replacer.Replace(key))}
		if alias, ok := envAliases[key]; ok {
			names = append(names, alias)
		}
		_ = v.BindEnv(names...)
	}
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.addr", "0.0.0.0:3000")
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.read_timeout", 60)
	v.SetDefault("server.write_timeout", 300)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("server.shutdown_timeout", 30)
	v.SetDefault("server.compress", true)

	v.SetDefault("relay.lifetime", 300)
	v.SetDefault("relay.max_payload_size", 512<<20)
	v.SetDefault("relay.max_resident_bytes", 0) // 0 means no quota
	v.SetDefault("relay.sweep_interval", 5)
	v.SetDefault("relay.sweep_timeout", 30)

	v.SetDefault("storage.medium", MediumMemory)
	v.SetDefault("storage.path", "/dev/shm/sptzx")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.tables.objects", "sptzx_objects")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", redisstore.DefaultPrefix)
	v.SetDefault("storage.redis.safety_ttl", "0s")

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_second", 1.0)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("ratelimit.idle_ttl", "3m")

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "HEAD", "POST"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "X-Filename", "Range"})
	v.SetDefault("cors.exposed_headers", []string{"Content-Disposition", "Content-Length", "Content-Range"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Storage.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
