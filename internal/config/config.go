// Package config loads the service configuration.
//
// Precedence, lowest to highest: built-in defaults, the optional YAML file,
// environment variables. Every key has an env form: TASKMANAGER_ plus the key
// upper-cased with dots as underscores (server.port → TASKMANAGER_SERVER_PORT).
// PORT and DB_PATH are also honoured for server.port and database.path.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "TASKMANAGER"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format"       validate:"oneof=text json"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Path          string        `mapstructure:"path"           validate:"required"`
	BusyTimeout   time.Duration `mapstructure:"busy_timeout"   validate:"gte=0"`
	LogStatements bool          `mapstructure:"log_statements"`
}

// Level converts LogLevel to a slog level. Load has already validated it.
func (c ServerConfig) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "text")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("database.path", "data/taskmanager.db")
	v.SetDefault("database.busy_timeout", 5*time.Second)
	v.SetDefault("database.log_statements", false)
}

// Load builds the configuration. configPath may be empty; when set, the file
// must exist and parse.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Plain names kept for deployments that already set them.
	if err := v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("config: binding PORT: %w", err)
	}
	if err := v.BindEnv("database.path", envPrefix+"_DATABASE_PATH", "DB_PATH"); err != nil {
		return nil, fmt.Errorf("config: binding DB_PATH: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, fmt.Errorf("config: invalid %s: failed %q rule (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return nil, fmt.Errorf("config: validating: %w", err)
	}

	return &cfg, nil
}
