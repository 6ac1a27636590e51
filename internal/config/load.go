package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "TASKLOG"

// configFileEnv names an optional config file (yaml, json or toml).
const configFileEnv = EnvPrefix + "_CONFIG_FILE"

// requiredKeys have no default but must still be resolvable from the environment.
var requiredKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"encryption.key",
	"encryption.iv",
	"broker.url",
	"mail.username",
	"mail.password",
	"mail.from",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("broker.email_queue", "email")
	v.SetDefault("broker.publish_attempts", 3)
	v.SetDefault("broker.max_redeliveries", 0)
	v.SetDefault("broker.prefetch", 10)
	v.SetDefault("broker.consumer_enabled", true)

	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", 465)
	v.SetDefault("mail.tls_mode", "implicit")

	v.SetDefault("notification.worker_count", 2)
	v.SetDefault("notification.queue_size", 100)

	v.SetDefault("telemetry.metrics_exporter", "none")
	v.SetDefault("telemetry.export_interval_seconds", 60)
}

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv(configFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range requiredKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
