package config

import (
	stderrors "errors"
	"strings"
	"time"

	"datadash/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the app reads
const EnvPrefix = "DATADASH"

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Session SessionConfig `mapstructure:"session"`
	Chart   ChartConfig   `mapstructure:"chart"`
	Ops     OpsConfig     `mapstructure:"ops"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	GinMode         string        `mapstructure:"gin_mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// UploadConfig holds limits on uploaded files
type UploadConfig struct {
	MaxMB int64 `mapstructure:"max_mb"`
}

// MaxBytes returns the upload cap in bytes
func (u UploadConfig) MaxBytes() int64 {
	return u.MaxMB * 1024 * 1024
}

// SessionConfig holds per-browser session settings
type SessionConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	CookieName string        `mapstructure:"cookie_name"`
}

// ChartConfig holds rendered chart dimensions in pixels
type ChartConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// OpsConfig holds the metrics and profiling listener settings
type OpsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads .env, an optional config file and DATADASH_* environment
// variables, in increasing order of precedence. An empty configFile
// searches for datadash.{yaml,json,toml} in . and ./configs.
func Load(configFile string) (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("datadash")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to read config file")
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to decode configuration")
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	config := &Config{}
	_ = v.Unmarshal(config)
	return config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("upload.max_mb", 200)
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.cookie_name", "datadash_session")
	v.SetDefault("chart.width", 960)
	v.SetDefault("chart.height", 480)
	v.SetDefault("ops.enabled", false)
	v.SetDefault("ops.port", "6060")
	v.SetDefault("log.level", "INFO")
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Upload.MaxMB <= 0 {
		return errors.ConfigInvalid("upload.max_mb must be positive")
	}
	if config.Session.TTL <= 0 {
		return errors.ConfigInvalid("session.ttl must be positive")
	}
	if config.Session.CookieName == "" {
		return errors.ConfigInvalid("session.cookie_name is required")
	}
	if config.Chart.Width < 200 || config.Chart.Height < 150 {
		return errors.ConfigInvalid("chart dimensions must be at least 200x150")
	}
	if config.Ops.Enabled && config.Ops.Port == "" {
		return errors.ConfigInvalid("ops.port is required when ops is enabled")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("server.gin_mode must be debug, release or test")
	}
	return nil
}
