// Package config loads tgadmin settings from flags, environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/tgadmin/internal/logging"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. TGADMIN_TELEGRAM_TOKEN.
const EnvPrefix = "TGADMIN"

// Config is the complete runtime configuration.
type Config struct {
	Telegram  TelegramConfig `mapstructure:"telegram"`
	Logging   LoggingConfig  `mapstructure:"logging"`
	Metrics   MetricsConfig  `mapstructure:"metrics"`
	Redis     RedisConfig    `mapstructure:"redis"`
	Watch     bool           `mapstructure:"watch"`
	QueueSize int            `mapstructure:"queue_size"`
	// WatchDebounce is the quiet period before a changed file is reloaded.
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	// Concurrency bounds how many chats are handled at once.
	Concurrency int `mapstructure:"concurrency"`
	// MaxInput is the largest value, in bytes, an operator may send.
	MaxInput int `mapstructure:"max_input"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
	// AdminList holds the chat or user ids allowed to edit. Empty allows everyone.
	AdminList   []int64       `mapstructure:"admin_list"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	// APIEndpoint points at a self-hosted Bot API server, as a format taking
	// the token and the method. Empty uses api.telegram.org.
	APIEndpoint string `mapstructure:"api_endpoint"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// MetricsConfig controls the HTTP endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// RedisConfig enables the cross-process document lock when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
	// PollInterval is how often a writer retries a held lock.
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// setDefaults registers every key so that environment variables bind to it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_list", []int64{})
	v.SetDefault("telegram.poll_timeout", 60*time.Second)
	v.SetDefault("telegram.api_endpoint", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "tgadmin:")
	v.SetDefault("redis.lock_ttl", 10*time.Second)
	v.SetDefault("redis.poll_interval", 50*time.Millisecond)
	v.SetDefault("watch", false)
	v.SetDefault("watch_debounce", 300*time.Millisecond)
	v.SetDefault("queue_size", 16)
	v.SetDefault("concurrency", 8)
	v.SetDefault("max_input", 4096)
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges the config file at path into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// Load decodes v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToInt64SliceHook(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings. The bot token is only required when the bot runs.
func (c *Config) Validate(requireToken bool) error {
	var errs []error
	if requireToken && strings.TrimSpace(c.Telegram.Token) == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	if c.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("queue_size must be positive, got %d", c.QueueSize))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if c.MaxInput <= 0 {
		errs = append(errs, fmt.Errorf("max_input must be positive, got %d", c.MaxInput))
	}
	if c.Telegram.PollTimeout < time.Second {
		errs = append(errs, fmt.Errorf("telegram.poll_timeout must be at least 1s, got %s", c.Telegram.PollTimeout))
	}
	if c.Redis.Addr != "" && c.Redis.LockTTL <= 0 {
		errs = append(errs, fmt.Errorf("redis.lock_ttl must be positive, got %s", c.Redis.LockTTL))
	}
	if c.Redis.Addr != "" && c.Redis.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("redis.poll_interval must be positive, got %s", c.Redis.PollInterval))
	}
	if c.Watch && c.WatchDebounce <= 0 {
		errs = append(errs, fmt.Errorf("watch_debounce must be positive, got %s", c.WatchDebounce))
	}
	return errors.Join(errs...)
}

// LoggingOptions maps the logging section onto logging.Options.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Format:     c.Logging.Format,
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
	}
}

// stringToInt64SliceHook accepts "1, 2,3" and "[1,2,3]" for []int64 fields,
// which is how lists arrive from environment variables and flags.
func stringToInt64SliceHook() mapstructure.DecodeHookFuncType {
	target := reflect.TypeOf([]int64{})
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != target {
			return data, nil
		}
		raw := strings.Trim(strings.TrimSpace(data.(string)), "[]")
		if raw == "" {
			return []int64{}, nil
		}
		parts := strings.Split(raw, ",")
		ids := make([]int64, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			id, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q: %w", p, err)
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
}
