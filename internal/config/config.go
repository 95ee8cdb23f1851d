// Package config loads quire settings from defaults, an optional YAML file,
// a .env file and QUIRE_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. QUIRE_LOG_LEVEL.
const EnvPrefix = "QUIRE"

// Config is the full application configuration.
type Config struct {
	DataDir  string         `mapstructure:"data_dir"`
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	View     ViewConfig     `mapstructure:"view"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Share    ShareConfig    `mapstructure:"share"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type StoreConfig struct {
	Format        string `mapstructure:"format"` // json or yaml
	RetryAttempts uint   `mapstructure:"retry_attempts"`
	ReadOnly      bool   `mapstructure:"read_only"`
	DevSafety     bool   `mapstructure:"dev_safety"`
}

type ViewConfig struct {
	Language string `mapstructure:"language"`
	Sort     string `mapstructure:"sort"`
}

type CalendarConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Dir       string        `mapstructure:"dir"` // relative to DataDir when not absolute
	Calendars []CalendarRef `mapstructure:"calendars"`
}

type CalendarRef struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

type ShareConfig struct {
	Outbox       string `mapstructure:"outbox"`
	DocumentsDir string `mapstructure:"documents_dir"`
	CacheDir     string `mapstructure:"cache_dir"`
}

// SetDefaults registers every key with its default so that environment
// overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
	v.SetDefault("store.format", "json")
	v.SetDefault("store.retry_attempts", 3)
	v.SetDefault("store.read_only", false)
	v.SetDefault("store.dev_safety", true)
	v.SetDefault("view.language", "und")
	v.SetDefault("view.sort", "DATE_DESC")
	v.SetDefault("calendar.enabled", true)
	v.SetDefault("calendar.dir", "calendar")
	v.SetDefault("calendar.calendars", []map[string]any{{"id": "local", "name": "Local"}})
	v.SetDefault("share.outbox", "")
	v.SetDefault("share.documents_dir", "")
	v.SetDefault("share.cache_dir", "")
}

// Load reads configuration into a Config. v may carry flag bindings; nil
// means a fresh viper instance. An empty file searches for quire.yaml in the
// working directory and skips it when absent.
func Load(v *viper.Viper, file string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("quire")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for _, key := range v.AllKeys() {
		raw, ok := v.Get(key).(string)
		if !ok || !strings.Contains(raw, "${") {
			continue
		}
		v.Set(key, expandEnvWithDefaults(raw))
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

var envRef = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults replaces ${VAR} and ${VAR:-default} references.
// An unset or empty VAR takes the default.
func expandEnvWithDefaults(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		m := envRef.FindStringSubmatch(match)
		if value := os.Getenv(m[1]); value != "" {
			return value
		}
		return m[2]
	})
}
