// Package config loads hanzo's settings from defaults, an optional YAML
// file, and HANZO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/abhisek/hanzo/internal/llm"
	"github.com/abhisek/hanzo/internal/store"
)

// EnvPrefix is prepended to every environment override, e.g.
// HANZO_SESSION_LENGTH.
const EnvPrefix = "HANZO"

// FileName is the config file looked up in the data directory.
const FileName = "hanzo.yaml"

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Session  SessionConfig  `mapstructure:"session"`
	Unlock   UnlockConfig   `mapstructure:"unlock"`
	Exam     ExamConfig     `mapstructure:"exam"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	LLM      llm.Config     `mapstructure:"llm"`

	// File is the config file that was read, empty if none.
	File string `mapstructure:"-"`
}

type DatabaseConfig struct {
	// Path is the SQLite file. Empty means the default under the data dir.
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
	// File receives log output. The TUI owns the terminal, so it always
	// logs to a file; CLI commands log to stderr when File is empty.
	File string `mapstructure:"file"`
}

type SessionConfig struct {
	Length         int `mapstructure:"length" validate:"gte=1,lte=200"`
	MaxRepetitions int `mapstructure:"max_repetitions" validate:"gte=1,lte=10"`
}

type UnlockConfig struct {
	Base        int `mapstructure:"base" validate:"gte=1"`
	ReleaseRate int `mapstructure:"release_rate" validate:"gte=0"`
}

type ExamConfig struct {
	PassRatio float64 `mapstructure:"pass_ratio" validate:"gt=0,lte=1"`
}

type CatalogConfig struct {
	// Path is a JSON catalog replacing the built-in one.
	Path string `mapstructure:"path"`
}

// Options are the command-line overrides.
type Options struct {
	// ConfigFile is an explicit config file. A missing explicit file is an
	// error; a missing default file is not.
	ConfigFile string
	// DBPath overrides database.path.
	DBPath string
}

var validate = validator.New()

// Load reads the configuration.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else if dir, err := store.DataDir(); err == nil {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if opts.DBPath != "" {
		cfg.Database.Path = opts.DBPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with every default applied and no
// file or environment consulted.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return &cfg
}

// Validate checks field constraints and the selected LLM provider.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DBPath returns the database file, creating its directory.
func (c *Config) DBPath() (string, error) {
	if c.Database.Path == "" {
		return store.DefaultDBPath()
	}
	if c.Database.Path == ":memory:" {
		return c.Database.Path, nil
	}
	return c.Database.Path, store.EnsureDir(c.Database.Path)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetDefault("session.length", 15)
	v.SetDefault("session.max_repetitions", 3)

	v.SetDefault("unlock.base", 5)
	v.SetDefault("unlock.release_rate", 1)

	v.SetDefault("exam.pass_ratio", 0.8)

	v.SetDefault("catalog.path", "")

	d := llm.DefaultConfig()
	v.SetDefault("llm.provider", d.Provider)
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)
}
