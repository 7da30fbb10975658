// Package config loads homeschool.yaml and HOMESCHOOL_* environment
// variables into one typed configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kevinraymond/homeschool/internal/llm"
	"github.com/kevinraymond/homeschool/internal/logger"
	"github.com/kevinraymond/homeschool/internal/store"
	"github.com/kevinraymond/homeschool/internal/tutor"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HOMESCHOOL"

type Config struct {
	Tutor      TutorConfig      `mapstructure:"tutor"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Store      StoreConfig      `mapstructure:"store"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Curriculum CurriculumConfig `mapstructure:"curriculum"`
	Cache      CacheConfig      `mapstructure:"cache"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type TutorConfig struct {
	Mode                string        `mapstructure:"mode"`
	LocalOnly           bool          `mapstructure:"local_only"`
	OllamaURL           string        `mapstructure:"ollama_url"`
	OllamaModel         string        `mapstructure:"ollama_model"`
	LocalTimeout        time.Duration `mapstructure:"local_timeout"`
	LocalMaxTokens      int           `mapstructure:"local_max_tokens"`
	CloudMaxTokens      int           `mapstructure:"cloud_max_tokens"`
	HintTemperature     float64       `mapstructure:"hint_temperature"`
	FeedbackTemperature float64       `mapstructure:"feedback_temperature"`
}

type LLMConfig struct {
	Provider   string         `mapstructure:"provider"`
	Timeout    time.Duration  `mapstructure:"timeout"`
	Anthropic  ProviderConfig `mapstructure:"anthropic"`
	OpenAI     ProviderConfig `mapstructure:"openai"`
	Gemini     ProviderConfig `mapstructure:"gemini"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`
	Retry      RetryConfig    `mapstructure:"retry"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

type StoreConfig struct {
	// Path is the SQLite file. Empty means store.DefaultDBPath.
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	Mode           string        `mapstructure:"mode"` // gin mode: debug, release, test
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Mode       string `mapstructure:"mode"`
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type CurriculumConfig struct {
	Dir string `mapstructure:"dir"`
}

type CacheConfig struct {
	// RedisURL enables the llm response cache, e.g. redis://localhost:6379/0.
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	td := tutor.DefaultConfig()
	v.SetDefault("tutor.mode", string(td.Mode))
	v.SetDefault("tutor.local_only", false)
	v.SetDefault("tutor.ollama_url", td.Local.BaseURL)
	v.SetDefault("tutor.ollama_model", td.Local.Model)
	v.SetDefault("tutor.local_timeout", td.Local.Timeout)
	v.SetDefault("tutor.local_max_tokens", td.Local.MaxTokens)
	v.SetDefault("tutor.cloud_max_tokens", td.CloudMaxTokens)
	v.SetDefault("tutor.hint_temperature", td.HintTemperature)
	v.SetDefault("tutor.feedback_temperature", td.FeedbackTemperature)

	ld := llm.DefaultConfig()
	v.SetDefault("llm.provider", ld.Provider)
	v.SetDefault("llm.timeout", ld.Timeout)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", ld.Anthropic.Model)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", ld.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", ld.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", ld.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", ld.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", ld.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", ld.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", ld.Retry.Multiplier)

	v.SetDefault("store.path", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("log.mode", "prod")
	v.SetDefault("log.level", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("curriculum.dir", "curriculum")

	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 24*time.Hour)
}

// bindAliases lets the conventional provider variables stand in for the
// prefixed ones.
func bindAliases(v *viper.Viper) {
	v.BindEnv("llm.anthropic.api_key", "HOMESCHOOL_LLM_ANTHROPIC_API_KEY", "HOMESCHOOL_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	v.BindEnv("llm.openai.api_key", "HOMESCHOOL_LLM_OPENAI_API_KEY", "HOMESCHOOL_OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("llm.gemini.api_key", "HOMESCHOOL_LLM_GEMINI_API_KEY", "HOMESCHOOL_GEMINI_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("llm.openrouter.api_key", "HOMESCHOOL_LLM_OPENROUTER_API_KEY", "HOMESCHOOL_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	v.BindEnv("tutor.ollama_url", "HOMESCHOOL_TUTOR_OLLAMA_URL", "HOMESCHOOL_OLLAMA_URL")
	v.BindEnv("tutor.ollama_model", "HOMESCHOOL_TUTOR_OLLAMA_MODEL", "HOMESCHOOL_OLLAMA_MODEL")
	v.BindEnv("store.path", "HOMESCHOOL_STORE_PATH", "HOMESCHOOL_DB")
}

// Load reads configuration from path, or when path is empty from the first
// homeschool.yaml found in the working directory or
// $XDG_CONFIG_HOME/homeschool. A missing default file is not an error.
// Environment variables override the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindAliases(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("homeschool")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := configDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return &cfg, nil
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "homeschool")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "homeschool")
	}
	return ""
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.TutorConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.LLM.Provider {
	case "anthropic", "openai", "gemini", "openrouter", "mock":
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not a hosted provider", c.LLM.Provider))
	}
	if c.LLM.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("llm.retry.max_attempts must be at least 1"))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode %q must be debug, release or test", c.Server.Mode))
	}
	if c.Cache.RedisURL != "" && c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive when redis is enabled"))
	}
	return errors.Join(errs...)
}

// LLMConfig converts the llm section.
func (c *Config) LLMConfig() llm.Config {
	out := llm.DefaultConfig()
	out.Provider = c.LLM.Provider
	out.Timeout = c.LLM.Timeout
	out.Anthropic = llm.AnthropicConfig{APIKey: c.LLM.Anthropic.APIKey, Model: c.LLM.Anthropic.Model, BaseURL: c.LLM.Anthropic.BaseURL}
	out.OpenAI = llm.OpenAIConfig{APIKey: c.LLM.OpenAI.APIKey, Model: c.LLM.OpenAI.Model, BaseURL: c.LLM.OpenAI.BaseURL}
	out.Gemini = llm.GeminiConfig{APIKey: c.LLM.Gemini.APIKey, Model: c.LLM.Gemini.Model}
	out.OpenRouter = llm.OpenRouterConfig{APIKey: c.LLM.OpenRouter.APIKey, Model: c.LLM.OpenRouter.Model, BaseURL: c.LLM.OpenRouter.BaseURL}
	out.Ollama = llm.OllamaConfig{BaseURL: c.Tutor.OllamaURL, Model: c.Tutor.OllamaModel, Timeout: c.Tutor.LocalTimeout}
	out.Retry = llm.RetryConfig{
		MaxAttempts: c.LLM.Retry.MaxAttempts,
		InitialWait: c.LLM.Retry.InitialWait,
		MaxWait:     c.LLM.Retry.MaxWait,
		Multiplier:  c.LLM.Retry.Multiplier,
	}
	return out
}

// TutorConfig converts the tutor section. The llm section is the cloud
// backend.
func (c *Config) TutorConfig() tutor.Config {
	return tutor.Config{
		Mode:      tutor.Mode(c.Tutor.Mode),
		LocalOnly: c.Tutor.LocalOnly,
		Local: tutor.LocalConfig{
			BaseURL:   c.Tutor.OllamaURL,
			Model:     c.Tutor.OllamaModel,
			Timeout:   c.Tutor.LocalTimeout,
			MaxTokens: c.Tutor.LocalMaxTokens,
		},
		Cloud:               c.LLMConfig(),
		CloudMaxTokens:      c.Tutor.CloudMaxTokens,
		HintTemperature:     c.Tutor.HintTemperature,
		FeedbackTemperature: c.Tutor.FeedbackTemperature,
	}
}

// LoggerOptions converts the log section.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Mode:       c.Log.Mode,
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}

// StorePath is the SQLite file to open. Its parent directory is created.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, store.EnsureDir(c.Store.Path)
	}
	return store.DefaultDBPath()
}
