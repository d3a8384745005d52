// Package config loads and validates navigator configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Search   SearchConfig   `mapstructure:"search"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Verifier VerifierConfig `mapstructure:"verifier"`
	Memory   MemoryConfig   `mapstructure:"memory"`
	History  HistoryConfig  `mapstructure:"history"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Events   EventsConfig   `mapstructure:"events"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// SearchConfig holds provider credentials and call behavior. An
// empty key leaves that provider unconfigured.
type SearchConfig struct {
	TavilyKey      string `mapstructure:"tavily_key"`
	SerpAPIKey     string `mapstructure:"serpapi_key"`
	SerperKey      string `mapstructure:"serper_key"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// BrowserConfig selects the automation session mode and pacing.
type BrowserConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Headless        bool   `mapstructure:"headless"`
	DebuggerAddress string `mapstructure:"debugger_address"`
	UserDataDir     string `mapstructure:"user_data_dir"`
	StepDelayMs     int    `mapstructure:"step_delay_ms"`
	ActionTimeoutS  int    `mapstructure:"action_timeout_seconds"`
}

// VerifierConfig configures the Gemini verification gateway.
type VerifierConfig struct {
	GeminiKey string `mapstructure:"gemini_key"`
	GeminiURL string `mapstructure:"gemini_url"`
}

// MemoryConfig sets the persistent memory file location.
type MemoryConfig struct {
	Path string `mapstructure:"path"`
}

// HistoryConfig selects the job-history backend.
type HistoryConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
}

// ArchiveConfig selects where job-result documents are archived.
type ArchiveConfig struct {
	Provider string `mapstructure:"provider"`
	BaseDir  string `mapstructure:"base_dir"`
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
}

// EventsConfig selects the completion-event publisher.
type EventsConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NAVIGATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// setDefaults registers every known key. Registering the empty ones
// too is what lets AutomaticEnv feed them through Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("search.tavily_key", "")
	v.SetDefault("search.serpapi_key", "")
	v.SetDefault("search.serper_key", "")
	v.SetDefault("search.user_agent", "navigator-bot/0.1")
	v.SetDefault("search.timeout_seconds", 10)
	v.SetDefault("browser.enabled", true)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.debugger_address", "")
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.step_delay_ms", 800)
	v.SetDefault("browser.action_timeout_seconds", 30)
	v.SetDefault("verifier.gemini_key", "")
	v.SetDefault("verifier.gemini_url", "")
	v.SetDefault("memory.path", ".navigator_memory.json")
	v.SetDefault("history.provider", "memory")
	v.SetDefault("history.dsn", "")
	v.SetDefault("history.table", "job_results")
	v.SetDefault("archive.provider", "none")
	v.SetDefault("archive.base_dir", "")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.prefix", "jobs")
	v.SetDefault("events.provider", "none")
	v.SetDefault("events.project_id", "")
	v.SetDefault("events.topic", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Search.TimeoutSeconds <= 0 {
		return fmt.Errorf("search.timeout_seconds must be > 0")
	}
	if c.Browser.Enabled && c.Browser.ActionTimeoutS <= 0 {
		return fmt.Errorf("browser.action_timeout_seconds must be > 0 when the browser is enabled")
	}
	switch c.History.Provider {
	case "memory":
	case "postgres":
		if c.History.DSN == "" {
			return fmt.Errorf("history.dsn must be set when history.provider is postgres")
		}
	default:
		return fmt.Errorf("unknown history provider %q", c.History.Provider)
	}
	switch c.Archive.Provider {
	case "none", "local", "gcs":
	default:
		return fmt.Errorf("unknown archive provider %q", c.Archive.Provider)
	}
	if c.Archive.Provider == "local" && c.Archive.BaseDir == "" {
		return fmt.Errorf("archive.base_dir must be set when archive.provider is local")
	}
	if c.Archive.Provider == "gcs" && c.Archive.Bucket == "" {
		return fmt.Errorf("archive.bucket must be set when archive.provider is gcs")
	}
	switch c.Events.Provider {
	case "none", "memory":
	case "pubsub":
		if c.Events.ProjectID == "" || c.Events.Topic == "" {
			return fmt.Errorf("events.project_id and events.topic must be set when events.provider is pubsub")
		}
	default:
		return fmt.Errorf("unknown events provider %q", c.Events.Provider)
	}
	return nil
}

// StepDelay converts the configured pacing into a duration.
func (c Config) StepDelay() time.Duration {
	return time.Duration(c.Browser.StepDelayMs) * time.Millisecond
}

// ActionTimeout converts the browser action timeout into a duration.
func (c Config) ActionTimeout() time.Duration {
	return time.Duration(c.Browser.ActionTimeoutS) * time.Second
}
