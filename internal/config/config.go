package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"kokorolog/internal/emotion"
)

// Config holds all kokorolog configuration.
type Config struct {
	// Core settings
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Timezone string `yaml:"timezone"` // day-bucket boundary, e.g. Asia/Tokyo

	// HTTP server
	Server ServerConfig `yaml:"server"`

	// SQLite storage
	Store StoreConfig `yaml:"store"`

	// Classification pipeline
	Emotion EmotionConfig `yaml:"emotion"`

	// Optional external classifier / reply generator
	LLM LLMConfig `yaml:"llm"`

	// Aggregate reports
	Report ReportConfig `yaml:"report"`

	// Reply generation
	Reply ReplyConfig `yaml:"reply"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP layer.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	APIKey          string `yaml:"api_key"` // teacher/export endpoints; empty disables the check
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	CookieName      string `yaml:"cookie_name"`
}

// StoreConfig configures the journal store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// EmotionConfig configures the classification pipeline.
type EmotionConfig struct {
	Engine     string `yaml:"engine"`      // lexicon, legacy
	ManualOnly bool   `yaml:"manual_only"` // reject unrecognized selected labels instead of falling back
	AliasPath  string `yaml:"alias_path"`  // optional YAML alias overlay

	// Tunables; zero means "use the built-in default".
	Alpha          float64 `yaml:"alpha"`
	LatestBonus    float64 `yaml:"latest_bonus"`
	NeutralFloor   float64 `yaml:"neutral_floor"`
	WinnerBonus    float64 `yaml:"winner_bonus"`
	ExternalWeight float64 `yaml:"external_weight"`
}

// LLMConfig configures the external classifier.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, openai, off
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

// ReportConfig configures aggregate report generation.
type ReportConfig struct {
	CacheTTL string `yaml:"cache_ttl"`
}

// ReplyConfig configures the reply generator.
type ReplyConfig struct {
	Persona string `yaml:"persona"` // buddy, teacher
	UseLLM  bool   `yaml:"use_llm"` // paraphrase canned replies through the LLM
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"` // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	Dir    string `yaml:"dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:     "kokorolog",
		Version:  "1.0.0",
		Timezone: "Asia/Tokyo",

		Server: ServerConfig{
			Addr:            ":8787",
			RateLimitPerMin: 60,
			CookieName:      "kokoro_sid",
		},

		Store: StoreConfig{
			DatabasePath: "data/kokorolog.db",
		},

		Emotion: EmotionConfig{
			Engine: "lexicon",
		},

		LLM: LLMConfig{
			Provider: "off",
			Model:    "gemini-2.0-flash",
			Timeout:  "8s",
		},

		Report: ReportConfig{
			CacheTTL: "5m",
		},

		Reply: ReplyConfig{
			Persona: "buddy",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Dir:    "logs",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KOKORO_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("KOKORO_API_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("KOKORO_DB"); v != "" {
		c.Store.DatabasePath = v
	}
	if v := os.Getenv("KOKORO_TZ"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("KOKORO_ENGINE"); v != "" {
		c.Emotion.Engine = v
	}
	if v := os.Getenv("KOKORO_ALIAS_PATH"); v != "" {
		c.Emotion.AliasPath = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("KOKORO_EMA_ALPHA"), 64); err == nil {
		c.Emotion.Alpha = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("KOKORO_LATEST_BONUS"), 64); err == nil {
		c.Emotion.LatestBonus = v
	}
	if v := os.Getenv("KOKORO_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("KOKORO_LOG_DIR"); v != "" {
		c.Logging.Dir = v
	}

	// Provider API keys from environment (checked in priority order; an
	// explicit provider choice keeps its own key)
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		if c.LLM.Provider == "off" {
			c.LLM.Provider = "gemini"
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.LLM.Provider == "openai" {
		c.LLM.APIKey = key
	}
}

// EmotionParams materializes the pipeline tunables, starting from the
// built-in defaults and applying any non-zero overrides.
func (c *Config) EmotionParams() emotion.Params {
	p := emotion.DefaultParams()
	if c.Emotion.Alpha > 0 {
		p.Alpha = c.Emotion.Alpha
	}
	if c.Emotion.LatestBonus > 0 {
		p.LatestBonus = c.Emotion.LatestBonus
	}
	if c.Emotion.NeutralFloor > 0 {
		p.NeutralFloor = c.Emotion.NeutralFloor
	}
	if c.Emotion.WinnerBonus > 0 {
		p.WinnerBonus = c.Emotion.WinnerBonus
	}
	if c.Emotion.ExternalWeight > 0 {
		p.ExternalWeight = c.Emotion.ExternalWeight
	}
	return p
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 8 * time.Second
	}
	return d
}

// GetCacheTTL returns the report cache TTL as a duration.
func (c *Config) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Report.CacheTTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// Location resolves the configured time zone, falling back to UTC on a
// bad zone name rather than failing startup.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{"gemini", "openai", "off"}

// ValidEngines lists the selectable classification engines.
var ValidEngines = []string{"lexicon", "legacy"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}
	if c.LLM.Provider != "off" && c.LLM.APIKey == "" {
		return fmt.Errorf("LLM provider %s configured without an API key (set GEMINI_API_KEY or OPENAI_API_KEY)", c.LLM.Provider)
	}

	validEngine := false
	for _, e := range ValidEngines {
		if c.Emotion.Engine == e {
			validEngine = true
			break
		}
	}
	if !validEngine {
		return fmt.Errorf("invalid emotion engine: %s (valid: %v)", c.Emotion.Engine, ValidEngines)
	}

	if c.Server.RateLimitPerMin < 0 {
		return fmt.Errorf("rate_limit_per_min must be >= 0, got %d", c.Server.RateLimitPerMin)
	}

	return nil
}

// LLMEnabled reports whether an external classifier should be wired in.
func (c *Config) LLMEnabled() bool {
	return c.LLM.Provider != "off" && c.LLM.APIKey != ""
}
