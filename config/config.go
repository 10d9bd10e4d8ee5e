package config

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. LABELREADER_OPENAI_API_KEY
const EnvPrefix = "LABELREADER"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Inference InferenceConfig `mapstructure:"inference"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Images    ImagesConfig    `mapstructure:"images"`
	Store     StoreConfig     `mapstructure:"store"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
	Prompt    string          `mapstructure:"prompt"` // overrides the built-in label prompt
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// InferenceConfig selects the extraction provider
type InferenceConfig struct {
	Provider string `mapstructure:"provider"` // "openai" or "gemini"
}

// OpenAIConfig holds chat completions API configuration
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ImagesConfig restricts which image hosts may be sent for extraction
type ImagesConfig struct {
	AllowedHosts []string `mapstructure:"allowed_hosts"` // empty allows any host
}

// StoreConfig holds document store configuration
type StoreConfig struct {
	Driver     string `mapstructure:"driver"` // "mongo", "postgres" or "sqlite"
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// IngestConfig holds batch ingestion configuration
type IngestConfig struct {
	Input       string `mapstructure:"input"`
	Concurrency int    `mapstructure:"concurrency"`
	HasHeader   bool   `mapstructure:"has_header"`
	Sheet       string `mapstructure:"sheet"`
	DryRun      bool   `mapstructure:"dry_run"`
}

// RateLimitConfig holds rate limiting configuration for the HTTP API
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from path, or from the default locations
// when path is empty. Environment variables override file values.
func LoadFile(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/labelreader/")
	}

	// Environment variable settings
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional unless one was named explicitly
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read config file")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, eris.Wrap(err, "config: decode")
	}

	if err := validate(&config); err != nil {
		return nil, eris.Wrap(err, "config: invalid configuration")
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key gets a default so
// that AutomaticEnv can populate it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("inference.provider", "openai")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-2024-08-06")
	v.SetDefault("openai.timeout", "120s")

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")

	v.SetDefault("images.allowed_hosts", []string{})

	v.SetDefault("store.driver", "mongo")
	v.SetDefault("store.uri", "mongodb://localhost:27017")
	v.SetDefault("store.database", "consumeWise")
	v.SetDefault("store.collection", "products")

	v.SetDefault("ingest.input", "")
	v.SetDefault("ingest.concurrency", 5)
	v.SetDefault("ingest.has_header", false)
	v.SetDefault("ingest.sheet", "")
	v.SetDefault("ingest.dry_run", false)

	v.SetDefault("ratelimit.per_ip", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("prompt", "")
}

// validate checks values that must hold for every command
func validate(config *Config) error {
	switch config.Inference.Provider {
	case "openai", "gemini":
	default:
		return eris.Errorf("inference provider must be 'openai' or 'gemini', got: %s", config.Inference.Provider)
	}

	switch config.Store.Driver {
	case "mongo", "postgres", "sqlite":
	default:
		return eris.Errorf("store driver must be 'mongo', 'postgres' or 'sqlite', got: %s", config.Store.Driver)
	}

	if config.Ingest.Concurrency < 1 {
		return eris.Errorf("ingest concurrency must be at least 1, got: %d", config.Ingest.Concurrency)
	}

	if config.RateLimit.PerIP < 0 {
		return eris.Errorf("rate limit per IP must not be negative, got: %d", config.RateLimit.PerIP)
	}

	if config.Log.Format != "" && config.Log.Format != "json" && config.Log.Format != "console" {
		return eris.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	return nil
}

// ValidateInference checks the selected provider can be called
func (c *Config) ValidateInference() error {
	switch c.Inference.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return eris.Errorf("Gemini API key is required (set %s_GEMINI_API_KEY)", EnvPrefix)
		}
	default:
		if c.OpenAI.APIKey == "" {
			return eris.Errorf("OpenAI API key is required (set %s_OPENAI_API_KEY)", EnvPrefix)
		}
	}
	return nil
}

// ValidateStore checks the document store can be opened
func (c *Config) ValidateStore() error {
	if c.Store.URI == "" {
		return eris.Errorf("store URI is required (set %s_STORE_URI)", EnvPrefix)
	}
	if c.Store.Driver == "mongo" && (c.Store.Database == "" || c.Store.Collection == "") {
		return eris.New("store database and collection are required for mongo")
	}
	return nil
}

// loadEnvFile exports the variables of a .env file in the working directory.
// Variables already present in the environment win. A missing file is not
// an error.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}

	ev := viper.New()
	ev.SetConfigFile(".env")
	ev.SetConfigType("env")
	if err := ev.ReadInConfig(); err != nil {
		return err
	}

	for _, key := range ev.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, ev.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}
