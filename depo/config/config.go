package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	internal "github.com/ZanzyTHEbar/deposition/depo"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Depo          DepoConfig          `mapstructure:"depo"`
	Interrogation InterrogationConfig `mapstructure:"interrogation"`
	Models        ModelsConfig        `mapstructure:"models"`
	Researcher    ResearcherConfig    `mapstructure:"researcher"`
	Events        EventsConfig        `mapstructure:"events"`
	Batch         BatchConfig         `mapstructure:"batch"`
}

// DatabaseConfig stores database connection details.
type DatabaseConfig struct {
	DSN  string `mapstructure:"dsn"`
	Type string `mapstructure:"type"`
	// Embedded-only configuration
	LibSQLDataDir string `mapstructure:"libsql_data_dir"` // Directory for database files
}

// DepoConfig stores application-level paths and storage settings.
type DepoConfig struct {
	CacheDir  string         `mapstructure:"cacheDir"`
	PromptDir string         `mapstructure:"promptDir"`
	Database  DatabaseConfig `mapstructure:"database"`
}

// InterrogationConfig stores the control-loop settings for a run.
type InterrogationConfig struct {
	// Loop bounds
	DefaultMaxTurns  int           `mapstructure:"default_max_turns"` // Used when a caller passes no explicit ceiling
	RetrievalTimeout time.Duration `mapstructure:"retrieval_timeout"` // Per retrieval call
	StageTimeout     time.Duration `mapstructure:"stage_timeout"`     // Per LLM stage call

	// Sufficiency detection
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"` // Cosine threshold for the confidence phrase
	DedupThreshold      float64 `mapstructure:"dedup_threshold"`      // Cosine threshold for near-duplicate questions

	// Answer caching
	CacheEnabled    bool `mapstructure:"cache_enabled"`     // Enable answer caching
	CacheCapacity   int  `mapstructure:"cache_capacity"`    // LRU cache capacity
	CacheTTLSeconds int  `mapstructure:"cache_ttl_seconds"` // Cache entry TTL

	// Rate limiting
	RateLimitEnabled    bool          `mapstructure:"rate_limit_enabled"`     // Enable rate limiting
	RateLimitCapacity   int           `mapstructure:"rate_limit_capacity"`    // Token bucket capacity
	RateLimitRefillRate time.Duration `mapstructure:"rate_limit_refill_rate"` // Refill rate

	// Durability and telemetry
	CheckpointEnabled bool `mapstructure:"checkpoint_enabled"` // Persist each completed turn
	EnableTracing     bool `mapstructure:"enable_tracing"`     // Enable structured logging/tracing
	EnableMetrics     bool `mapstructure:"enable_metrics"`     // Enable stage counters
}

// StageModelConfig describes the model serving one pipeline stage.
// Empty fields fall back to the default stage config.
type StageModelConfig struct {
	Provider    string  `mapstructure:"provider"` // "gemini", "openai", "ollama"
	Model       string  `mapstructure:"model"`    // Provider model identifier
	BaseURL     string  `mapstructure:"base_url"` // Endpoint override
	APIKeyEnv   string  `mapstructure:"api_key_env"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// ModelsConfig maps pipeline stages to model configurations. Any stage
// left unset is served by Default.
type ModelsConfig struct {
	Default  StageModelConfig `mapstructure:"default"`
	Question StageModelConfig `mapstructure:"question"`
	Refine   StageModelConfig `mapstructure:"refine"`
	Report   StageModelConfig `mapstructure:"report"`
	Conclude StageModelConfig `mapstructure:"conclude"`
}

// ResearcherConfig stores the retrieval collaborator endpoint settings.
type ResearcherConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKeyEnv         string        `mapstructure:"api_key_env"`
	Timeout           time.Duration `mapstructure:"timeout"`
	ValidateResponses bool          `mapstructure:"validate_responses"` // Schema-check retrieval payloads
}

// EventsConfig stores the NATS event publishing settings.
type EventsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// BatchConfig stores settings for running multiple interrogations at once.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("..")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("depo.cacheDir", internal.DefaultCacheDir)
	viper.SetDefault("depo.promptDir", internal.DefaultPromptDir)
	viper.SetDefault("depo.database.dsn", internal.DefaultDatabaseDSN)
	viper.SetDefault("depo.database.type", internal.DefaultDatabaseType)
	viper.SetDefault("depo.database.libsql_data_dir", internal.DefaultDatabaseDir)

	// Interrogation loop defaults
	viper.SetDefault("interrogation.default_max_turns", 5)
	viper.SetDefault("interrogation.retrieval_timeout", "90s")
	viper.SetDefault("interrogation.stage_timeout", "60s")
	viper.SetDefault("interrogation.similarity_threshold", 0.9)
	viper.SetDefault("interrogation.dedup_threshold", 0.85)
	viper.SetDefault("interrogation.cache_enabled", true)
	viper.SetDefault("interrogation.cache_capacity", 1000)
	viper.SetDefault("interrogation.cache_ttl_seconds", 3600) // 1 hour
	viper.SetDefault("interrogation.rate_limit_enabled", true)
	viper.SetDefault("interrogation.rate_limit_capacity", 10)
	viper.SetDefault("interrogation.rate_limit_refill_rate", "1s")
	viper.SetDefault("interrogation.checkpoint_enabled", true)
	viper.SetDefault("interrogation.enable_tracing", true)
	viper.SetDefault("interrogation.enable_metrics", true)

	// Model defaults: every stage inherits from models.default unless
	// overridden per stage.
	viper.SetDefault("models.default.provider", "gemini")
	viper.SetDefault("models.default.model", "gemini-2.0-flash")
	viper.SetDefault("models.default.api_key_env", "GEMINI_API_KEY")
	viper.SetDefault("models.default.temperature", 0.3)
	viper.SetDefault("models.default.max_tokens", 2048)

	// Researcher defaults
	viper.SetDefault("researcher.base_url", "http://localhost:8080")
	viper.SetDefault("researcher.api_key_env", "RESEARCHER_API_KEY")
	viper.SetDefault("researcher.timeout", "90s")
	viper.SetDefault("researcher.validate_responses", true)

	// Event publishing defaults (off unless a broker is configured)
	viper.SetDefault("events.enabled", false)
	viper.SetDefault("events.url", "nats://localhost:4222")
	viper.SetDefault("events.subject_prefix", "deposition")

	// Batch defaults
	viper.SetDefault("batch.concurrency", 4)

	viper.AutomaticEnv()
	// Replace dots with underscores in env var names e.g. researcher.base_url becomes RESEARCHER_BASE_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults will be used. This is not an error for the application to halt on.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
