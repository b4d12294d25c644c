package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Models     ModelsConfig     `mapstructure:"models"`
	Prompt     PromptConfig     `mapstructure:"prompt"`
	Generation GenerationConfig `mapstructure:"generation"`
	Correction CorrectionConfig `mapstructure:"correction"`
	Workers    WorkersConfig    `mapstructure:"workers"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Security   SecurityConfig   `mapstructure:"security"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
}

// ModelsConfig names the model used for each role
type ModelsConfig struct {
	FastSQLGeneration string `mapstructure:"fast_sql_generation_model"`
	FineSQLGeneration string `mapstructure:"fine_sql_generation_model"`
	Validation        string `mapstructure:"validation_model_id"`
	SQLCorrection     string `mapstructure:"sql_correction_model_id"`
}

type PromptConfig struct {
	Guidelines string `mapstructure:"guidelines"`
}

type GenerationConfig struct {
	MaxOutputTokens int32         `mapstructure:"max_output_tokens"`
	CacheEnabled    bool          `mapstructure:"cache_enabled"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

// CorrectionConfig bounds correction sessions; MaxAttempts 0 leaves termination to the caller
type CorrectionConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

type WorkersConfig struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

type ProvidersConfig struct {
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type OpenAIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type AnthropicConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Database       string `mapstructure:"database"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MaxConns       int32  `mapstructure:"max_conns"`
	MinConns       int32  `mapstructure:"min_conns"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type SecurityConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file path
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that would otherwise fail at the first generation
func (c *Config) Validate() error {
	models := []struct {
		key string
		id  string
	}{
		{"models.fast_sql_generation_model", c.Models.FastSQLGeneration},
		{"models.fine_sql_generation_model", c.Models.FineSQLGeneration},
		{"models.validation_model_id", c.Models.Validation},
		{"models.sql_correction_model_id", c.Models.SQLCorrection},
	}
	for _, m := range models {
		if m.id == "" {
			return fmt.Errorf("invalid config: %s must not be empty", m.key)
		}
	}
	if c.Generation.MaxOutputTokens <= 0 {
		return fmt.Errorf("invalid config: generation.max_output_tokens must be positive")
	}
	if c.Correction.MaxAttempts < 0 {
		return fmt.Errorf("invalid config: correction.max_attempts must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.middleware_timeout", "110s")

	// Models
	v.SetDefault("models.fast_sql_generation_model", "gemini-pro")
	v.SetDefault("models.fine_sql_generation_model", "text-unicorn")
	v.SetDefault("models.validation_model_id", "gemini-pro")
	v.SetDefault("models.sql_correction_model_id", "gemini-pro")

	// Generation
	v.SetDefault("generation.max_output_tokens", 1024)
	v.SetDefault("generation.cache_enabled", false)
	v.SetDefault("generation.cache_ttl", "10m")

	// Correction
	v.SetDefault("correction.max_attempts", 0)
	v.SetDefault("correction.session_ttl", "30m")

	// Workers
	v.SetDefault("workers.max_concurrent", 5)

	// Database
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "nl2sql")
	v.SetDefault("database.database", "nl2sql")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.migrations_path", "file://migrations")

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Security
	v.SetDefault("security.rate_limit.requests_per_minute", 60)
	v.SetDefault("security.rate_limit.burst", 10)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_age", "168h") // 7 days
	v.SetDefault("logging.rotation_time", "24h")

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func bindEnvVars(v *viper.Viper) {
	// Database
	v.BindEnv("database.password", "POSTGRES_PASSWORD")

	// Redis
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Models
	v.BindEnv("models.fast_sql_generation_model", "FAST_SQL_GENERATION_MODEL")
	v.BindEnv("models.fine_sql_generation_model", "FINE_SQL_GENERATION_MODEL")
	v.BindEnv("models.validation_model_id", "VALIDATION_MODEL_ID")
	v.BindEnv("models.sql_correction_model_id", "SQL_CORRECTION_MODEL_ID")
	v.BindEnv("prompt.guidelines", "PROMPT_GUIDELINES")

	// Providers
	v.BindEnv("providers.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("providers.openai.base_url", "OPENAI_BASE_URL")
	v.BindEnv("providers.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("providers.anthropic.base_url", "ANTHROPIC_BASE_URL")
	v.BindEnv("providers.anthropic.api_key", "ANTHROPIC_API_KEY")
}
