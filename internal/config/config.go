package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the manara API configuration.
type Config struct {
	HTTP            HTTPConfig            `yaml:"http"`
	Database        DatabaseConfig        `yaml:"database"`
	Storage         StorageConfig         `yaml:"storage"`
	Completion      CompletionConfig      `yaml:"completion"`
	Embedding       EmbeddingConfig       `yaml:"embedding"`
	Retrieval       RetrievalConfig       `yaml:"retrieval"`
	Index           IndexConfig           `yaml:"index"`
	Recommendations RecommendationsConfig `yaml:"recommendations"`
	Planning        PlanningConfig        `yaml:"planning"`
	Conversation    ConversationConfig    `yaml:"conversation"`
	Logging         LoggingConfig         `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig selects where bookings and profiles live.
type StorageConfig struct {
	KeyPrefix       string `yaml:"key_prefix"`
	Driver          string `yaml:"driver"` // valkey, memory (default: valkey)
	BookingTTLHours int    `yaml:"booking_ttl_hours"`
}

// CompletionConfig holds chat completion provider settings.
type CompletionConfig struct {
	Provider          string  `yaml:"provider"`
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
	Model             string  `yaml:"model"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	Temperature       float32 `yaml:"temperature"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unlimited
	Burst             int     `yaml:"burst"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider            string `yaml:"provider"`
	BaseURL             string `yaml:"base_url"`
	APIKey              string `yaml:"api_key"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
	CacheTTLHours       int    `yaml:"cache_ttl_hours"` // 0 = no expiry
}

// RetrievalConfig holds context retrieval settings.
type RetrievalConfig struct {
	DefaultResults  int `yaml:"default_results"`
	OverFetchFactor int `yaml:"over_fetch_factor"`
	BudgetTolerance int `yaml:"budget_tolerance"`
	TimeoutSec      int `yaml:"timeout_sec"`
}

// IndexConfig holds venue index settings.
type IndexConfig struct {
	Name            string `yaml:"name"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
}

// RecommendationsConfig bounds the number of recommendations requested from the model.
type RecommendationsConfig struct {
	MinItems int `yaml:"min_items"`
	MaxItems int `yaml:"max_items"`
}

// PlanningConfig holds day planner defaults.
type PlanningConfig struct {
	LLMEnabled       bool   `yaml:"llm_enabled"`
	DefaultDuration  int    `yaml:"default_duration"`
	DefaultStartTime string `yaml:"default_start_time"`
	DefaultBudget    int    `yaml:"default_budget"`
}

// ConversationConfig bounds stored multi-turn chat history.
type ConversationConfig struct {
	MaxTurns int `yaml:"max_turns"`
	TTLHours int `yaml:"ttl_hours"`
}

// Load reads configuration from a YAML file by environment name (local, docker, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// A local .env file may supply secrets; real environment variables win.
	_ = godotenv.Load()

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{"*"}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "manara:"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "valkey"
	}
	if c.Completion.Provider == "" {
		c.Completion.Provider = "fanar"
	}
	if c.Completion.BaseURL == "" {
		c.Completion.BaseURL = "https://api.fanar.qa/v1"
	}
	if c.Completion.Model == "" {
		c.Completion.Model = "Fanar"
	}
	if c.Completion.TimeoutSec <= 0 {
		c.Completion.TimeoutSec = 30
	}
	if c.Completion.Temperature <= 0 {
		c.Completion.Temperature = 0.7
	}
	if c.Completion.Burst <= 0 {
		c.Completion.Burst = 1
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1024
	}
	if c.Retrieval.DefaultResults <= 0 {
		c.Retrieval.DefaultResults = 10
	}
	if c.Retrieval.OverFetchFactor <= 0 {
		c.Retrieval.OverFetchFactor = 4
	}
	if c.Retrieval.TimeoutSec <= 0 {
		c.Retrieval.TimeoutSec = 30
	}
	if c.Index.Name == "" {
		c.Index.Name = "manara_venues"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Recommendations.MinItems <= 0 {
		c.Recommendations.MinItems = 3
	}
	if c.Recommendations.MaxItems <= 0 {
		c.Recommendations.MaxItems = 4
	}
	if c.Planning.DefaultDuration <= 0 {
		c.Planning.DefaultDuration = 8
	}
	if c.Planning.DefaultStartTime == "" {
		c.Planning.DefaultStartTime = "09:00"
	}
	if c.Planning.DefaultBudget <= 0 {
		c.Planning.DefaultBudget = 150
	}
	if c.Conversation.MaxTurns == 0 {
		c.Conversation.MaxTurns = 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Storage.Driver {
	case "valkey", "memory":
	default:
		return fmt.Errorf("storage.driver must be \"valkey\" or \"memory\", got %q", c.Storage.Driver)
	}
	if c.Completion.RequestsPerSecond < 0 {
		return fmt.Errorf("completion.requests_per_second must not be negative")
	}
	if c.Retrieval.BudgetTolerance < 0 || c.Retrieval.BudgetTolerance > 3 {
		return fmt.Errorf("retrieval.budget_tolerance must be between 0 and 3, got %d", c.Retrieval.BudgetTolerance)
	}
	r := c.Recommendations
	if r.MinItems < 3 || r.MaxItems > 8 || r.MinItems > r.MaxItems {
		return fmt.Errorf("recommendations must satisfy 3 <= min_items <= max_items <= 8, got %d..%d",
			r.MinItems, r.MaxItems)
	}
	if !validClock(c.Planning.DefaultStartTime) {
		return fmt.Errorf("planning.default_start_time must be HH:MM, got %q", c.Planning.DefaultStartTime)
	}
	if c.Conversation.MaxTurns < 2 {
		return fmt.Errorf("conversation.max_turns must be at least 2, got %d", c.Conversation.MaxTurns)
	}
	if c.Conversation.TTLHours < 0 {
		return fmt.Errorf("conversation.ttl_hours must not be negative")
	}
	return nil
}

// CompletionTimeout returns the per-call completion deadline.
func (c *Config) CompletionTimeout() time.Duration {
	return time.Duration(c.Completion.TimeoutSec) * time.Second
}

// RetrievalTimeout returns the per-call retrieval deadline.
func (c *Config) RetrievalTimeout() time.Duration {
	return time.Duration(c.Retrieval.TimeoutSec) * time.Second
}

// BookingTTL returns how long reservations are kept. Zero keeps them forever.
func (c *Config) BookingTTL() time.Duration {
	return time.Duration(c.Storage.BookingTTLHours) * time.Hour
}

// ConversationTTL returns how long an idle conversation is kept. Zero means no expiry.
func (c *Config) ConversationTTL() time.Duration {
	return time.Duration(c.Conversation.TTLHours) * time.Hour
}

// EmbeddingCacheTTL returns the query embedding cache TTL. Zero means no expiry.
func (c *Config) EmbeddingCacheTTL() time.Duration {
	return time.Duration(c.Embedding.CacheTTLHours) * time.Hour
}

var clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func validClock(s string) bool { return clockRegex.MatchString(s) }

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
