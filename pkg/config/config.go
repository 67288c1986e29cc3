package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Reasoning backend (OpenAI-compatible, OpenRouter by default)
	LLM LLMConfig

	// Data-retrieval backend
	Data DataConfig

	// Pipeline inputs and artifact location
	Pipeline PipelineConfig

	// Dashboard API
	Port string

	// Scheduler
	ScheduleCron string

	// Logging
	LogLevel  string
	LogFormat string
}

// LLMConfig holds the reasoning backend configuration
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration // per backend call
	Referer     string        // HTTP-Referer header (OpenRouter attribution)
	Title       string        // X-Title header
}

// DataConfig holds the data-retrieval backend configuration
type DataConfig struct {
	Provider  string // marketdata | scrape
	BaseURL   string
	APIKey    string
	Exchange  string // symbol suffix for marketdata, e.g. "US"
	Timeout   time.Duration
	RateLimit int // requests per second
	Workers   int // fetch fan-out
}

// PipelineConfig holds the ticker set and artifact settings
type PipelineConfig struct {
	Tickers           []string
	OutputPath        string
	CategoryOverrides map[string]string // ticker -> Growth|Dividend
}

// Data providers
const (
	ProviderMarketData = "marketdata"
	ProviderScrape     = "scrape"
)

// DefaultTickers is the tracked list when TICKERS is not set
const DefaultTickers = "DUOL,CMG,ADBE,MELI,CRWV,CRM,SPGI,EFX,NFLX,ASML,MA"

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads configuration after loading envFile (or the default .env search path when empty)
func LoadFrom(envFile string) (*Config, error) {
	cfg, err := load(envFile)
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := cfg.validateBackends(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithoutBackends reads configuration for commands that only read the artifact.
// Reasoning and data backend credentials are not required.
func LoadWithoutBackends(envFile string) (*Config, error) {
	cfg, err := load(envFile)
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// load builds the config from the environment; a value that does not parse is a ConfigurationError
func load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		loadEnvFile()
	}

	overrides, err := parseOverrides(getEnv("CATEGORY_OVERRIDES", ""))
	if err != nil {
		return nil, err
	}

	env := &envReader{}
	cfg := &Config{
		Env: getEnv("ENV", "development"),

		LLM: LLMConfig{
			BaseURL:     getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			APIKey:      getEnv("OPENROUTER_API_KEY", ""),
			Model:       getEnv("OPENROUTER_MODEL", ""),
			Temperature: env.float("LLM_TEMPERATURE", 0.1),
			Timeout:     env.duration("LLM_TIMEOUT", "2m"),
			Referer:     getEnv("LLM_REFERER", "https://github.com/josephcarlson/stock-tracker"),
			Title:       getEnv("LLM_TITLE", "Joseph Carlson Stock Tracker"),
		},

		Data: DataConfig{
			Provider:  getEnv("DATA_PROVIDER", ProviderMarketData),
			BaseURL:   getEnv("DATA_BASE_URL", "https://eodhd.com/api"),
			APIKey:    getEnv("DATA_API_KEY", ""),
			Exchange:  getEnv("DATA_EXCHANGE", "US"),
			Timeout:   env.duration("DATA_TIMEOUT", "15s"),
			RateLimit: env.int("DATA_RATE_LIMIT", 5),
			Workers:   env.int("FETCH_WORKERS", 4),
		},

		Pipeline: PipelineConfig{
			Tickers:           splitList(getEnv("TICKERS", DefaultTickers)),
			OutputPath:        getEnv("OUTPUT_PATH", filepath.Join("output", "stocks.json")),
			CategoryOverrides: overrides,
		},

		Port:         getEnv("PORT", "8089"),
		ScheduleCron: getEnv("SCHEDULE_CRON", "0 0 18 * * 1-5"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
	if env.err != nil {
		return nil, env.err
	}

	return cfg, nil
}

// validate checks the settings every command needs
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return &ConfigurationError{Field: "ENV", Reason: "must be one of: development, staging, production"}
	}

	if len(c.Pipeline.Tickers) == 0 {
		return &ConfigurationError{Field: "TICKERS", Reason: "at least one ticker is required"}
	}
	if c.Pipeline.OutputPath == "" {
		return &ConfigurationError{Field: "OUTPUT_PATH", Reason: "is required"}
	}

	return nil
}

// validateBackends checks the reasoning and data backends a pipeline run calls
func (c *Config) validateBackends() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}

	switch c.Data.Provider {
	case ProviderMarketData:
		if c.Data.APIKey == "" {
			return &ConfigurationError{Field: "DATA_API_KEY", Reason: "is required for the marketdata provider"}
		}
	case ProviderScrape:
	default:
		return &ConfigurationError{Field: "DATA_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", c.Data.Provider)}
	}
	if c.Data.BaseURL == "" {
		return &ConfigurationError{Field: "DATA_BASE_URL", Reason: "is required"}
	}
	if c.Data.Timeout <= 0 {
		return &ConfigurationError{Field: "DATA_TIMEOUT", Reason: "must be positive"}
	}
	if c.Data.Workers < 1 {
		return &ConfigurationError{Field: "FETCH_WORKERS", Reason: "must be at least 1"}
	}

	return nil
}

// Validate checks the reasoning backend settings. Every pipeline run depends on them,
// so the orchestrator calls this again before any stage starts.
func (l LLMConfig) Validate() error {
	if l.BaseURL == "" {
		return &ConfigurationError{Field: "OPENROUTER_BASE_URL", Reason: "is required"}
	}
	if l.APIKey == "" {
		return &ConfigurationError{Field: "OPENROUTER_API_KEY", Reason: "is required"}
	}
	if l.Model == "" {
		return &ConfigurationError{Field: "OPENROUTER_MODEL", Reason: "is required"}
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return &ConfigurationError{Field: "LLM_TEMPERATURE", Reason: "must be within [0, 2]"}
	}
	if l.Timeout <= 0 {
		return &ConfigurationError{Field: "LLM_TIMEOUT", Reason: "must be positive"}
	}
	return nil
}

// Masked returns a copy with secrets hidden, for printing
func (c *Config) Masked() Config {
	out := *c
	out.LLM.APIKey = mask(c.LLM.APIKey)
	out.Data.APIKey = mask(c.Data.APIKey)
	return out
}

// ConfigurationError reports a missing or invalid setting
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"automation/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue, &ConfigurationError{Field: key, Reason: fmt.Sprintf("%q is not an integer", valueStr)}
	}

	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return defaultValue, &ConfigurationError{Field: key, Reason: fmt.Sprintf("%q is not a number", valueStr)}
	}

	return value, nil
}

func getEnvAsDuration(key string, defaultValue string) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil {
		fallback, _ := time.ParseDuration(defaultValue)
		return fallback, &ConfigurationError{Field: key, Reason: fmt.Sprintf("%q is not a duration (e.g. 30s, 2m)", valueStr)}
	}

	return duration, nil
}

// envReader reads typed values and keeps the first parse failure
type envReader struct {
	err error
}

func (r *envReader) int(key string, defaultValue int) int {
	v, err := getEnvAsInt(key, defaultValue)
	r.keep(err)
	return v
}

func (r *envReader) float(key string, defaultValue float64) float64 {
	v, err := getEnvAsFloat(key, defaultValue)
	r.keep(err)
	return v
}

func (r *envReader) duration(key string, defaultValue string) time.Duration {
	v, err := getEnvAsDuration(key, defaultValue)
	r.keep(err)
	return v
}

func (r *envReader) keep(err error) {
	if r.err == nil {
		r.err = err
	}
}

// splitList splits a comma separated ticker list, uppercasing entries and dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseOverrides parses "CMG:Growth,MA:Dividend"
func parseOverrides(raw string) (map[string]string, error) {
	overrides := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		ticker, category, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, &ConfigurationError{Field: "CATEGORY_OVERRIDES", Reason: fmt.Sprintf("entry %q is not TICKER:Category", pair)}
		}
		category = strings.TrimSpace(category)
		if category != "Growth" && category != "Dividend" {
			return nil, &ConfigurationError{Field: "CATEGORY_OVERRIDES", Reason: fmt.Sprintf("category %q must be Growth or Dividend", category)}
		}
		overrides[strings.ToUpper(strings.TrimSpace(ticker))] = category
	}
	return overrides, nil
}

func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-4)
}
