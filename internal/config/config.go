package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/store"
)

// EnvConfigPath names the environment variable that overrides the default config path.
const EnvConfigPath = "JOBSCOUT_CONFIG"

// DefaultPath is used when neither --config nor JOBSCOUT_CONFIG is set.
const DefaultPath = "config.yaml"

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	defaultOpenAIBaseURL = "https://api.openai.com/v1"
)

// Config is the root configuration for jobscout.
type Config struct {
	DataDir      string
	Storage      StorageConfig
	HTTP         HTTPConfig
	Crawl        CrawlConfig
	Enrichment   EnrichmentConfig
	AI           AIConfig
	Schedule     ScheduleConfig
	Notification NotificationConfig
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver     string // "file", "sqlite" or "memory"
	SQLitePath string // defaults to <data_dir>/jobscout.db
}

// HTTPConfig holds the crawler client defaults.
type HTTPConfig struct {
	Timeout    time.Duration // per attempt
	MaxRetries int
}

// CrawlConfig holds the default crawl filters.
type CrawlConfig struct {
	Sources    []model.Source
	Keywords   []string
	Locations  []string
	Experience string
	Limit      int
	PageDelay  map[string]time.Duration // per-source overrides of the page throttle
}

// Options converts the crawl defaults into model.CrawlOptions.
func (c CrawlConfig) Options() model.CrawlOptions {
	return model.CrawlOptions{
		Keywords:   c.Keywords,
		Locations:  c.Locations,
		Experience: c.Experience,
		Limit:      c.Limit,
	}
}

// EnrichmentConfig controls detail loading.
type EnrichmentConfig struct {
	Delay time.Duration // gap between fetched records
}

// AIConfig selects the chat model backend.
type AIConfig struct {
	Provider    string // "ollama" or "openai"
	BaseURL     string
	Model       string
	APIKey      string // expanded from env var by Load
	Temperature float64
	Timeout     time.Duration // whole-stream timeout; 0 means none
}

// Configured reports whether enough is set to open a chat.
func (a AIConfig) Configured() bool {
	return a.BaseURL != "" && a.Model != ""
}

// ScheduleConfig drives the start command.
type ScheduleConfig struct {
	Interval         time.Duration
	Pause            time.Duration // gap between the tasks of one cycle
	EnrichAfterCrawl bool
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log", "console" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	DataDir      string             `yaml:"data_dir"`
	Storage      rawStorageConfig   `yaml:"storage"`
	HTTP         rawHTTPConfig      `yaml:"http"`
	Crawl        rawCrawlConfig     `yaml:"crawl"`
	Enrichment   rawEnrichment      `yaml:"enrichment"`
	AI           rawAIConfig        `yaml:"ai"`
	Schedule     rawScheduleConfig  `yaml:"schedule"`
	Notification NotificationConfig `yaml:"notification"`
}

type rawStorageConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
}

type rawHTTPConfig struct {
	Timeout    string `yaml:"timeout"`
	MaxRetries *int   `yaml:"max_retries"`
}

type rawCrawlConfig struct {
	Sources    []string          `yaml:"sources"`
	Keywords   []string          `yaml:"keywords"`
	Locations  []string          `yaml:"locations"`
	Experience string            `yaml:"experience"`
	Limit      int               `yaml:"limit"`
	PageDelay  map[string]string `yaml:"page_delay"`
}

type rawEnrichment struct {
	Delay string `yaml:"delay"`
}

type rawAIConfig struct {
	Provider    string   `yaml:"provider"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	Temperature *float64 `yaml:"temperature"`
	Timeout     string   `yaml:"timeout"`
}

type rawScheduleConfig struct {
	Interval         string `yaml:"interval"`
	Pause            string `yaml:"pause"`
	EnrichAfterCrawl bool   `yaml:"enrich_after_crawl"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{
		DataDir: "data",
		Storage: StorageConfig{Driver: store.DriverFile},
		HTTP:    HTTPConfig{Timeout: 30 * time.Second, MaxRetries: 3},
		Crawl: CrawlConfig{
			Sources:   append([]model.Source(nil), model.AllSources...),
			PageDelay: map[string]time.Duration{},
		},
		Enrichment: EnrichmentConfig{Delay: 500 * time.Millisecond},
		AI:         AIConfig{Provider: ProviderOllama},
		Schedule:   ScheduleConfig{Interval: time.Hour, Pause: 5 * time.Second},
		Notification: NotificationConfig{
			Type: "console",
		},
	}
	applyAIEnv(&cfg.AI)
	return cfg
}

// ResolvePath picks the config file: flag value, then JOBSCOUT_CONFIG, then
// ./config.yaml. explicit reports whether the caller named the file.
func ResolvePath(flag string) (path string, explicit bool) {
	if flag != "" {
		return flag, true
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, true
	}
	return DefaultPath, false
}

// LoadOrDefault loads path, falling back to Default when the implicit default
// file does not exist. A missing file the user named is an error.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	if raw.DataDir != "" {
		cfg.DataDir = raw.DataDir
	}
	if raw.Storage.Driver != "" {
		cfg.Storage.Driver = raw.Storage.Driver
	}
	cfg.Storage.SQLitePath = raw.Storage.SQLitePath

	if cfg.HTTP.Timeout, err = parseDuration("http.timeout", raw.HTTP.Timeout, cfg.HTTP.Timeout); err != nil {
		return nil, err
	}
	if raw.HTTP.MaxRetries != nil {
		cfg.HTTP.MaxRetries = *raw.HTTP.MaxRetries
	}

	if len(raw.Crawl.Sources) > 0 {
		cfg.Crawl.Sources = cfg.Crawl.Sources[:0]
		for _, name := range raw.Crawl.Sources {
			src, err := model.ParseSource(name)
			if err != nil {
				return nil, fmt.Errorf("parse crawl.sources: %w", err)
			}
			cfg.Crawl.Sources = append(cfg.Crawl.Sources, src)
		}
	}
	cfg.Crawl.Keywords = raw.Crawl.Keywords
	cfg.Crawl.Locations = raw.Crawl.Locations
	cfg.Crawl.Experience = raw.Crawl.Experience
	cfg.Crawl.Limit = raw.Crawl.Limit
	for key, rawDelay := range raw.Crawl.PageDelay {
		d, err := time.ParseDuration(rawDelay)
		if err != nil {
			return nil, fmt.Errorf("parse crawl.page_delay[%q]: %w", key, err)
		}
		cfg.Crawl.PageDelay[key] = d
	}

	if cfg.Enrichment.Delay, err = parseDuration("enrichment.delay", raw.Enrichment.Delay, cfg.Enrichment.Delay); err != nil {
		return nil, err
	}

	ai := AIConfig{
		Provider: strings.ToLower(raw.AI.Provider),
		BaseURL:  raw.AI.BaseURL,
		Model:    raw.AI.Model,
		APIKey:   raw.AI.APIKey,
	}
	if ai.Provider == "" {
		ai.Provider = ProviderOllama
	}
	if raw.AI.Temperature != nil {
		ai.Temperature = *raw.AI.Temperature
	}
	if ai.Timeout, err = parseDuration("ai.timeout", raw.AI.Timeout, 0); err != nil {
		return nil, err
	}
	if ai.Provider == ProviderOllama {
		applyAIEnv(&ai)
		if raw.AI.Temperature != nil {
			ai.Temperature = *raw.AI.Temperature
		}
	}
	if ai.Provider == ProviderOpenAI && ai.BaseURL == "" {
		ai.BaseURL = defaultOpenAIBaseURL
	}
	cfg.AI = ai

	if cfg.Schedule.Interval, err = parseDuration("schedule.interval", raw.Schedule.Interval, cfg.Schedule.Interval); err != nil {
		return nil, err
	}
	if cfg.Schedule.Pause, err = parseDuration("schedule.pause", raw.Schedule.Pause, cfg.Schedule.Pause); err != nil {
		return nil, err
	}
	cfg.Schedule.EnrichAfterCrawl = raw.Schedule.EnrichAfterCrawl

	if raw.Notification.Type != "" {
		cfg.Notification = raw.Notification
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyAIEnv fills unset Ollama settings from OLLAMA_BASE_URL, OLLAMA_MODEL
// and OLLAMA_TEMPERATURE.
func applyAIEnv(ai *AIConfig) {
	if ai.BaseURL == "" {
		ai.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if ai.Model == "" {
		ai.Model = os.Getenv("OLLAMA_MODEL")
	}
	if t, err := strconv.ParseFloat(os.Getenv("OLLAMA_TEMPERATURE"), 64); err == nil {
		ai.Temperature = t
	}
}

func parseDuration(field, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, raw, err)
	}
	return d, nil
}

func validate(cfg *Config) error {
	switch cfg.Storage.Driver {
	case store.DriverFile, store.DriverSQLite, store.DriverMemory:
	default:
		return fmt.Errorf("storage.driver must be one of file, sqlite, memory, got %q", cfg.Storage.Driver)
	}

	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must not be negative, got %d", cfg.HTTP.MaxRetries)
	}
	if cfg.Crawl.Limit < 0 {
		return fmt.Errorf("crawl.limit must not be negative, got %d", cfg.Crawl.Limit)
	}
	if cfg.Schedule.Interval <= 0 {
		return fmt.Errorf("schedule.interval must be positive, got %v", cfg.Schedule.Interval)
	}
	if cfg.Schedule.Pause < 0 {
		return fmt.Errorf("schedule.pause must not be negative, got %v", cfg.Schedule.Pause)
	}

	switch cfg.Notification.Type {
	case "log", "console":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("notification.type must be log, console or slack, got %q", cfg.Notification.Type)
	}

	switch cfg.AI.Provider {
	case ProviderOllama:
	case ProviderOpenAI:
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.provider is \"openai\"")
		}
	default:
		return fmt.Errorf("ai.provider must be ollama or openai, got %q", cfg.AI.Provider)
	}

	return nil
}
