package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server" jsonschema:"description=Console server configuration"`
	Remote    RemoteConfig    `yaml:"remote" json:"remote" jsonschema:"description=Remote news store"`
	Generator GeneratorConfig `yaml:"generator" json:"generator" jsonschema:"description=News generation webhook"`
	Publish   PublishConfig   `yaml:"publish" json:"publish" jsonschema:"description=Publish narration timing"`
	Schedule  ScheduleConfig  `yaml:"schedule" json:"schedule" jsonschema:"description=Schedule form options"`
	Edit      EditConfig      `yaml:"edit" json:"edit" jsonschema:"description=Inline editing"`
	Journal   JournalConfig   `yaml:"journal" json:"journal" jsonschema:"description=Local activity journal"`
}

// ServerConfig holds http server settings
type ServerConfig struct {
	Listen    string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	BaseURL   string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8080,description=Base URL for RSS links"`
	PageTitle string        `yaml:"page_title" json:"page_title" jsonschema:"default=AI News,description=Console page title"`
}

// RemoteConfig points to the news store
type RemoteConfig struct {
	URL     string        `yaml:"url" json:"url" jsonschema:"required,description=Base URL of the remote news store"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Timeout of a single store call"`
}

// GeneratorConfig holds the generation webhook
type GeneratorConfig struct {
	WebhookURL string        `yaml:"webhook_url" json:"webhook_url" jsonschema:"description=Generation webhook URL, generation is disabled if empty"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Generation request timeout"`
}

// PublishConfig controls the narrated publish timeline
type PublishConfig struct {
	Steps  []time.Duration `yaml:"steps" json:"steps" jsonschema:"description=Delays before each scripted status line"`
	Settle time.Duration   `yaml:"settle" json:"settle" jsonschema:"default=800ms,description=Delay before the final state is shown"`
}

// ScheduleConfig defines what the schedule form offers
type ScheduleConfig struct {
	Days           []string `yaml:"days" json:"days" jsonschema:"description=Selectable days"`
	Times          []string `yaml:"times" json:"times" jsonschema:"description=Selectable times"`
	TimezoneLabel  string   `yaml:"timezone_label" json:"timezone_label" jsonschema:"default=CET,description=Timezone label shown next to times"`
	Impacts        []string `yaml:"impacts" json:"impacts" jsonschema:"description=Selectable calendar impact levels"`
	DefaultImpacts []string `yaml:"default_impacts" json:"default_impacts" jsonschema:"description=Impact levels selected initially"`
	DefaultMode    string   `yaml:"default_mode" json:"default_mode" jsonschema:"default=calendar,enum=calendar,enum=asset,description=Initial schedule mode"`
	Languages      []string `yaml:"languages" json:"languages" jsonschema:"description=Selectable news languages, the first one is the default"`
}

// EditConfig holds inline edit settings
type EditConfig struct {
	SavedIndicator time.Duration `yaml:"saved_indicator" json:"saved_indicator" jsonschema:"default=2s,description=How long the saved indicator is shown"`
}

// JournalConfig holds the activity journal database
type JournalConfig struct {
	DSN  string `yaml:"dsn" json:"dsn" jsonschema:"default=file:newsdesk.db?cache=shared&mode=rwc&_txlock=immediate,description=Database connection string"`
	Keep int    `yaml:"keep" json:"keep" jsonschema:"default=1000,minimum=0,description=Number of entries kept, 0 keeps everything"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return finalize(&cfg)
}

// Default returns configuration with defaults only, remoteURL is required
func Default(remoteURL string) (*Config, error) {
	cfg := Config{Remote: RemoteConfig{URL: remoteURL}}
	return finalize(&cfg)
}

func finalize(cfg *Config) (*Config, error) {
	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}
	if cfg.Server.PageTitle == "" {
		cfg.Server.PageTitle = "AI News"
	}

	if cfg.Remote.Timeout == 0 {
		cfg.Remote.Timeout = 30 * time.Second
	}
	if cfg.Generator.Timeout == 0 {
		cfg.Generator.Timeout = 30 * time.Second
	}

	if len(cfg.Publish.Steps) == 0 {
		cfg.Publish.Steps = []time.Duration{500 * time.Millisecond, 700 * time.Millisecond,
			600 * time.Millisecond, 500 * time.Millisecond}
	}
	if cfg.Publish.Settle == 0 {
		cfg.Publish.Settle = 800 * time.Millisecond
	}

	if len(cfg.Schedule.Days) == 0 {
		cfg.Schedule.Days = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	}
	if len(cfg.Schedule.Times) == 0 {
		for h := 6; h <= 22; h += 2 {
			cfg.Schedule.Times = append(cfg.Schedule.Times, fmt.Sprintf("%02d:00", h))
		}
	}
	if cfg.Schedule.TimezoneLabel == "" {
		cfg.Schedule.TimezoneLabel = "CET"
	}
	if len(cfg.Schedule.Impacts) == 0 {
		cfg.Schedule.Impacts = []string{"high", "medium", "low"}
	}
	if cfg.Schedule.DefaultImpacts == nil {
		cfg.Schedule.DefaultImpacts = []string{"high"}
	}
	if cfg.Schedule.DefaultMode == "" {
		cfg.Schedule.DefaultMode = "calendar"
	}
	if len(cfg.Schedule.Languages) == 0 {
		cfg.Schedule.Languages = []string{"en", "ru"}
	}

	if cfg.Edit.SavedIndicator == 0 {
		cfg.Edit.SavedIndicator = 2 * time.Second
	}

	if cfg.Journal.DSN == "" {
		cfg.Journal.DSN = "file:newsdesk.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Journal.Keep == 0 {
		cfg.Journal.Keep = 1000
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Remote.URL == "" {
		return fmt.Errorf("remote.url is required")
	}
	if err := checkURL(cfg.Remote.URL); err != nil {
		return fmt.Errorf("remote.url: %w", err)
	}
	if cfg.Generator.WebhookURL != "" {
		if err := checkURL(cfg.Generator.WebhookURL); err != nil {
			return fmt.Errorf("generator.webhook_url: %w", err)
		}
	}

	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Remote.Timeout < 0 || cfg.Generator.Timeout < 0 {
		return fmt.Errorf("remote and generator timeouts must be non-negative")
	}

	for _, d := range cfg.Publish.Steps {
		if d < 0 {
			return fmt.Errorf("publish.steps must be non-negative")
		}
	}
	if cfg.Publish.Settle < 0 {
		return fmt.Errorf("publish.settle must be non-negative")
	}

	if cfg.Schedule.DefaultMode != "calendar" && cfg.Schedule.DefaultMode != "asset" {
		return fmt.Errorf("schedule.default_mode must be calendar or asset, got %q", cfg.Schedule.DefaultMode)
	}
	for _, imp := range cfg.Schedule.DefaultImpacts {
		if !slices.Contains(cfg.Schedule.Impacts, imp) {
			return fmt.Errorf("schedule.default_impacts: unknown impact %q", imp)
		}
	}

	if cfg.Journal.Keep < 0 {
		return fmt.Errorf("journal.keep must be non-negative")
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme in %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

// DefaultLanguage is the language preselected in the console
func (c *Config) DefaultLanguage() string {
	if len(c.Schedule.Languages) == 0 {
		return ""
	}
	return c.Schedule.Languages[0]
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetFullConfig returns the full configuration
func (c *Config) GetFullConfig() *Config {
	return c
}
