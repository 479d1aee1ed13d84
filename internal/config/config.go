package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment override, e.g. PLANNER_ADVISOR_API_KEY.
const EnvPrefix = "PLANNER_"

const placeholderAPIKey = "YOUR_API_KEY"

// Config represents the application configuration
type Config struct {
	Data      DataConfig       `json:"data"`
	Athlete   AthleteConfig    `json:"athlete" envPrefix:"ATHLETE_"`
	Advisor   AdvisorConfig    `json:"advisor" envPrefix:"ADVISOR_"`
	KeyEvents []KeyEventConfig `json:"key_events"`
	Log       LogConfig        `json:"log" envPrefix:"LOG_"`
}

// DataConfig holds file locations
type DataConfig struct {
	DBPath   string `json:"db_path" env:"DB_PATH"`
	PlanFile string `json:"plan_file" env:"PLAN_FILE"`
}

// AthleteConfig holds athlete-specific settings used as plan defaults
type AthleteConfig struct {
	FTP          float64 `json:"ftp" env:"FTP"`
	WeightKG     float64 `json:"weight_kg" env:"WEIGHT_KG"`
	HoursPerWeek float64 `json:"hours_per_week" env:"HOURS_PER_WEEK"`
	MaxHR        float64 `json:"max_hr" env:"MAX_HR"`
}

// AdvisorConfig holds the settings of the chat-completions service
type AdvisorConfig struct {
	BaseURL        string  `json:"base_url" env:"BASE_URL"`
	Model          string  `json:"model" env:"MODEL"`
	APIKey         string  `json:"api_key" env:"API_KEY"`
	TimeoutSeconds int     `json:"timeout_seconds" env:"TIMEOUT_SECONDS"`
	Temperature    float64 `json:"temperature" env:"TEMPERATURE"`
}

// Timeout returns the per-call deadline for the advisor
func (a AdvisorConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// KeyEventConfig is a race or target event, date formatted as 2006-01-02
type KeyEventConfig struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Priority string `json:"priority"`
	Type     string `json:"type"`
}

// LogConfig holds logging preferences
type LogConfig struct {
	Level  string `json:"level" env:"LEVEL"`
	Format string `json:"format" env:"FORMAT"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	dir, _ := GetConfigDir()
	return Config{
		Data: DataConfig{
			DBPath:   filepath.Join(dir, "activities.db"),
			PlanFile: filepath.Join(dir, "plan.json"),
		},
		Athlete: AthleteConfig{
			FTP:          250,
			WeightKG:     70,
			HoursPerWeek: 8,
			MaxHR:        185,
		},
		Advisor: AdvisorConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o",
			TimeoutSeconds: 120,
			Temperature:    0.7,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration from path, or ~/.cycling-planner/config.json
// when path is empty, then applies PLANNER_* environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = getConfigPath(); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	if err := ApplyEnv(&cfg, nil); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides cfg from PLANNER_* variables. A nil environ reads
// the process environment.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Data.DBPath == "" {
		c.Data.DBPath = defaults.Data.DBPath
	}
	if c.Data.PlanFile == "" {
		c.Data.PlanFile = defaults.Data.PlanFile
	}
	if c.Athlete.FTP == 0 {
		c.Athlete.FTP = defaults.Athlete.FTP
	}
	if c.Athlete.WeightKG == 0 {
		c.Athlete.WeightKG = defaults.Athlete.WeightKG
	}
	if c.Athlete.HoursPerWeek == 0 {
		c.Athlete.HoursPerWeek = defaults.Athlete.HoursPerWeek
	}
	if c.Athlete.MaxHR == 0 {
		c.Athlete.MaxHR = defaults.Athlete.MaxHR
	}
	if c.Advisor.BaseURL == "" {
		c.Advisor.BaseURL = defaults.Advisor.BaseURL
	}
	if c.Advisor.Model == "" {
		c.Advisor.Model = defaults.Advisor.Model
	}
	if c.Advisor.TimeoutSeconds == 0 {
		c.Advisor.TimeoutSeconds = defaults.Advisor.TimeoutSeconds
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// Save writes the configuration to ~/.cycling-planner/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the configuration to path
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// 0600: the file may hold an API key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Advisor.APIKey = placeholderAPIKey
	example.KeyEvents = []KeyEventConfig{
		{Name: "Gran Fondo", Date: time.Now().AddDate(0, 3, 0).Format(time.DateOnly), Priority: "A", Type: "race"},
	}

	return SaveTo(path, &example)
}

// Validate checks the athlete, advisor and log settings
func (c *Config) Validate() error {
	if c.Athlete.FTP <= 0 {
		return fmt.Errorf("athlete.ftp must be positive, got %v", c.Athlete.FTP)
	}
	if c.Athlete.WeightKG <= 0 {
		return fmt.Errorf("athlete.weight_kg must be positive, got %v", c.Athlete.WeightKG)
	}
	if c.Athlete.HoursPerWeek <= 0 {
		return fmt.Errorf("athlete.hours_per_week must be positive, got %v", c.Athlete.HoursPerWeek)
	}
	if c.Advisor.TimeoutSeconds <= 0 {
		return fmt.Errorf("advisor.timeout_seconds must be positive, got %d", c.Advisor.TimeoutSeconds)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}

	for i, e := range c.KeyEvents {
		if e.Name == "" {
			return fmt.Errorf("key_events[%d].name is required", i)
		}
		if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
			return fmt.Errorf("key_events[%d].date must be YYYY-MM-DD, got %q", i, e.Date)
		}
	}

	return nil
}

// ValidateAdvisor checks the settings needed to call the advisory service
func (c *Config) ValidateAdvisor() error {
	if c.Advisor.APIKey == "" || c.Advisor.APIKey == placeholderAPIKey {
		return errors.New("advisor.api_key is required (or set " + EnvPrefix + "ADVISOR_API_KEY)")
	}
	if c.Advisor.Model == "" {
		return errors.New("advisor.model is required")
	}
	return nil
}

// ParseLevel maps a log level name to a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level must be debug, info, warn or error, got %q", level)
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".cycling-planner"), nil
}
