package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/scheduler"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	xdgAppName = "dayplan"
	configFile = "config.json"

	DefaultCalendar = "Day Plan"
)

// Environment overrides, also read from a .env file in the working directory.
const (
	EnvCalendar = "DAYPLAN_CALENDAR"
	EnvMeals    = "DAYPLAN_MEALS"
	EnvTimezone = "DAYPLAN_TIMEZONE"
	EnvLogLevel = "DAYPLAN_LOG_LEVEL"
)

type Config struct {
	Calendar string   `json:"calendar"`
	Meals    []string `json:"meals,omitempty"`
	Timezone string   `json:"timezone,omitempty"`
	LogLevel string   `json:"log_level,omitempty"`
	// RetentionDays bounds how long saved plans are kept.
	RetentionDays int `json:"retention_days,omitempty"`
}

func defaults() *Config {
	return &Config{
		Calendar:      DefaultCalendar,
		Meals:         []string{"Breakfast", "Lunch", "Dinner"},
		LogLevel:      "info",
		RetentionDays: 30,
	}
}

// Location resolves Timezone, defaulting to the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func GetXdgHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetXdgHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file, fills defaults and applies environment overrides.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// LoadStored reads the config file with defaults but without environment
// overrides. Use it when the result is going to be saved back.
func LoadStored() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path)
}

// SetCalendar stores name as the default calendar, leaving the other
// settings of the file as they are.
func SetCalendar(name string) error {
	cfg, err := LoadStored()
	if err != nil {
		return err
	}
	cfg.Calendar = name
	return Save(cfg)
}

func loadFile(path string) (*Config, error) {
	cfg := defaults()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Calendar == "" {
		cfg.Calendar = DefaultCalendar
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = defaults().RetentionDays
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	if v := os.Getenv(EnvCalendar); v != "" {
		cfg.Calendar = v
	}
	if v := os.Getenv(EnvMeals); v != "" {
		if strings.EqualFold(v, "none") {
			cfg.Meals = nil
		} else {
			cfg.Meals = scheduler.ParseMealList(v)
		}
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
