package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"agendacal/internal/model"
)

// FeedConfig describes a single ICS appointment feed.
type FeedConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration. The timezone and
// locale here are the caller-boundary defaults the calendar engine
// itself never assumes; every API call may override them.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the default IANA display zone for all views.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Locale selects day/month label language (labels only, never
	// arithmetic).
	Locale string `yaml:"locale" json:"locale"`

	// WeekHourStart / WeekHourEnd bound the visible hour axis of the
	// week view.
	WeekHourStart int `yaml:"week_hour_start" json:"week_hour_start"`
	WeekHourEnd   int `yaml:"week_hour_end" json:"week_hour_end"`

	// MonthDisplayCap is how many events a month cell lists before the
	// rest collapses into an overflow count.
	MonthDisplayCap int `yaml:"month_display_cap" json:"month_display_cap"`

	// PastWindowDays widens the agenda list to include recent past
	// appointments. 0 shows the future only.
	PastWindowDays int `yaml:"past_window_days" json:"past_window_days"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// periodic feed refresh.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// HorizonDays is the default number of future days covered when
	// expanding recurring appointments.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// Feeds is the list of subscribed ICS sources.
	Feeds []FeedConfig `yaml:"feeds" json:"feeds"`

	// Appointments are raw records declared inline in the config file,
	// merged with feed occurrences. Start/end may be naive wall-clock
	// strings; they are resolved in the configured timezone.
	Appointments []model.Appointment `yaml:"appointments,omitempty" json:"appointments,omitempty"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          "127.0.0.1:8080",
		Timezone:        "America/Sao_Paulo",
		Locale:          "pt-BR",
		WeekHourStart:   7,
		WeekHourEnd:     20,
		MonthDisplayCap: 3,
		PastWindowDays:  0,
		RefreshCron:     "*/15 * * * *",
		HorizonDays:     30,
		Feeds:           []FeedConfig{},
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "America/Sao_Paulo"
	}
	if c.Locale == "" {
		c.Locale = "pt-BR"
	}
	if c.WeekHourStart == 0 && c.WeekHourEnd == 0 {
		c.WeekHourStart = 7
		c.WeekHourEnd = 20
	}
	if c.MonthDisplayCap <= 0 {
		c.MonthDisplayCap = 3
	}
	if c.PastWindowDays < 0 {
		c.PastWindowDays = 0
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 30
	}
	if c.Feeds == nil {
		c.Feeds = []FeedConfig{}
	}
}

// Location resolves the configured timezone. An unknown zone is a
// configuration error and is surfaced, never silently defaulted away.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".agendacal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
