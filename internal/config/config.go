package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"PriceKeeper/internal/collector"
	"PriceKeeper/internal/extractor"
	"PriceKeeper/internal/normalize"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// CronParser accepts the six-field expressions used throughout the config.
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Instrument configures the ingestion of one series.
type Instrument struct {
	Name     string            `yaml:"name"`
	URL      string            `yaml:"url"`
	Strategy string            `yaml:"strategy"`
	Output   string            `yaml:"output"`
	Cron     string            `yaml:"cron"`
	Headers  map[string]string `yaml:"headers"`

	Mirror      string `yaml:"mirror"`
	MirrorSheet string `yaml:"mirror_sheet"`

	// DecimalMark is auto, comma or point.
	DecimalMark string `yaml:"decimal_mark"`

	// csv_feed
	DateColumn  string `yaml:"date_column"`
	PriceColumn string `yaml:"price_column"`
	// header_table
	DateKeywords  []string `yaml:"date_keywords"`
	PriceKeywords []string `yaml:"price_keywords"`
	// labeled_row
	Label    string `yaml:"label"`
	MinCells int    `yaml:"min_cells"`
}

// ExtractorOptions maps the strategy knobs onto extractor.Options. An unknown
// decimal mark falls back to auto; Validate reports it.
func (i Instrument) ExtractorOptions() extractor.Options {
	mark, _ := normalize.ParseDecimalMark(i.DecimalMark)
	return extractor.Options{
		DateColumn:    i.DateColumn,
		PriceColumn:   i.PriceColumn,
		DateKeywords:  i.DateKeywords,
		PriceKeywords: i.PriceKeywords,
		Label:         i.Label,
		MinCells:      i.MinCells,
		Decimal:       mark,
	}
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken   string `yaml:"bot_token"`
		ChatID     string `yaml:"chat_id"`
		NotifySkip bool   `yaml:"notify_skip"`
	} `yaml:"telegram"`
	HTTP struct {
		UserAgent string        `yaml:"user_agent"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"http"`
	Schedule struct {
		DefaultCron string `yaml:"default_cron"`
		RunOnStart  bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	DataDir     string       `yaml:"data_dir"`
	Proxy       string       `yaml:"proxy"`
	Instruments []Instrument `yaml:"instruments"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("USER_AGENT"); v != "" {
		cfg.HTTP.UserAgent = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// Defaults
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = collector.DefaultUserAgent
	}
	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = 30 * time.Second
	}
	if cfg.Schedule.DefaultCron == "" {
		cfg.Schedule.DefaultCron = "0 30 18 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = filepath.Join(cfg.DataDir, "pricekeeper.db")
	}
	for i := range cfg.Instruments {
		inst := &cfg.Instruments[i]
		if inst.Output == "" && inst.Name != "" {
			inst.Output = filepath.Join(cfg.DataDir, inst.Name+".csv")
		}
		if inst.Cron == "" {
			inst.Cron = cfg.Schedule.DefaultCron
		}
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when bot_token is set")
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must be positive")
	}
	if len(c.Instruments) == 0 {
		return fmt.Errorf("at least one instrument is required")
	}

	seen := make(map[string]bool, len(c.Instruments))
	files := make(map[string]string)
	claim := func(owner, key, path string) error {
		p := filepath.Clean(path)
		if prev, ok := files[p]; ok {
			return fmt.Errorf("instrument %q: %s %s already used by %s", owner, key, path, prev)
		}
		files[p] = owner
		return nil
	}
	for i, inst := range c.Instruments {
		if inst.Name == "" {
			return fmt.Errorf("instruments[%d].name is required", i)
		}
		if seen[inst.Name] {
			return fmt.Errorf("instrument %q defined twice", inst.Name)
		}
		seen[inst.Name] = true

		if inst.URL == "" {
			return fmt.Errorf("instrument %q: url is required", inst.Name)
		}
		if _, err := extractor.New(extractor.Kind(inst.Strategy), inst.ExtractorOptions()); err != nil {
			return fmt.Errorf("instrument %q: %w", inst.Name, err)
		}
		if inst.Output == "" {
			return fmt.Errorf("instrument %q: output is required", inst.Name)
		}
		if err := claim(inst.Name, "output", inst.Output); err != nil {
			return err
		}
		if inst.Mirror != "" {
			if filepath.Ext(inst.Mirror) != ".xlsx" {
				return fmt.Errorf("instrument %q: mirror must be an .xlsx file", inst.Name)
			}
			if err := claim(inst.Name, "mirror", inst.Mirror); err != nil {
				return err
			}
		}
		if _, err := normalize.ParseDecimalMark(inst.DecimalMark); err != nil {
			return fmt.Errorf("instrument %q: %w", inst.Name, err)
		}
		if inst.MinCells != 0 && inst.MinCells < 2 {
			return fmt.Errorf("instrument %q: min_cells must be at least 2", inst.Name)
		}
		if _, err := CronParser.Parse(inst.Cron); err != nil {
			return fmt.Errorf("instrument %q: invalid cron %q: %w", inst.Name, inst.Cron, err)
		}
	}
	return nil
}

// Find returns the instrument called name.
func (c *Config) Find(name string) (Instrument, bool) {
	for _, inst := range c.Instruments {
		if inst.Name == name {
			return inst, true
		}
	}
	return Instrument{}, false
}
