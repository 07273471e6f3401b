package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Capital bases.
const (
	CapitalEquity = "equity"
	CapitalCash   = "cash"
	CapitalFixed  = "fixed"
)

// Config holds all application configuration. Broker keys are not part of
// it; they come from the credential store.
type Config struct {
	Broker struct {
		Paper               bool   `yaml:"paper"`
		BaseURL             string `yaml:"base_url"`
		CredentialNamespace string `yaml:"credential_namespace"`
	} `yaml:"broker"`
	Strategy struct {
		PositionLengthDays     int     `yaml:"position_length_days"`
		RebalanceFrequencyDays int     `yaml:"rebalance_frequency_days"`
		CapitalBase            string  `yaml:"capital_base"`
		FundSize               float64 `yaml:"fund_size"`
		OpenMarketAdjust       bool    `yaml:"open_market_adjust"`
		RequireTradable        bool    `yaml:"require_tradable"`
	} `yaml:"strategy"`
	Scraper struct {
		BaseURL     string        `yaml:"base_url"`
		UserAgent   string        `yaml:"user_agent"`
		PageLength  int           `yaml:"page_length"`
		MaxPages    int           `yaml:"max_pages"`
		MaxRetries  int           `yaml:"max_retries"`
		AuthRetries int           `yaml:"auth_retries"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"scraper"`
	Schedule struct {
		StatusCron string `yaml:"status_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"` // empty disables the journal
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Default returns the configuration used for anything the file and the
// environment leave unset.
func Default() *Config {
	cfg := &Config{}
	cfg.Broker.Paper = true
	cfg.Broker.CredentialNamespace = "alpaca"
	cfg.Strategy.PositionLengthDays = 60
	cfg.Strategy.RebalanceFrequencyDays = 7
	cfg.Strategy.CapitalBase = CapitalEquity
	cfg.Scraper.PageLength = 100
	cfg.Scraper.MaxPages = 500
	cfg.Scraper.MaxRetries = 2
	cfg.Scraper.AuthRetries = 2
	cfg.Scraper.Timeout = 30 * time.Second
	cfg.Schedule.StatusCron = "0 0 17 * * 1-5"
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	if v, ok := lookup("SENATE_LONG_PAPER"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SENATE_LONG_PAPER: %w", err)
		}
		c.Broker.Paper = b
	}
	if err := num("POSITION_LENGTH_DAYS", &c.Strategy.PositionLengthDays); err != nil {
		return err
	}
	if err := num("REBALANCE_FREQUENCY_DAYS", &c.Strategy.RebalanceFrequencyDays); err != nil {
		return err
	}
	str("HTTPS_PROXY", &c.Proxy)
	str("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	str("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	str("SQLITE_PATH", &c.Database.SQLitePath)
	str("LOG_LEVEL", &c.Log.Level)
	return nil
}

// TelegramEnabled reports whether both Telegram settings are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Strategy.PositionLengthDays <= 0 {
		return fmt.Errorf("strategy.position_length_days must be positive")
	}
	if c.Strategy.RebalanceFrequencyDays <= 0 {
		return fmt.Errorf("strategy.rebalance_frequency_days must be positive")
	}
	switch c.Strategy.CapitalBase {
	case CapitalEquity, CapitalCash:
	case CapitalFixed:
		if c.Strategy.FundSize <= 0 {
			return fmt.Errorf("strategy.fund_size must be positive with capital_base %q", CapitalFixed)
		}
	default:
		return fmt.Errorf("strategy.capital_base %q is not one of equity, cash, fixed", c.Strategy.CapitalBase)
	}
	if c.Scraper.PageLength < 1 || c.Scraper.PageLength > 100 {
		return fmt.Errorf("scraper.page_length must be between 1 and 100")
	}
	if c.Scraper.MaxPages < 0 || c.Scraper.MaxRetries < 0 || c.Scraper.AuthRetries < 0 {
		return fmt.Errorf("scraper limits must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Broker.CredentialNamespace == "" {
		return fmt.Errorf("broker.credential_namespace is required")
	}
	return nil
}
