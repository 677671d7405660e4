package infra

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the whole application configuration. Secrets are overridden
// from the environment after the file is loaded; keys never live in YAML
// committed to disk by default.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		Binance struct {
			APIKey     string `yaml:"api_key"`
			SecretKey  string `yaml:"secret_key"`
			UseTestnet bool   `yaml:"use_testnet"`
			StreamURL  string `yaml:"stream_url"`
		} `yaml:"binance"`
	} `yaml:"api"`

	Trading struct {
		FillPollIntervalMS int `yaml:"fill_poll_interval_ms"`
		FillTimeoutSec     int `yaml:"fill_timeout_sec"`
		FirstSamplePollMS  int `yaml:"first_sample_poll_ms"`
		KeepAliveSec       int `yaml:"keep_alive_sec"`
	} `yaml:"trading"`

	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Trading.FillPollIntervalMS == 0 {
		c.Trading.FillPollIntervalMS = 10
	}
	if c.Trading.FillTimeoutSec == 0 {
		c.Trading.FillTimeoutSec = 60
	}
	if c.Trading.FirstSamplePollMS == 0 {
		c.Trading.FirstSamplePollMS = 100
	}
	if c.Trading.KeepAliveSec == 0 {
		c.Trading.KeepAliveSec = 25
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.API.Binance.StreamURL != "" &&
		!strings.HasPrefix(c.API.Binance.StreamURL, "ws://") && !strings.HasPrefix(c.API.Binance.StreamURL, "wss://") {
		return fmt.Errorf("invalid Binance stream URL: %s", c.API.Binance.StreamURL)
	}
	if c.Trading.FillPollIntervalMS <= 0 {
		return fmt.Errorf("fill poll interval must be positive")
	}
	if c.Trading.FillTimeoutSec <= 0 {
		return fmt.Errorf("fill timeout must be positive")
	}
	if c.Trading.FirstSamplePollMS <= 0 {
		return fmt.Errorf("first sample poll interval must be positive")
	}
	if c.Trading.KeepAliveSec <= 0 {
		return fmt.Errorf("keep-alive interval must be positive")
	}
	return nil
}

// FillPollInterval returns the fill-polling interval as a duration.
func (c *Config) FillPollInterval() time.Duration {
	return time.Duration(c.Trading.FillPollIntervalMS) * time.Millisecond
}

// FillTimeout returns the fill-wait deadline as a duration.
func (c *Config) FillTimeout() time.Duration {
	return time.Duration(c.Trading.FillTimeoutSec) * time.Second
}

// FirstSamplePoll returns the activation poll interval as a duration.
func (c *Config) FirstSamplePoll() time.Duration {
	return time.Duration(c.Trading.FirstSamplePollMS) * time.Millisecond
}

// overrideWithEnv replaces secrets with environment values when present.
// The .env file (original deployment habit) is loaded by the bootstrap
// before this runs.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("API_KEY"); key != "" {
		cfg.API.Binance.APIKey = key
	}
	if secret := os.Getenv("API_SECRET"); secret != "" {
		cfg.API.Binance.SecretKey = secret
	}
}
