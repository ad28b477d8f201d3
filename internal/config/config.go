package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Feed is one RSS endpoint to poll.
type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Config holds the feed list and the ticker registry. Secrets and DSNs stay
// in the environment; this file is the non-secret part of the setup.
type Config struct {
	Feeds []Feed `yaml:"feeds"`

	// Tickers maps a canonical symbol to its match aliases, e.g.
	// AAPL -> ["Apple", "Apple Inc"]. Symbols are normalized to uppercase
	// on load.
	Tickers map[string][]string `yaml:"tickers"`

	DigestLimit int `yaml:"digest_limit"`
	DigestHours int `yaml:"digest_hours"`
}

// Path returns the config file location from the environment or the default.
func Path() string {
	if p := os.Getenv("NEWSBAG_CONFIG"); p != "" {
		return p
	}
	return "./config.yaml"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.DigestLimit == 0 {
		cfg.DigestLimit = 10
	}
	if cfg.DigestHours == 0 {
		cfg.DigestHours = 24
	}

	normalized := make(map[string][]string, len(cfg.Tickers))
	for symbol, aliases := range cfg.Tickers {
		sym := strings.ToUpper(strings.TrimSpace(symbol))
		if sym == "" {
			return nil, fmt.Errorf("empty ticker symbol in registry")
		}
		normalized[sym] = aliases
	}
	cfg.Tickers = normalized

	for i, f := range cfg.Feeds {
		if f.Name == "" || f.URL == "" {
			return nil, fmt.Errorf("feed %d: name and url are required", i)
		}
	}

	return cfg, nil
}
