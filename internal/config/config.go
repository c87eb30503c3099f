package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Level string `yaml:"level" default:"INFO"`
	File  string `yaml:"file"`
}

// FirewallConfig has no tick period or log size: both are fixed by the
// engine.
type FirewallConfig struct {
	// Enabled is the monitoring state at start.
	Enabled bool `yaml:"enabled" default:"true"`

	// Provider selects where the seed rules come from: builtin, fortigate
	// or mariadb.
	Provider    string `yaml:"provider" default:"builtin"`
	RulesFile   string `yaml:"rules_file"`
	DSN         string `yaml:"dsn"`
	CatalogFile string `yaml:"catalog_file"`
}

type ScanConfig struct {
	Delay time.Duration `yaml:"delay" default:"100ms"`
}

type AIConfig struct {
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model" default:"gemini-2.5-flash"`
	CacheTTL time.Duration `yaml:"cache_ttl" default:"10m"`
}

type Config struct {
	Listen   string         `yaml:"listen" default:"127.0.0.1:8080"`
	Debug    bool           `yaml:"debug"`
	Log      LogConfig      `yaml:"log"`
	Firewall FirewallConfig `yaml:"firewall"`
	Scan     ScanConfig     `yaml:"scan"`
	AI       AIConfig       `yaml:"ai"`
}

// Load returns the defaults overlaid with the YAML file at path, if any.
// The API key falls back to the API_KEY and GEMINI_API_KEY environment
// variables.
func Load(path string) (*Config, error) {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("failed to set config defaults: %w", err)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Unknown keys are rejected so a stale setting does not pass silently.
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("API_KEY")
	}
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return c, c.Validate()
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Firewall.Provider) {
	case "builtin":
	case "fortigate":
		if c.Firewall.RulesFile == "" {
			return fmt.Errorf("rules file path must be provided for fortigate provider")
		}
	case "mariadb":
		if c.Firewall.DSN == "" {
			return fmt.Errorf("database connection string must be provided for mariadb provider")
		}
	default:
		return fmt.Errorf("unknown rule provider: %s", c.Firewall.Provider)
	}
	if c.Scan.Delay < 0 {
		return fmt.Errorf("scan delay cannot be negative")
	}
	return nil
}
