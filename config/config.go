// Package config loads the application configuration from a JSON or YAML
// file with optional environment variable overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/symposia/revdist/infra/notify"
)

type Config struct {
	Store    StoreConfig    `json:"store"`
	Logging  LoggingConfig  `json:"logging"`
	Metrics  MetricsConfig  `json:"metrics"`
	API      APIConfig      `json:"api"`
	Notifier NotifierConfig `json:"notifier"`
}

// Load reads the configuration file at path. Environment variables prefixed
// with R_ override file values, with __ separating nested keys
// (R_API__ADDR overrides api.addr).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("R_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "r_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Store.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.API.SetDefaults()
	cfg.Notifier.SetDefaults()
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.API.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Notifier.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NotifierConfig selects how run completions are delivered.
type NotifierConfig struct {
	// Type is "log" or "mqtt".
	Type string        `json:"type"`
	MQTT notify.Config `json:"mqtt"`
}

// SetDefaults applies sane defaults.
func (c *NotifierConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "log"
	}
}

// Validate checks mandatory fields.
func (c NotifierConfig) Validate() error {
	switch c.Type {
	case "log":
		return nil
	case "mqtt":
		if c.MQTT.Broker == "" {
			return fmt.Errorf("notifier: mqtt broker is required")
		}
		return nil
	default:
		return fmt.Errorf("notifier: unknown type %s", c.Type)
	}
}
