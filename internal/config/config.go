package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scoring rule names accepted in config.
const (
	RuleFlat  = "flat"
	RuleSpeed = "speed"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		WSWriteTimeout string   `yaml:"ws_write_timeout"`
	} `yaml:"server"`
	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Audit struct {
		Sink string `yaml:"sink"` // none, file or redis
		Path string `yaml:"path"`
		Key  string `yaml:"key"`
	} `yaml:"audit"`
	Scoring struct {
		Rule  string `yaml:"rule"` // flat (default) or speed
		Base  int    `yaml:"base"`
		Rate  int    `yaml:"rate"`
		Floor int    `yaml:"floor"`
	} `yaml:"scoring"`
}

// Load reads YAML config from path. A missing file yields the zero config so
// the server can run on defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Scoring.Rule {
	case "", RuleFlat, RuleSpeed:
	default:
		return fmt.Errorf("unknown scoring rule %q", c.Scoring.Rule)
	}
	switch c.Audit.Sink {
	case "", "none", "file", "redis":
	default:
		return fmt.Errorf("unknown audit sink %q", c.Audit.Sink)
	}
	return nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
