package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path     string `yaml:"path"`
	LogLevel string `yaml:"log_level"`
}

type RemoteConfig struct {
	URL           string `yaml:"url"`
	SigningSecret string `yaml:"signing_secret"` // base64
	ClientVersion string `yaml:"client_version"`
}

type PrivacyConfig struct {
	Epsilon            float64 `yaml:"epsilon"`
	SensitivityMinutes float64 `yaml:"sensitivity_minutes"`
}

type TrackerConfig struct {
	ExitDelayMinutes  int `yaml:"exit_delay_minutes"`
	MinSessionMinutes int `yaml:"min_session_minutes"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Remote   RemoteConfig   `yaml:"remote"`
	Privacy  PrivacyConfig  `yaml:"privacy"`
	Tracker  TrackerConfig  `yaml:"tracker"`
}

func defaults() *Config {
	return &Config{
		Server:   ServerConfig{Address: "0.0.0.0", Port: 8090},
		Database: DatabaseConfig{Path: "data/workinghours.db", LogLevel: "warn"},
		Remote:   RemoteConfig{ClientVersion: "dev"},
		Privacy:  PrivacyConfig{Epsilon: 1.0, SensitivityMinutes: 60},
		Tracker:  TrackerConfig{ExitDelayMinutes: 5, MinSessionMinutes: 5},
	}
}

// Load reads the YAML config file if present and applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("unmarshal yaml: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("REMOTE_URL"); v != "" {
		cfg.Remote.URL = v
	}
	if v := os.Getenv("SIGNING_SECRET"); v != "" {
		cfg.Remote.SigningSecret = v
	}

	return cfg, nil
}
