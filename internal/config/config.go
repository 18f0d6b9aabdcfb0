package config

import (
	"fmt"
	"os"
	"time"

	"competition-service/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Competition struct {
		TTL string `yaml:"ttl"`
	} `yaml:"competition"`
	Draw struct {
		// EarlyBonus is applied to competitions that do not carry their own bonus settings.
		EarlyBonus     domain.EarlyBonusConfig `yaml:"early_bonus"`
		DefaultWinners int                     `yaml:"default_winners"`
	} `yaml:"draw"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate normalizes the draw section and rejects unusable bonus settings.
func (c *Config) Validate() error {
	bonus := &c.Draw.EarlyBonus
	if bonus.MaxMultiplier == 0 {
		bonus.MaxMultiplier = 1
	}
	if bonus.MaxMultiplier < 1 {
		return fmt.Errorf("draw.early_bonus.max_multiplier must be >= 1, got %v", bonus.MaxMultiplier)
	}
	if bonus.DecayFunction == "" {
		bonus.DecayFunction = domain.DecayLinear
	}
	decay, err := domain.ParseDecayFunction(string(bonus.DecayFunction))
	if err != nil {
		return fmt.Errorf("draw.early_bonus: %w", err)
	}
	bonus.DecayFunction = decay
	if bonus.Window < 0 {
		return fmt.Errorf("draw.early_bonus.window must not be negative")
	}
	if c.Draw.DefaultWinners < 0 {
		return fmt.Errorf("draw.default_winners must not be negative")
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
