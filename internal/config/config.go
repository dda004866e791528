// Package config loads the YAML experiment description consumed by the
// expman CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one experiment: where runs land, which hyperparameter
// groups the identifier tracks, and the raw hyperparameters themselves.
type Config struct {
	BaseDir         string         `yaml:"base_dir"`
	Monitored       []string       `yaml:"monitored"`
	Debug           bool           `yaml:"debug"`
	Checkpoint      Checkpoint     `yaml:"checkpoint"`
	Hyperparameters map[string]any `yaml:"hyperparameters"`
}

// Checkpoint configures the metric the checkpoint callback watches.
// Mode is "min" (default) or "max".
type Checkpoint struct {
	Monitor string `yaml:"monitor"`
	Mode    string `yaml:"mode"`
}

// Minimize reports whether improvement means a smaller monitored value.
func (c Checkpoint) Minimize() bool {
	return c.Mode != "max"
}

// Load reads and validates an experiment config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.Hyperparameters) == 0 {
		return fmt.Errorf("hyperparameters must not be empty")
	}
	switch cfg.Checkpoint.Mode {
	case "", "min", "max":
	default:
		return fmt.Errorf("checkpoint.mode must be min or max, got %q", cfg.Checkpoint.Mode)
	}
	if cfg.Checkpoint.Monitor == "" {
		cfg.Checkpoint.Monitor = "val_loss"
	}
	return nil
}
