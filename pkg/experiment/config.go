package experiment

// Package experiment locates and parses the files a completed
// benchmark run leaves on disk: per-service status and latency files
// plus per-iteration audit captures.

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes the on-disk layout an experiment run is expected
// to follow. Zero values are filled from defaults, so a config file
// only needs the fields that differ.
type Config struct {
	// Iterations is the number of iterations a run must contain.
	Iterations int `yaml:"iterations"`

	// ServiceIDTemplate expands to the deployed service identity for a
	// 1-based service index, e.g. "rnn-serving-python-%d".
	ServiceIDTemplate string `yaml:"serviceIDTemplate"`

	// StrictScaleUp narrows scale-up matching to scale-from-zero
	// patches only.
	StrictScaleUp bool `yaml:"strictScaleUp"`
}

// DefaultConfig returns the layout of the vSwarm benchmark runs.
func DefaultConfig() Config {
	return Config{
		Iterations:        30,
		ServiceIDTemplate: "rnn-serving-python-%d",
	}
}

// LoadConfig reads a YAML config file and fills unset fields from the
// defaults. An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if loaded.Iterations > 0 {
		cfg.Iterations = loaded.Iterations
	}
	if loaded.ServiceIDTemplate != "" {
		cfg.ServiceIDTemplate = loaded.ServiceIDTemplate
	}
	cfg.StrictScaleUp = loaded.StrictScaleUp
	return cfg, nil
}

// ServiceID expands the template for a 1-based service index.
func (c Config) ServiceID(index int) string {
	return fmt.Sprintf(c.ServiceIDTemplate, index)
}
