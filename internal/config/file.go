package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile overlays the YAML document at path onto cfg.
// Keys absent from the file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// The preset applies first so explicit keys in the same file win.
	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if head.Preset != "" {
		preset, err := ParsePreset(head.Preset)
		if err != nil {
			return err
		}
		cfg.ApplyPreset(preset)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Marshal renders cfg as YAML, for logging the effective configuration.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
