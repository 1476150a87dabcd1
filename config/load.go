package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configFileName is the file searched for in the default locations.
const configFileName = "sorrel.yaml"

// Load reads configuration from a file. If configPath is empty, the
// default locations are searched; a missing file is not an error, the
// defaults apply.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg := Defaults()

	path := configPath
	if path == "" {
		path = findConfigFile(getenv)
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.REPL.Prompt == "" {
		cfg.REPL.Prompt = Defaults().REPL.Prompt
	}
	if cfg.Watch.DebounceMS <= 0 {
		cfg.Watch.DebounceMS = Defaults().Watch.DebounceMS
	}
	return cfg, nil
}

// findConfigFile searches the working directory, then the XDG config
// directory, for sorrel.yaml.
func findConfigFile(getenv func(string) string) string {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName
	}

	configHome := getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home := getenv("HOME"); home != "" {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		path := filepath.Join(configHome, "sorrel", configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
