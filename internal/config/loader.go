package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configFile = "meyendtris.yaml"

// LoadMeyendtris loads the Meyendtris configuration.
// Search order: customPath -> ~/.meyendtris/configs/meyendtris.yaml -> ./configs/meyendtris.yaml -> embedded default
//
// Files are decoded over the defaults, so a partial file only overrides
// the keys it names. The result is validated.
func LoadMeyendtris(customPath string) (MeyendtrisConfig, error) {
	// Try custom path first
	if customPath != "" {
		return LoadFile(customPath)
	}

	// Try user config directory
	if userCfgPath := userConfigPath(configFile); userCfgPath != "" {
		if cfg, err := decodeFile(userCfgPath); err == nil {
			return cfg, Validate(cfg)
		}
	}

	// Try local configs directory
	if cfg, err := decodeFile(filepath.Join("configs", configFile)); err == nil {
		return cfg, Validate(cfg)
	}

	// Use embedded default YAML
	cfg := DefaultMeyendtrisConfig()
	if err := yaml.Unmarshal(defaultMeyendtrisYAML, &cfg); err != nil {
		return DefaultMeyendtrisConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, Validate(cfg)
}

// LoadFile reads one configuration file. A name without an extension gets
// ".yaml" appended, matching the remote "config <file>" command.
func LoadFile(path string) (MeyendtrisConfig, error) {
	if filepath.Ext(path) == "" {
		path += ".yaml"
	}
	cfg, err := decodeFile(path)
	if err != nil {
		return cfg, err
	}
	return cfg, Validate(cfg)
}

func decodeFile(path string) (MeyendtrisConfig, error) {
	cfg := DefaultMeyendtrisConfig()

	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// userConfigPath returns the path to a config file in the user's config directory.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".meyendtris", "configs", filename)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
