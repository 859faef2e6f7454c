package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfigName is the per-vault override file, read from the directory
// holding the data file. It lets a vault pin its own root without touching
// the global config or environment.
const LocalConfigName = ".todoist-bridge.yaml"

// LocalConfig holds the per-vault settings read directly from yaml rather
// than through the viper singleton. Direct parsing keeps this usable before
// Initialize has run and independent of the process environment.
type LocalConfig struct {
	VaultRoot string `yaml:"vault-root"`
}

// LoadLocalConfig reads LocalConfigName from dir. Returns an empty
// LocalConfig (not nil) if the file doesn't exist or can't be parsed.
func LoadLocalConfig(dir string) *LocalConfig {
	data, err := os.ReadFile(filepath.Join(dir, LocalConfigName)) // #nosec G304 - dir derives from the data file path
	if err != nil {
		return &LocalConfig{}
	}
	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}
	return &cfg
}
