// Package config initializes the viper-backed configuration for tbclean.
//
// Precedence, highest first: command-line flag, TBCLEAN_* environment
// variable, ~/.config/tbclean/config.yaml, built-in default. The vault root
// additionally falls back to a .todoist-bridge.yaml sitting next to the data
// file (see LoadLocalConfig) and finally to ~/Obsidian/Vault; every fallback
// is resolved once at startup and only used if it exists on disk.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Initialize sets up the viper singleton. A missing config file is fine;
// a malformed one is reported so the user isn't silently ignored.
func Initialize() error {
	viper.SetEnvPrefix("TBCLEAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("data-json", "data.json")
	viper.SetDefault("vault-root", "")
	viper.SetDefault("no-backup", false)

	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory: env vars and flags still work.
		return nil
	}
	viper.AddConfigPath(filepath.Join(home, ".config", "tbclean"))
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// DataJSON returns the configured snapshot path (default "data.json").
func DataJSON() string {
	return viper.GetString("data-json")
}

// VaultRoot returns the configured vault root, "" when unset.
func VaultRoot() string {
	return viper.GetString("vault-root")
}

// NoBackup reports whether backups are disabled by configuration.
func NoBackup() bool {
	return viper.GetBool("no-backup")
}

// DefaultVaultRoot is the conventional vault location tried as the last
// fallback when nothing else is configured. Only used if it exists.
func DefaultVaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Obsidian", "Vault")
}
