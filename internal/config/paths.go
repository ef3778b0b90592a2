package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "video-subtitle"

// DefaultPath resolves the per-user config file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, "config.toml"), nil
}

// ModelCacheDir returns the model cache directory next to the config file.
func ModelCacheDir(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "models")
}
