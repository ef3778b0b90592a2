package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"video-subtitle/internal/domain"
)

//go:embed sample_config.toml
var sampleConfig string

// DefaultModel is the whisper model used when no config exists yet.
const DefaultModel = "ggml-medium-q8_0.bin"

// Store defines persistence operations for app settings.
type Store interface {
	Load() (domain.Settings, error)
	Save(domain.Settings) error
	Path() string
}

// file is the on-disk layout: a single [base] table.
type file struct {
	Base domain.Settings `toml:"base"`
}

// TOMLStore persists settings in a single TOML file on disk.
type TOMLStore struct {
	path string
}

// NewTOMLStore creates a TOML-backed settings store at the given path.
func NewTOMLStore(path string) *TOMLStore {
	return &TOMLStore{path: path}
}

// Path returns the config file location.
func (s *TOMLStore) Path() string {
	return s.path
}

// Load reads settings from disk, synthesizing the default config file
// when missing. A malformed existing file is a hard error.
func (s *TOMLStore) Load() (domain.Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if writeErr := s.writeDefault(); writeErr != nil {
			return domain.Settings{}, fmt.Errorf("create default config: %w", writeErr)
		}
		return DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("read config %s: %w", s.path, err)
	}

	var cfg file
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return domain.Settings{}, fmt.Errorf("parse config %s: %w", s.path, err)
	}

	return normalize(cfg.Base), nil
}

// Save writes settings back as TOML and creates parent directories.
func (s *TOMLStore) Save(settings domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := toml.Marshal(file{Base: normalize(settings)})
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return os.WriteFile(s.path, data, 0o644)
}

// writeDefault materializes the embedded sample config on first run.
func (s *TOMLStore) writeDefault() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(sampleConfig), 0o644)
}

// DefaultSettings returns baseline configuration for first launch.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		Model:    DefaultModel,
		Language: "auto",
	}
}

// normalize fills empty fields so stale or partial files stay usable.
func normalize(settings domain.Settings) domain.Settings {
	if settings.Model == "" {
		settings.Model = DefaultModel
	}
	if settings.Language == "" {
		settings.Language = "auto"
	}
	return settings
}
