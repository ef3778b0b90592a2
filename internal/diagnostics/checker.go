// Package diagnostics validates external tools and filesystem paths the
// pipeline depends on before any run is started.
package diagnostics

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"video-subtitle/internal/domain"
)

// Checker validates external tools and required filesystem paths.
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// NewCheckerForTests creates a checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		stat:       stat,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}

// Run executes all startup checks and returns a combined report.
// configPath is the resolved settings file, cacheDir the model cache.
func (c *Checker) Run(configPath, cacheDir string) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkTool("ffmpeg"),
		c.checkTool("whisper-cli"),
		c.checkConfigFile(configPath),
		c.checkCacheDir(cacheDir),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkTool verifies a required CLI executable is on PATH.
func (c *Checker) checkTool(name string) domain.DiagnosticItem {
	path, err := c.lookPath(name)
	if err != nil {
		return domain.DiagnosticItem{
			ID:      "tool_" + name,
			Name:    name,
			Status:  domain.DiagnosticStatusFail,
			Message: fmt.Sprintf("Tool not found in PATH: %s", name),
			Hint:    "Install it and ensure the binary is available on PATH before starting a run.",
		}
	}

	return domain.DiagnosticItem{
		ID:      "tool_" + name,
		Name:    name,
		Status:  domain.DiagnosticStatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkConfigFile reports whether the settings file exists. A missing
// file is a pass; it is synthesized with defaults on first load.
func (c *Checker) checkConfigFile(configPath string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "config_file",
		Name: "Settings file",
	}

	info, err := c.stat(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			item.Status = domain.DiagnosticStatusPass
			item.Message = fmt.Sprintf("Will be created with defaults: %s", configPath)
			return item
		}
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot access settings file: %s", configPath)
		item.Hint = "Check permissions for the configuration directory."
		return item
	}
	if info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Settings path is a directory: %s", configPath)
		item.Hint = "Remove the directory so a settings file can be written in its place."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Settings file found: %s", configPath)
	return item
}

// checkCacheDir validates the model cache is creatable and writable.
func (c *Checker) checkCacheDir(cacheDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "model_cache",
		Name: "Model cache",
	}

	if err := c.mkdirAll(cacheDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create model cache directory: %s", cacheDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(cacheDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Model cache directory is not writable: %s", cacheDir)
		item.Hint = "Model downloads need write access to this directory."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", cacheDir)
	return item
}
