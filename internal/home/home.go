package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the formscan home directory.
	DefaultDirName = ".formscan"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// SettingsFileName is the env-style file holding connection settings
	// written by `formscan provision`.
	SettingsFileName = "azure.env"

	// SchemaFileName is the default extraction schema file name.
	SchemaFileName = "schema.json"
)

// Dir represents the formscan home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.formscan).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// SettingsPath returns the path to the provision settings file.
func (d *Dir) SettingsPath() string {
	return filepath.Join(d.path, SettingsFileName)
}

// SchemaPath returns the path to the default extraction schema file.
func (d *Dir) SchemaPath() string {
	return filepath.Join(d.path, SchemaFileName)
}

// EnsureExists creates the home directory if it doesn't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("failed to create home directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// SettingsExist returns true if the provision settings file exists.
func (d *Dir) SettingsExist() bool {
	_, err := os.Stat(d.SettingsPath())
	return err == nil
}
