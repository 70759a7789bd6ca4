package config

import (
	"errors"
	"fmt"

	"github.com/roach88/notes-sidecar/internal/lock"
	"github.com/roach88/notes-sidecar/internal/logger"
	"github.com/roach88/notes-sidecar/internal/osa"
)

// EnvPrefix prefixes every environment variable the sidecar reads.
const EnvPrefix = "NOTES_SIDECAR_"

// ErrInvalidConfig marks configuration that failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the resolved sidecar configuration.
type Config struct {
	// Path of the YAML file the other fields may come from. Never read from
	// the file itself.
	File string `yaml:"-" env:"CONFIG"`

	LockDir        string `yaml:"lock_dir" env:"LOCK_DIR"`
	Osascript      string `yaml:"osascript" env:"OSASCRIPT"`
	AppName        string `yaml:"app_name" env:"APP_NAME"`
	MaxFolderDepth int    `yaml:"max_folder_depth" env:"MAX_FOLDER_DEPTH"`

	// JournalPath enables the mutation journal when set.
	JournalPath string `yaml:"journal_path" env:"JOURNAL_PATH"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		LockDir:        lock.DefaultDir(),
		Osascript:      osa.DefaultPath,
		AppName:        "Notes",
		MaxFolderDepth: 64,
		LogLevel:       "warn",
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.MaxFolderDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_folder_depth must be > 0, got %d", c.MaxFolderDepth))
	}
	if c.AppName == "" {
		errs = append(errs, errors.New("app_name must not be empty"))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
