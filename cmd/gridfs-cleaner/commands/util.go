package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Dualog-students/GridFSCleaner/internal/logger"
	"github.com/Dualog-students/GridFSCleaner/pkg/config"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("/etc", "gridfs-cleaner", "config.yaml")
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "gridfs-cleaner", "config.yaml")
}

// resolveConfigFile returns the --config flag value, or the default path if
// a config file exists there, or empty (environment-only configuration).
func resolveConfigFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	defaultPath := GetDefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath
	}
	return ""
}
