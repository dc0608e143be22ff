package config

import (
	"time"

	"github.com/spf13/viper"

	mongostore "github.com/Dualog-students/GridFSCleaner/pkg/store/mongo"
)

// Default values for all configuration keys.
const (
	DefaultLogLevel         = "INFO"
	DefaultLogFormat        = "text"
	DefaultLogOutput        = "stderr"
	DefaultBucket           = "fs"
	DefaultWorkers          = 4
	DefaultProgressInterval = 30 * time.Second
	DefaultMetricsPort      = 9090
)

// registerDefaults registers every key with viper. Keys must be known to
// viper for AutomaticEnv to pick them up during Unmarshal.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
	v.SetDefault("logging.output", DefaultLogOutput)

	v.SetDefault("database.uri", "")
	v.SetDefault("database.database", "")
	v.SetDefault("database.bucket", DefaultBucket)
	v.SetDefault("database.connect_timeout", "10s")

	v.SetDefault("dry_run", "true")
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("progress_interval", DefaultProgressInterval.String())
	v.SetDefault("schedule", "")

	v.SetDefault("metrics.enabled", "false")
	v.SetDefault("metrics.port", DefaultMetricsPort)
}

// GetDefaultConfig returns a config populated with defaults only. Used by
// the init command to write a sample file; it does not validate (the
// connection string is intentionally left for the operator).
func GetDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			Output: DefaultLogOutput,
		},
		Database: mongostore.Config{
			Bucket:         DefaultBucket,
			ConnectTimeout: 10 * time.Second,
		},
		DryRun:           true,
		Workers:          DefaultWorkers,
		ProgressInterval: DefaultProgressInterval,
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    DefaultMetricsPort,
		},
	}
}
