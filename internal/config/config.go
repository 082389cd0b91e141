package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Log     LogConfig     `mapstructure:"log" validate:"required"`
	Storage StorageConfig `mapstructure:"storage" validate:"required"`
	Study   StudyConfig   `mapstructure:"study" validate:"required"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	// File receives JSON log lines. Empty means stderr, except during a
	// study session, which logs to flashflow/flashflow.log in the user
	// cache directory.
	File string `mapstructure:"file"`
}

// Storage backends understood by StorageConfig.Backend.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendBadger   = "badger"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// StorageConfig selects and configures the durable slot that holds the deck
// collection.
type StorageConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=memory file badger sqlite postgres redis"`
	// Path is a file or directory for the file, badger and sqlite backends.
	Path string `mapstructure:"path" validate:"required_if=Backend file,required_if=Backend badger,required_if=Backend sqlite"`
	// URL is the connection string for the postgres and redis backends.
	URL string `mapstructure:"url" validate:"required_if=Backend postgres,required_if=Backend redis,omitempty,url"`
	// Key names the slot inside the backend.
	Key string `mapstructure:"key" validate:"required"`
}

// StudyConfig contains study session settings.
type StudyConfig struct {
	TransitionDuration time.Duration `mapstructure:"transition_duration" validate:"gt=0,lte=10s"`
	DefaultMode        string        `mapstructure:"default_mode" validate:"required,oneof=flip choice"`
}
