// Package config defines the maars configuration surface, loaded through
// viper from a config file and MAARS_-prefixed environment variables.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete maars configuration
type Config struct {
	Execution ExecutionConfig `mapstructure:"execution"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Paths     PathsConfig     `mapstructure:"paths"`
}

// ExecutionConfig controls the execution runner
type ExecutionConfig struct {
	// Executors is the executor pool size, the maximum number of tasks
	// executing concurrently.
	Executors int `mapstructure:"executors"`
	// Validators is the validator pool size, the maximum number of task
	// outputs being validated concurrently.
	Validators int `mapstructure:"validators"`
	// MaxFailures is the retry cap: a task failing execution or
	// validation this many times ends in a terminal failed state.
	MaxFailures int `mapstructure:"max_failures"`
	// RollbackOnExhaustion reverts a failed task's upstream dependencies
	// and downstream dependents to undone when retries run out, making
	// the subgraph eligible for a fresh pass.
	RollbackOnExhaustion bool `mapstructure:"rollback_on_exhaustion"`
	// Mock configures the deterministic-random mock collaborators used
	// when no live executor is wired.
	Mock MockConfig `mapstructure:"mock"`
}

// MockConfig tunes the mock execution mode used for testing runs without
// live collaborators
type MockConfig struct {
	// ExecutionPassProbability is the chance a mock execution succeeds.
	ExecutionPassProbability float64 `mapstructure:"execution_pass_probability"`
	// ValidationPassProbability is the chance a mock validation passes.
	ValidationPassProbability float64 `mapstructure:"validation_pass_probability"`
	// DelayMs is the simulated duration of each mock call.
	DelayMs int `mapstructure:"delay_ms"`
	// Seed makes mock outcomes reproducible; 0 seeds from the clock.
	Seed int64 `mapstructure:"seed"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Dir is where run.log is written; empty logs to stderr.
	Dir string `mapstructure:"dir"`
}

// PathsConfig controls where plan and run state files live
type PathsConfig struct {
	// DataDir is the directory holding plan.json and execution.json.
	DataDir string `mapstructure:"data_dir"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Execution: ExecutionConfig{
			Executors:   7,
			Validators:  5,
			MaxFailures: 3,
			Mock: MockConfig{
				ExecutionPassProbability:  0.95,
				ValidationPassProbability: 0.95,
				DelayMs:                   100,
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Paths: PathsConfig{
			DataDir: ".maars",
		},
	}
}

// SetDefaults registers the built-in defaults with viper so they are
// available even without a config file
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("execution.executors", defaults.Execution.Executors)
	viper.SetDefault("execution.validators", defaults.Execution.Validators)
	viper.SetDefault("execution.max_failures", defaults.Execution.MaxFailures)
	viper.SetDefault("execution.rollback_on_exhaustion", defaults.Execution.RollbackOnExhaustion)
	viper.SetDefault("execution.mock.execution_pass_probability", defaults.Execution.Mock.ExecutionPassProbability)
	viper.SetDefault("execution.mock.validation_pass_probability", defaults.Execution.Mock.ValidationPassProbability)
	viper.SetDefault("execution.mock.delay_ms", defaults.Execution.Mock.DelayMs)
	viper.SetDefault("execution.mock.seed", defaults.Execution.Mock.Seed)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	viper.SetDefault("paths.data_dir", defaults.Paths.DataDir)
}

// Load unmarshals and validates the current viper configuration
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Get returns the loaded configuration, falling back to defaults if
// loading fails
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the directory searched for the config file
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "maars")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".maars"
	}
	return filepath.Join(home, ".config", "maars")
}
