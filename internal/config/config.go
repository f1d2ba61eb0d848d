// Package config provides configuration management for kabupnl.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	apperrors "kabu-pnl/internal/errors"
	"kabu-pnl/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Report    ReportConfig    `mapstructure:"report"`
	Positions PositionsConfig `mapstructure:"positions"`

	// Path is the file the configuration was read from.
	Path string `mapstructure:"-"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"` // debug, info, warn, error
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// ReportConfig holds report output configuration.
type ReportConfig struct {
	JSON         bool   `mapstructure:"json"`
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// PositionsConfig points at the default opening-positions file.
type PositionsConfig struct {
	File string `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/kabu-pnl"
	}
	return filepath.Join(home, ".config", "kabu-pnl")
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	logCfg := logging.DefaultLogConfig()
	return &Config{
		Log: LogConfig{
			Level:      logCfg.Level,
			Console:    logCfg.Console,
			File:       logCfg.File,
			FilePath:   logCfg.FilePath,
			MaxSize:    logCfg.MaxSize,
			MaxBackups: logCfg.MaxBackups,
			MaxAge:     logCfg.MaxAge,
		},
		Report: ReportConfig{
			ColorEnabled: true,
			DateFormat:   "2006-01-02",
		},
	}
}

// Load loads config.toml from configDir. If configDir is empty, uses the
// default config directory. A template is written when the file is missing.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg, err := loadConfigFile(configDir, "config")
	if err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		if err := createTemplateConfig(configDir, name); err != nil {
			return nil, err
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.Path = v.ConfigFileUsed()
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.console", def.Log.Console)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.file_path", def.Log.FilePath)
	v.SetDefault("log.max_size", def.Log.MaxSize)
	v.SetDefault("log.max_backups", def.Log.MaxBackups)
	v.SetDefault("log.max_age", def.Log.MaxAge)
	v.SetDefault("report.json", def.Report.JSON)
	v.SetDefault("report.color_enabled", def.Report.ColorEnabled)
	v.SetDefault("report.date_format", def.Report.DateFormat)
	v.SetDefault("positions.file", def.Positions.File)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KABUPNL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("KABUPNL_POSITIONS_FILE"); v != "" {
		cfg.Positions.File = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !logging.ValidLevel(c.Log.Level) {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "log level %q (must be debug, info, warn or error)", c.Log.Level)
	}
	if c.Log.File && c.Log.FilePath == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "log.file_path is required when log.file is enabled")
	}
	if c.Log.MaxSize < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAge < 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "log rotation limits must be non-negative")
	}
	return nil
}

// LoggingConfig converts the [log] section for the logging package.
func (c *Config) LoggingConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Log.Level,
		Console:    c.Log.Console,
		File:       c.Log.File,
		FilePath:   c.Log.FilePath,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAge,
	}
}
