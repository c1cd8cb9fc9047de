// Package config loads runtime configuration from flags and environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel      = "info"
	DefaultCabinetDir    = "cabinet"
	DefaultOCRLang       = "eng"
	DefaultRenderScale   = 2.0
	DefaultQueueCapacity = 256
	DefaultMaxFileSize   = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the document core.
type Config struct {
	// Vault configuration
	VaultRoot  string
	CabinetDir string // cabinet directory name under the vault root

	// Ingestion configuration
	OCRLang       string
	RenderScale   float64
	QueueCapacity int

	// Application configuration
	LogLevel    string
	MaxFileSize int64
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		VaultRoot:     currentDir,
		CabinetDir:    DefaultCabinetDir,
		OCRLang:       DefaultOCRLang,
		RenderScale:   DefaultRenderScale,
		QueueCapacity: DefaultQueueCapacity,
		LogLevel:      DefaultLogLevel,
		MaxFileSize:   DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.VaultRoot != "" {
		if expandedPath, err := filepath.Abs(cfg.VaultRoot); err == nil {
			cfg.VaultRoot = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults.
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("KENAZ")
	viper.AutomaticEnv()

	viper.SetDefault("vault", cfg.VaultRoot)
	viper.SetDefault("cabinet", cfg.CabinetDir)
	viper.SetDefault("ocrlang", cfg.OCRLang)
	viper.SetDefault("renderscale", cfg.RenderScale)
	viper.SetDefault("queuecap", cfg.QueueCapacity)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags.
func defineCommandLineFlags(cfg *Config) {
	pflag.String("vault", cfg.VaultRoot, "Vault root directory")
	pflag.String("cabinet", cfg.CabinetDir, "Cabinet directory name under the vault root")
	pflag.String("ocrlang", cfg.OCRLang, "OCR language code passed to the OCR engine")
	pflag.Float64("renderscale", cfg.RenderScale, "Rasterization scale for the OCR fallback")
	pflag.Int("queuecap", cfg.QueueCapacity, "Extraction queue buffer capacity")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum document file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration.
func bindFlagsToViper() {
	_ = viper.BindPFlag("vault", pflag.Lookup("vault"))
	_ = viper.BindPFlag("cabinet", pflag.Lookup("cabinet"))
	_ = viper.BindPFlag("ocrlang", pflag.Lookup("ocrlang"))
	_ = viper.BindPFlag("renderscale", pflag.Lookup("renderscale"))
	_ = viper.BindPFlag("queuecap", pflag.Lookup("queuecap"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// populateConfigFromViper fills the config struct with values from viper.
func populateConfigFromViper(cfg *Config) {
	cfg.VaultRoot = viper.GetString("vault")
	cfg.CabinetDir = viper.GetString("cabinet")
	cfg.OCRLang = viper.GetString("ocrlang")
	cfg.RenderScale = viper.GetFloat64("renderscale")
	cfg.QueueCapacity = viper.GetInt("queuecap")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.VaultRoot == "" {
		return errors.New("vault root cannot be empty")
	}

	// Create the vault root if it does not exist yet.
	if _, err := os.Stat(c.VaultRoot); os.IsNotExist(err) {
		if err := os.MkdirAll(c.VaultRoot, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create vault root %s: %w", c.VaultRoot, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access vault root %s: %w", c.VaultRoot, err)
	}

	if c.CabinetDir == "" || filepath.IsAbs(c.CabinetDir) {
		return errors.New("cabinet must be a non-empty directory name, not an absolute path")
	}

	if c.RenderScale <= 0 || c.RenderScale > 8 {
		return errors.New("render scale must be in (0, 8]")
	}

	if c.QueueCapacity < 1 {
		return errors.New("queue capacity must be at least 1")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}
