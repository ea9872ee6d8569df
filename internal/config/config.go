package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the config file name (without extension)
	ConfigFileName = "config"

	// AppDir is the application-private support directory
	AppDir = ".clipboard-registers"

	// DefaultPort is the localhost API port
	DefaultPort = 48620
)

// Config holds application configuration
type Config struct {
	DBPath      string `mapstructure:"db_path"`
	ContentPath string `mapstructure:"content_path"`
	Port        int    `mapstructure:"port"`
	Verbose     bool   `mapstructure:"verbose"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	appDir := getAppDir()
	return &Config{
		DBPath:      filepath.Join(appDir, "clipboard.db"),
		ContentPath: filepath.Join(appDir, "content"),
		Port:        DefaultPort,
		Verbose:     false,
	}
}

// Load loads configuration from the config file, falling back to
// defaults when no file exists.
func Load() (*Config, error) {
	appDir := getAppDir()

	// Ensure config directory exists
	if err := os.MkdirAll(appDir, 0700); err != nil {
		return nil, err
	}

	defaults := DefaultConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(appDir)

	// Set defaults
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("content_path", defaults.ContentPath)
	v.SetDefault("port", defaults.Port)
	v.SetDefault("verbose", defaults.Verbose)

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults
			return defaults, nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func getAppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, AppDir)
}
