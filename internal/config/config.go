package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	UI      UIConfig      `mapstructure:"ui"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the vlog platform connection settings
type ServerConfig struct {
	URL   string `mapstructure:"url"`   // API base URL
	Token string `mapstructure:"token"` // Bearer token from login
}

// UIConfig holds UI configuration
type UIConfig struct {
	Theme    string `mapstructure:"theme"`     // "default" or "dark"
	PageSize int    `mapstructure:"page_size"` // Feed items per page
}

// CacheConfig holds local cache configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir"` // Empty = default path, "off" = memory only
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{},
		UI: UIConfig{
			Theme:    "default",
			PageSize: 20,
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "vlogdeck", "vlogdeck.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "vlogdeck", "vlogdeck.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "vlogdeck")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "vlogdeck")
	}
}

// defaultCachePath returns the default cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "vlogdeck", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "vlogdeck", "cache")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("VLOGDECK")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	viper.Set("server.url", cfg.Server.URL)
	viper.Set("server.token", cfg.Server.Token)
	viper.Set("ui.theme", cfg.UI.Theme)
	viper.Set("ui.page_size", cfg.UI.PageSize)
	viper.Set("cache.dir", cfg.Cache.Dir)
	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	return writeConfigFile()
}

// SaveToken updates just the token in the configuration
func SaveToken(token string) error {
	viper.Set("server.token", token)
	return writeConfigFile()
}

// ClearToken removes the stored credential while preserving other settings
func ClearToken() error {
	viper.Set("server.token", "")
	return writeConfigFile()
}

func writeConfigFile() error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the server URL is set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != ""
}
