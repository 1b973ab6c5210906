package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Auth    AuthConfig    `mapstructure:"auth"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds storefront API configuration
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// AuthConfig holds identity-provider configuration and the saved tokens
type AuthConfig struct {
	Issuer       string   `mapstructure:"issuer"`
	ClientID     string   `mapstructure:"client_id"`
	RedirectPort int      `mapstructure:"redirect_port"`
	Scopes       []string `mapstructure:"scopes"`

	AccessToken  string    `mapstructure:"access_token"`
	RefreshToken string    `mapstructure:"refresh_token"`
	TokenExpiry  time.Time `mapstructure:"token_expiry"`
}

// UIConfig holds presentation configuration
type UIConfig struct {
	PageSize int  `mapstructure:"page_size"`
	NoColor  bool `mapstructure:"no_color"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "",
		},
		Auth: AuthConfig{
			RedirectPort: 8931,
			Scopes:       []string{"openid", "profile", "offline_access"},
		},
		UI: UIConfig{
			PageSize: 24,
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
		return filepath.Join(os.Getenv("APPDATA"), "folio", "folio.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "folio", "folio.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "folio")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "folio")
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "folio")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "folio")
	}
}

// CartDBPath returns the path of the local cart database
func CartDBPath() string {
	return filepath.Join(defaultDataPath(), "cart.db")
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides (FOLIO_API_BASE_URL etc.)
	viper.SetEnvPrefix("FOLIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
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

// IsConfigured returns true if the storefront API base URL is set
func (c *Config) IsConfigured() bool {
	return c.API.BaseURL != ""
}

// IsAuthenticated returns true if saved tokens exist
func (c *Config) IsAuthenticated() bool {
	return c.Auth.RefreshToken != "" || c.Auth.AccessToken != ""
}

// RedirectURI returns the loopback redirect URI registered with the
// identity provider
func (c *Config) RedirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", c.Auth.RedirectPort)
}

// SaveTokens updates just the saved tokens in the configuration
func SaveTokens(accessToken, refreshToken string, expiry time.Time) error {
	viper.Set("auth.access_token", accessToken)
	viper.Set("auth.refresh_token", refreshToken)
	viper.Set("auth.token_expiry", expiry)

	return writeConfig()
}

// ClearTokens removes the saved tokens while preserving the provider
// registration and all other settings
func ClearTokens() error {
	viper.Set("auth.access_token", "")
	viper.Set("auth.refresh_token", "")
	viper.Set("auth.token_expiry", time.Time{})

	return writeConfig()
}

func writeConfig() error {
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
