// ABOUTME: Application configuration with file, environment, and flag layers
// ABOUTME: Resolves XDG default paths and Google OAuth client credentials
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appName = "calmirror"

// Config holds every setting the application needs.
type Config struct {
	CredentialsPath string `yaml:"credentials_path"`
	ClientID        string `yaml:"client_id"`
	ClientSecret    string `yaml:"client_secret"`
	TokenPath       string `yaml:"token_path"`
	DatabasePath    string `yaml:"db_path"`
	CalendarID      string `yaml:"calendar_id"`
	ListenAddr      string `yaml:"listen_addr"`
	RedirectURL     string `yaml:"redirect_url"`
	LogLevel        string `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		CredentialsPath: filepath.Join(xdg.ConfigHome, appName, "credentials.json"),
		TokenPath:       filepath.Join(xdg.DataHome, appName, "token.json"),
		DatabasePath:    filepath.Join(xdg.DataHome, appName, appName+".db"),
		CalendarID:      "primary",
		ListenAddr:      ":8080",
		RedirectURL:     "http://localhost:8080/",
		LogLevel:        "info",
	}
}

// DefaultConfigFile is the YAML file read when no --config flag is given.
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// envVars maps environment variable names to the fields they set.
func envVars(c *Config) map[string]*string {
	return map[string]*string{
		"CALMIRROR_CREDENTIALS_PATH": &c.CredentialsPath,
		"GOOGLE_CLIENT_ID":           &c.ClientID,
		"GOOGLE_CLIENT_SECRET":       &c.ClientSecret,
		"CALMIRROR_TOKEN_PATH":       &c.TokenPath,
		"CALMIRROR_DB_PATH":          &c.DatabasePath,
		"CALMIRROR_CALENDAR_ID":      &c.CalendarID,
		"CALMIRROR_LISTEN_ADDR":      &c.ListenAddr,
		"CALMIRROR_REDIRECT_URL":     &c.RedirectURL,
		"CALMIRROR_LOG_LEVEL":        &c.LogLevel,
	}
}

// Load builds the configuration with the following precedence (highest to lowest):
// 1. Command-line flags (non-empty fields of flags)
// 2. Environment variables, after loading envFile if it exists
// 3. YAML config file (configFile, or DefaultConfigFile if present)
// 4. Defaults
func Load(configFile, envFile string, flags Config) (*Config, error) {
	cfg := Defaults()

	path := configFile
	if path == "" {
		path = DefaultConfigFile()
	}
	if err := loadFile(path, &cfg); err != nil {
		if configFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if envFile != "" {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}
	for name, field := range envVars(&cfg) {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}

	for name, field := range envVars(&flags) {
		if *field != "" {
			*envVars(&cfg)[name] = *field
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate checks that required values are present.
func (c *Config) Validate() error {
	if c.TokenPath == "" {
		return fmt.Errorf("token_path must be provided via --token-path, CALMIRROR_TOKEN_PATH, or config file")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("db_path must be provided via --db-path, CALMIRROR_DB_PATH, or config file")
	}
	if c.CalendarID == "" {
		return fmt.Errorf("calendar_id must not be empty")
	}
	return nil
}

// GoogleClient returns the OAuth client id and secret, preferring explicit
// values over the credentials file.
func (c *Config) GoogleClient() (clientID, clientSecret string, err error) {
	if c.ClientID != "" && c.ClientSecret != "" {
		return c.ClientID, c.ClientSecret, nil
	}
	if c.CredentialsPath == "" {
		return "", "", fmt.Errorf("google OAuth credentials not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET or provide a credentials file")
	}
	return LoadGoogleCredentials(c.CredentialsPath)
}

// GoogleCredentials is the client secret JSON downloaded from Google Cloud Console.
type GoogleCredentials struct {
	Installed struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"installed"`
	Web struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"web"`
}

// LoadGoogleCredentials loads Google OAuth credentials from a JSON file.
func LoadGoogleCredentials(path string) (clientID, clientSecret string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds GoogleCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", "", fmt.Errorf("failed to parse credentials file: %w", err)
	}

	// A web application is the usual client type for this server.
	if creds.Web.ClientID != "" {
		return creds.Web.ClientID, creds.Web.ClientSecret, nil
	}
	if creds.Installed.ClientID != "" {
		return creds.Installed.ClientID, creds.Installed.ClientSecret, nil
	}

	return "", "", fmt.Errorf("no client_id found in credentials file (expected 'web' or 'installed' section)")
}
