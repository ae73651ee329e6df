package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

var (
	DefaultNotesDirectory    string = path.Join(os.Getenv("HOME"), ".notes")
	DefaultPort              int    = 3333
	DefaultNotesDatabaseName string = "notes.sqlite"
	DefaultClientID          string = "keep-notes"
	DefaultAllowOrigins      string = "http://localhost:4444"
)

type Config struct {
	Port          int    `toml:"port"`
	DataDir       string `toml:"data_dir"`
	Backend       string `toml:"backend"`
	StorageKey    string `toml:"storage_key"`
	LogLevel      string `toml:"log_level"`
	LogFormatJSON bool   `toml:"log_format_json"`
	LogFile       string `toml:"log_file"`
	LogToStderr   bool   `toml:"log_to_stderr"`
	AllowOrigins  string `toml:"allow_origins"`

	DisableAuth     bool   `toml:"disable_auth"`
	AuthProviderURL string `toml:"auth_provider_url"`
	RedirectURL     string `toml:"redirect_url"`
	ClientID        string `toml:"client_id"`
}

func Default() *Config {
	return &Config{
		Port:         DefaultPort,
		DataDir:      DefaultNotesDirectory,
		Backend:      BackendSQLite,
		LogLevel:     "info",
		AllowOrigins: DefaultAllowOrigins,
		ClientID:     DefaultClientID,
	}
}

// Load builds the configuration from defaults, then the TOML file at
// configPath (if non-empty), then NOTES_API_* environment variables read
// through getenv.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if configPath != "" {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Backend)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Backend != BackendMemory && c.DataDir == "" {
		return errors.New("data_dir is required for persistent backends")
	}
	if !c.DisableAuth {
		if c.AuthProviderURL == "" {
			return errors.New("auth is enabled but no NOTES_API_AUTH_PROVIDER_URL was provided")
		}
		if c.RedirectURL == "" {
			return errors.New("auth is enabled but no NOTES_API_REDIRECT_URL was provided")
		}
	}
	return nil
}

func (c *Config) DBPath() string {
	return path.Join(c.DataDir, DefaultNotesDatabaseName)
}

// Private

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("NOTES_API_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NOTES_API_PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := getenv("NOTES_API_DB_DIR"); v != "" {
		c.DataDir = v
	}
	if v := strings.ToLower(strings.TrimSpace(getenv("NOTES_API_BACKEND"))); v != "" {
		c.Backend = v
	}
	if v := getenv("NOTES_API_STORAGE_KEY"); v != "" {
		c.StorageKey = v
	}
	if v := getenv("NOTES_API_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("NOTES_API_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := getenv("NOTES_API_ALLOW_ORIGINS"); v != "" {
		c.AllowOrigins = v
	}
	if strings.TrimSpace(getenv("NOTES_API_DISABLE_AUTH")) != "" {
		c.DisableAuth = true
	}
	if v := getenv("NOTES_API_AUTH_PROVIDER_URL"); v != "" {
		c.AuthProviderURL = v
	}
	if v := getenv("NOTES_API_REDIRECT_URL"); v != "" {
		c.RedirectURL = v
	}
	if v := getenv("NOTES_API_CLIENT_ID"); v != "" {
		c.ClientID = v
	}
	return nil
}
