package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is resolved in order: defaults, optional config file, environment.
type Config struct {
	// Home is the resource root holding the database, log and config file.
	Home string `yaml:"-" toml:"-"`
	// File is the config file that was read, if any.
	File string `yaml:"-" toml:"-"`

	DBPath    string `yaml:"db_path" toml:"db_path"`
	LogLevel  string `yaml:"log_level" toml:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format"`
	LogFile   string `yaml:"log_file" toml:"log_file"`

	// RecreateOnMismatch drops and recreates the todos table when its shape
	// is wrong, losing its rows. Set false to refuse to start instead.
	RecreateOnMismatch bool `yaml:"recreate_on_mismatch" toml:"recreate_on_mismatch"`

	Server ServerConfig `yaml:"server" toml:"server"`
}

// ServerConfig configures the local HTTP shell.
type ServerConfig struct {
	Bind   string `yaml:"bind" toml:"bind"`
	Port   int    `yaml:"port" toml:"port"`
	APIKey string `yaml:"api_key" toml:"api_key"`
}

// configFiles are probed in Home, in order, when TODO_CONFIG is unset.
var configFiles = []string{"config.yaml", "config.yml", "config.toml"}

func defaults(home string) *Config {
	return &Config{
		Home:               home,
		LogLevel:           "info",
		LogFormat:          "json",
		RecreateOnMismatch: true,
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 8742,
		},
	}
}

func Load() (*Config, error) {
	home, err := resolveHome()
	if err != nil {
		return nil, err
	}
	cfg := defaults(home)

	path := envStr("TODO_CONFIG", "")
	if path == "" {
		path = findConfigFile(home)
	}
	if path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, err
		}
		cfg.File = path
	}

	cfg.applyEnv()

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.Home, "todo.db")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.Home, "todo.log")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP shell.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

func (c *Config) applyEnv() {
	c.DBPath = envStr("TODO_DB_PATH", c.DBPath)
	c.LogLevel = envStr("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envStr("LOG_FORMAT", c.LogFormat)
	c.LogFile = envStr("TODO_LOG_FILE", c.LogFile)
	c.RecreateOnMismatch = envBool("TODO_RECREATE_ON_MISMATCH", c.RecreateOnMismatch)
	c.Server.Bind = envStr("TODO_BIND", c.Server.Bind)
	c.Server.Port = envInt("PORT", c.Server.Port)
	c.Server.APIKey = envStr("TODO_API_KEY", c.Server.APIKey)
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("TODO_DB_PATH must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}

// resolveHome returns TODO_HOME, defaulting to ~/.todo.
func resolveHome() (string, error) {
	if v := envStr("TODO_HOME", ""); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".todo"), nil
}

func findConfigFile(home string) string {
	for _, name := range configFiles {
		p := filepath.Join(home, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// readFile decodes path into cfg, choosing the decoder by extension. Keys
// absent from the file keep their current values.
func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}
