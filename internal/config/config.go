package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	yaml "gopkg.in/yaml.v3"
)

const (
	// AppName is used for the XDG data directory and env var prefix
	AppName = "timetracker"

	// DriverSQLite is the default database driver
	DriverSQLite = "sqlite3"
	// DriverPostgres selects the pgx stdlib driver
	DriverPostgres = "pgx"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Workspace WorkspaceConfig `yaml:"workspace" toml:"workspace"`
	API       APIConfig       `yaml:"api" toml:"api"`
	Events    EventsConfig    `yaml:"events" toml:"events"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

// ServerConfig represents the server configuration
type ServerConfig struct {
	Port           int      `yaml:"port" toml:"port"`
	Host           string   `yaml:"host" toml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"` // Empty slice means allow all origins
	MaxBodySize    int64    `yaml:"max_body_size" toml:"max_body_size"`     // Maximum request body size in bytes (default: 1MB)
}

// DatabaseConfig represents the database configuration
type DatabaseConfig struct {
	Driver string `yaml:"driver" toml:"driver"` // sqlite3 or pgx
	Path   string `yaml:"path" toml:"path"`     // SQLite file path
	DSN    string `yaml:"dsn" toml:"dsn"`       // PostgreSQL connection string
}

// WorkspaceConfig is the single-tenant workspace record.
type WorkspaceConfig struct {
	Name      string `yaml:"name" toml:"name"`
	Timezone  string `yaml:"timezone" toml:"timezone"`     // IANA name, e.g. "Europe/Paris"
	WeekStart string `yaml:"week_start" toml:"week_start"` // monday or sunday
}

// Location resolves the workspace time zone, falling back to UTC when the
// zone is empty or unknown.
func (w WorkspaceConfig) Location() *time.Location {
	if w.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// APIUser maps an API key to the user recorded in the audit log
type APIUser struct {
	Name string `yaml:"name" toml:"name"`
	Key  string `yaml:"key" toml:"key"`
}

// APIConfig represents the API configuration
type APIConfig struct {
	Users          []APIUser `yaml:"users" toml:"users"`
	AllowAnonymous bool      `yaml:"allow_anonymous" toml:"allow_anonymous"`
}

// EventsConfig configures the Redis lifecycle event publisher.
// An empty RedisAddr disables publishing.
type EventsConfig struct {
	RedisAddr     string `yaml:"redis_addr" toml:"redis_addr"`
	RedisPassword string `yaml:"redis_password" toml:"redis_password"`
	RedisDB       int    `yaml:"redis_db" toml:"redis_db"`
	Channel       string `yaml:"channel" toml:"channel"`
}

// LogConfig represents the logging configuration
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Pretty bool   `yaml:"pretty" toml:"pretty"`
}

// Load loads the configuration from the given file path.
// Files ending in .toml are parsed as TOML, everything else as YAML.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // Trusted file path input
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if strings.EqualFold(filepath.Ext(filePath), ".toml") {
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filePath, err)
		}
	} else {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filePath, err)
		}
	}

	applyEnvVars(config)
	setDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns a configuration with defaults applied and env vars honored,
// for local commands run without a config file. No API users exist, so the
// HTTP API is anonymous.
func Default() (*Config, error) {
	config := &Config{API: APIConfig{AllowAnonymous: true}}
	applyEnvVars(config)
	setDefaults(config)
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvVars applies environment variables to the configuration
func applyEnvVars(config *Config) {
	// Server configuration
	if port := os.Getenv("TIMETRACKER_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("TIMETRACKER_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Database configuration
	if driver := os.Getenv("TIMETRACKER_DATABASE_DRIVER"); driver != "" {
		config.Database.Driver = driver
	}
	if path := os.Getenv("TIMETRACKER_DATABASE_PATH"); path != "" {
		config.Database.Path = path
	}
	if dsn := os.Getenv("TIMETRACKER_DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}

	// Workspace configuration
	if tz := os.Getenv("TIMETRACKER_WORKSPACE_TIMEZONE"); tz != "" {
		config.Workspace.Timezone = tz
	}

	// Events configuration
	if addr := os.Getenv("TIMETRACKER_REDIS_ADDR"); addr != "" {
		config.Events.RedisAddr = addr
	}
	if password := os.Getenv("TIMETRACKER_REDIS_PASSWORD"); password != "" {
		config.Events.RedisPassword = password
	}

	if level := os.Getenv("TIMETRACKER_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.MaxBodySize == 0 {
		config.Server.MaxBodySize = 1 << 20 // 1MB default
	}

	// Database defaults
	if config.Database.Driver == "" {
		config.Database.Driver = DriverSQLite
	}
	if config.Database.Driver == DriverSQLite && config.Database.Path == "" {
		config.Database.Path = defaultDatabasePath()
	}

	// Workspace defaults
	if config.Workspace.Name == "" {
		config.Workspace.Name = "Default"
	}
	if config.Workspace.Timezone == "" {
		config.Workspace.Timezone = "UTC"
	}
	if config.Workspace.WeekStart == "" {
		config.Workspace.WeekStart = "monday"
	}
	config.Workspace.WeekStart = strings.ToLower(config.Workspace.WeekStart)

	if config.Events.Channel == "" {
		config.Events.Channel = AppName + ":events"
	}

	if !validLevels[config.Log.Level] {
		config.Log.Level = "info"
	}
}

// defaultDatabasePath places the SQLite file in the XDG data directory.
func defaultDatabasePath() string {
	path, err := xdg.DataFile(filepath.Join(AppName, AppName+".db"))
	if err != nil {
		return "./" + AppName + ".db"
	}
	return path
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	// Validate server port
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d (must be between 1 and 65535)", cfg.Server.Port)
	}

	// Validate max body size
	if cfg.Server.MaxBodySize < 0 {
		return fmt.Errorf("invalid server.max_body_size: %d (must be non-negative)", cfg.Server.MaxBodySize)
	}
	if cfg.Server.MaxBodySize > 100<<20 { // 100MB max
		return fmt.Errorf("invalid server.max_body_size: %d (must be less than 100MB)", cfg.Server.MaxBodySize)
	}

	switch cfg.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", DriverPostgres)
		}
	default:
		return fmt.Errorf("invalid database.driver: %q (must be %q or %q)", cfg.Database.Driver, DriverSQLite, DriverPostgres)
	}

	if cfg.Workspace.WeekStart != "monday" && cfg.Workspace.WeekStart != "sunday" {
		return fmt.Errorf("invalid workspace.week_start: %q (must be monday or sunday)", cfg.Workspace.WeekStart)
	}

	// Validate API users
	if len(cfg.API.Users) == 0 && !cfg.API.AllowAnonymous {
		return fmt.Errorf("at least one api.users entry is required unless api.allow_anonymous is set")
	}
	seen := make(map[string]bool, len(cfg.API.Users))
	for i, u := range cfg.API.Users {
		if u.Key == "" {
			return fmt.Errorf("api.users[%d].key cannot be empty", i)
		}
		if u.Name == "" {
			return fmt.Errorf("api.users[%d].name cannot be empty", i)
		}
		if seen[u.Key] {
			return fmt.Errorf("api.users[%d].key is duplicated", i)
		}
		seen[u.Key] = true
	}

	return nil
}
