// Package config provides configuration management for the sqlpilot CLI.
//
// Values are layered, lowest to highest precedence: built-in defaults, the
// YAML config file, SQLPILOT_* environment variables, then explicitly set
// command-line flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	API          APIConfig     `koanf:"api"`
	PollInterval time.Duration `koanf:"poll_interval"`
	StatePath    string        `koanf:"state_path"`
	HistoryFile  string        `koanf:"history_file"`
	OutputFormat string        `koanf:"output"`
	Color        string        `koanf:"color"`
	LogLevel     string        `koanf:"log_level"`
	Verbose      bool          `koanf:"verbose"`
	Serve        ServeConfig   `koanf:"serve"`
	// Connection is an optional default target for the connect command.
	Connection ConnectionConfig `koanf:"connection"`
}

// APIConfig locates the text-to-SQL backend.
type APIConfig struct {
	BaseURL  string        `koanf:"base_url"`
	Endpoint string        `koanf:"endpoint"`
	Timeout  time.Duration `koanf:"timeout"`
}

// ServeConfig holds configuration for the local HTTP bridge.
type ServeConfig struct {
	Addr  string `koanf:"addr"`
	Watch bool   `koanf:"watch"`
}

// ConnectionConfig is a database target, either as a URI or as fields.
type ConnectionConfig struct {
	URI      string `koanf:"uri"`
	Type     string `koanf:"type"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// IsZero reports whether no connection target is configured.
func (c ConnectionConfig) IsZero() bool {
	return c == ConnectionConfig{}
}

// Output formats.
const (
	OutputTable    = "table"
	OutputJSON     = "json"
	OutputCSV      = "csv"
	OutputMarkdown = "md"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default configuration values.
const (
	DefaultBaseURL      = "http://localhost:8000"
	DefaultEndpoint     = "/api/text-to-sql"
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 5 * time.Second
	DefaultStateFile    = "~/.sqlpilot/state.db"
	DefaultHistoryFile  = "~/.sqlpilot/repl_history"
	DefaultOutput       = OutputTable
	DefaultColor        = ColorAuto
	DefaultLogLevel     = "info"
	DefaultServeAddr    = "127.0.0.1:8766"

	// MemoryState keeps bookmarks in memory only.
	MemoryState = ":memory:"
)

// OutputFormats lists the accepted output formats.
var OutputFormats = []string{OutputTable, OutputJSON, OutputCSV, OutputMarkdown}

// ColorModes lists the accepted color modes.
var ColorModes = []string{ColorAuto, ColorAlways, ColorNever}

// LogLevels lists the accepted log levels.
var LogLevels = []string{"debug", "info", "warn", "error"}
