package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by WriteStarter when the target already exists.
var ErrConfigExists = errors.New("config file already exists")

const starterHeader = `# sqlpilot configuration
# Environment variables override these values, e.g. SQLPILOT_API__BASE_URL.
`

type starterAPI struct {
	BaseURL  string `yaml:"base_url"`
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"`
}

type starterServe struct {
	Addr  string `yaml:"addr"`
	Watch bool   `yaml:"watch"`
}

type starterFile struct {
	API          starterAPI         `yaml:"api"`
	PollInterval string             `yaml:"poll_interval"`
	StatePath    string             `yaml:"state_path"`
	HistoryFile  string             `yaml:"history_file"`
	Output       string             `yaml:"output"`
	Color        string             `yaml:"color"`
	LogLevel     string             `yaml:"log_level"`
	Serve        starterServe       `yaml:"serve"`
	Connection   *starterConnection `yaml:"connection,omitempty"`
}

type starterConnection struct {
	URI string `yaml:"uri"`
}

// StarterOptions customizes the generated file.
type StarterOptions struct {
	BaseURL       string
	ConnectionURI string
	Force         bool
}

// RenderStarter returns the YAML body of a starter config file.
func RenderStarter(opts StarterOptions) ([]byte, error) {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	sf := starterFile{
		API: starterAPI{
			BaseURL:  base,
			Endpoint: DefaultEndpoint,
			Timeout:  DefaultTimeout.String(),
		},
		PollInterval: DefaultPollInterval.String(),
		StatePath:    DefaultStateFile,
		HistoryFile:  DefaultHistoryFile,
		Output:       DefaultOutput,
		Color:        DefaultColor,
		LogLevel:     DefaultLogLevel,
		Serve:        starterServe{Addr: DefaultServeAddr, Watch: true},
	}
	if opts.ConnectionURI != "" {
		sf.Connection = &starterConnection{URI: opts.ConnectionURI}
	}

	var buf bytes.Buffer
	buf.WriteString(starterHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(sf); err != nil {
		return nil, fmt.Errorf("encode starter config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode starter config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteStarter writes a starter config file to path. It refuses to overwrite
// an existing file unless opts.Force is set.
func WriteStarter(path string, opts StarterOptions) error {
	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}
	data, err := RenderStarter(opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
