package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL))
	}
	if !strings.HasPrefix(c.API.Endpoint, "/") {
		errs = append(errs, fmt.Errorf("api.endpoint must start with '/', got %q", c.API.Endpoint))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval))
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		errs = append(errs, fmt.Errorf("output must be one of %s, got %q", strings.Join(OutputFormats, "|"), c.OutputFormat))
	}
	if !slices.Contains(ColorModes, c.Color) {
		errs = append(errs, fmt.Errorf("color must be one of %s, got %q", strings.Join(ColorModes, "|"), c.Color))
	}
	if !slices.Contains(LogLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("log_level must be one of %s, got %q", strings.Join(LogLevels, "|"), c.LogLevel))
	}

	return errors.Join(errs...)
}
