package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/sqlpilot/internal/cli/config"
	"github.com/leapstack-labs/sqlpilot/pkg/dialect"
)

// configDescriptions documents each configuration key.
var configDescriptions = map[string]string{
	"api.base_url":  "Backend base URL",
	"api.endpoint":  "Path of the text-to-SQL endpoint",
	"api.timeout":   "Timeout for each backend request",
	"poll_interval": "How often the backend health is probed",
	"state_path":    "Bookmark store (`:memory:` keeps nothing)",
	"history_file":  "REPL line history",
	"output":        "Output format: table, json, csv or md",
	"color":         "Color output: auto, always or never",
	"log_level":     "Log level: debug, info, warn or error",
	"verbose":       "Shorthand for debug logging",
	"serve.addr":    "Listen address of the HTTP bridge",
	"serve.watch":   "Reload the backend location when the config file changes",
}

// generateConfigDocs writes the configuration reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "Configuration reference for sqlpilot")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("Settings are read from %s in the working directory (or `--config`), "+
		"then from `%s` environment variables, then from flags. Later sources win.",
		InlineCode(config.ConfigFileNames[0]), config.EnvPrefix))

	defaults := config.Defaults()
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{
			InlineCode(k),
			InlineCode(envName(k)),
			InlineCode(fmt.Sprint(defaults[k])),
			configDescriptions[k],
		})
	}
	w.Header(2, "Keys")
	w.Table([]string{"Key", "Environment", "Default", "Description"}, rows)

	w.Header(2, "Connection")
	w.Paragraph("The optional `connection` section is used by `sqlpilot connect` when no target is given. " +
		"Either `uri` or `type` plus fields may be set; `${VAR}` references are expanded.")

	dialectRows := make([][]string, 0)
	for _, name := range dialect.List() {
		port := ""
		if p := dialect.DefaultPort(name); p > 0 {
			port = fmt.Sprint(p)
		}
		dialectRows = append(dialectRows, []string{InlineCode(name), port})
	}
	w.Table([]string{"Type", "Default port"}, dialectRows)

	return os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600)
}

// envName maps a config key to its environment variable.
func envName(key string) string {
	return config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}
