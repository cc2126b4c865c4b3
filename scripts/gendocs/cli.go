package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/sqlpilot/internal/cli"
	"github.com/leapstack-labs/sqlpilot/internal/cli/commands"
)

// commandGroups orders the index. Commands not listed fall under "Other".
var commandGroups = []struct {
	Title string
	Names []string
}{
	{"Querying", []string{"ask", "repl", "explain", "validate", "schema", "tokens"}},
	{"Connection", []string{"connect", "disconnect", "status", "parse-uri"}},
	{"Bookmarks", []string{"bookmarks"}},
	{"Setup", []string{"init", "doctor", "serve", "version", "completion"}},
}

// generateCLIDocs writes index.md plus one page per top-level command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	cmds := documented(root)

	if err := os.WriteFile(filepath.Join(outDir, "index.md"), cliIndex(root, cmds), 0600); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	for _, cmd := range cmds {
		page := filepath.Join(outDir, cmd.Name()+".md")
		if err := os.WriteFile(page, commandPage(cmd), 0600); err != nil {
			return fmt.Errorf("failed to write page for %s: %w", cmd.Name(), err)
		}
	}
	log.Printf("  Generated index.md and %d command pages", len(cmds))

	return nil
}

// documented returns the visible children of cmd.
func documented(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, c := range cmd.Commands() {
		if c.Hidden || c.Name() == "help" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func cliIndex(root *cobra.Command, cmds []*cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for sqlpilot")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/sqlpilot/cmd/sqlpilot@latest")

	w.Header(2, "Commands")
	byName := make(map[string]*cobra.Command, len(cmds))
	for _, c := range cmds {
		byName[c.Name()] = c
	}
	for _, g := range commandGroups {
		var rows [][]string
		for _, name := range g.Names {
			if c, ok := byName[name]; ok {
				rows = append(rows, commandRow(c))
				delete(byName, name)
			}
		}
		if len(rows) > 0 {
			w.Header(3, g.Title)
			w.Table([]string{"Command", "Description"}, rows)
		}
	}
	var rest [][]string
	for _, c := range cmds {
		if _, ok := byName[c.Name()]; ok {
			rest = append(rest, commandRow(c))
		}
	}
	if len(rest) > 0 {
		w.Header(3, "Other")
		w.Table([]string{"Command", "Description"}, rest)
	}

	w.Header(2, "Global Options")
	writeFlagsTable(w, root.PersistentFlags())
	w.Paragraph(fmt.Sprintf("Every option can also be set in %s or through %s environment variables; "+
		"see the [configuration reference](/reference/configuration). Flags win.",
		InlineCode("sqlpilot.yaml"), InlineCode("SQLPILOT_*")))

	w.Header(2, "Interactive Shell")
	w.Paragraph("Plain lines are sent to the backend as questions. Lines starting with a dot are shell commands:")
	rows := make([][]string, 0, len(commands.DotCommands))
	for _, c := range commands.DotCommands {
		rows = append(rows, []string{InlineCode(c.Usage), c.Description})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Failure, including a rejected question or invalid SQL"},
	})

	return w.Bytes()
}

func commandRow(c *cobra.Command) []string {
	return []string{
		fmt.Sprintf("[%s](/cli/%s)", InlineCode(c.Name()), c.Name()),
		cleanDescription(c.Short),
	}
}

// commandPage documents cmd. Subcommands are inlined as sections.
func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cleanDescription(cmd.Short))
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	writeCommandBody(w, cmd, 2)

	for _, sub := range documented(cmd) {
		w.Header(2, sub.Name())
		writeCommandBody(w, sub, 3)
	}

	w.Paragraph("Global options are listed in the [CLI reference](/cli/).")
	return w.Bytes()
}

func writeCommandBody(w *MarkdownWriter, cmd *cobra.Command, level int) {
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cleanDescription(cmd.Short))
	}

	w.CodeBlock("bash", cmd.UseLine())

	if len(cmd.Aliases) > 0 {
		aliases := make([]string, len(cmd.Aliases))
		for i, a := range cmd.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.Paragraph("Aliases: " + strings.Join(aliases, ", "))
	}

	if flags := cmd.LocalNonPersistentFlags(); flags.HasAvailableFlags() {
		w.Header(level, "Options")
		writeFlagsTable(w, flags)
	}

	if cmd.Example != "" {
		w.Header(level, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}
}

func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		def := f.DefValue
		if def != "" && def != "false" && def != "0s" {
			def = InlineCode(def)
		} else {
			def = ""
		}
		rows = append(rows, []string{InlineCode(name), def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Flag", "Default", "Description"}, rows)
}

// dedent strips the indentation shared by all non-blank lines of s.
func dedent(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			lines[i] = l[indent:]
		} else {
			lines[i] = strings.TrimLeft(l, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
