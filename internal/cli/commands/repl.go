package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpilot/internal/cli/output"
	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/monitor"
	"github.com/leapstack-labs/sqlpilot/internal/session"
)

const replPrompt = "sqlpilot> "

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Ask questions interactively",
		Long: `Start an interactive session. Each line is sent to the backend as a
natural-language question; lines starting with a dot are commands.

This is also what running sqlpilot without a subcommand does.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunREPL(cmd)
		},
	}
}

// RunREPL runs the interactive loop until .quit or end of input.
func RunREPL(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	repl := newREPL(cc.Engine, cc.Renderer)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     cc.Cfg.HistoryFile,
		AutoComplete:    repl.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	cc.Engine.Start(ctx)
	go repl.watchStatus(ctx, rl.Stderr())

	r := cc.Renderer
	r.Printf("sqlpilot (backend: %s)\n", cc.Engine.APIConfig().BaseURL)
	r.Println("Type a question, .help for commands, .quit to exit")
	r.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if repl.handleLine(ctx, line) {
			break
		}
	}
	return nil
}

// repl dispatches REPL input to the engine.
type repl struct {
	eng *engine.Engine
	r   *output.Renderer
}

func newREPL(eng *engine.Engine, r *output.Renderer) *repl {
	return &repl{eng: eng, r: r}
}

// watchStatus prints connectivity changes until ctx is done.
func (p *repl) watchStatus(ctx context.Context, w io.Writer) {
	ch := p.eng.Subscribe()
	defer p.eng.Unsubscribe(ch)

	var last *monitor.Status
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-ch:
			if !ok {
				return
			}
			if last != nil && last.Connected != st.Connected {
				if st.Connected {
					_, _ = fmt.Fprintf(w, "● database connected (%s %s)\n", st.DatabaseType, st.DatabaseName)
				} else {
					_, _ = fmt.Fprintln(w, "○ database disconnected")
				}
			}
			last = &st
		}
	}
}

// handleLine processes one input line and reports whether to quit.
func (p *repl) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ".") {
		p.ask(ctx, line)
		return false
	}

	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

	switch command {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(p.r.Out())
	case ".schema":
		p.schema(ctx, args)
	case ".tables":
		tables, _ := p.eng.Schema()
		p.report(renderSchema(p.r, tables))
	case ".browse":
		if rest == "" {
			p.usage(".browse <table>")
			break
		}
		p.run(p.eng.BrowseTable(ctx, rest))
	case ".explain":
		text, err := p.eng.Explain(ctx)
		if err != nil {
			p.report(err)
			break
		}
		p.r.Println(text)
	case ".validate":
		p.validate(ctx, rest)
	case ".save":
		p.save(ctx, rest)
	case ".bookmarks":
		p.report(renderBookmarks(p.r, p.eng.Bookmarks()))
	case ".run":
		id, err := resolveRef(rest, bookmarkIDs(p.eng.Bookmarks()))
		if err != nil {
			p.report(err)
			break
		}
		p.run(p.eng.RunBookmark(ctx, id))
	case ".delete":
		id, err := resolveRef(rest, bookmarkIDs(p.eng.Bookmarks()))
		if err != nil {
			p.report(err)
			break
		}
		if err := p.eng.DeleteBookmark(ctx, id); err != nil {
			p.report(err)
			break
		}
		p.r.Success("Deleted bookmark " + shortID(id))
	case ".history":
		p.report(renderHistory(p.r, p.eng.History()))
	case ".show":
		p.show(rest)
	case ".stats":
		p.report(renderStats(p.r, p.eng.Stats()))
	case ".export":
		p.export(args)
	case ".connect":
		p.connect(ctx, rest)
	case ".disconnect":
		p.eng.Disconnect(ctx)
		p.r.Success("Disconnected")
	case ".status":
		p.report(renderStatus(p.r, p.eng.Probe(ctx)))
	case ".config":
		p.config(ctx, args)
	case ".clear":
		_, _ = fmt.Fprint(p.r.Out(), "\033[H\033[2J")
	default:
		p.r.Error(fmt.Sprintf("Unknown command: %s (type .help for commands)", command))
	}
	return false
}

func (p *repl) ask(ctx context.Context, question string) {
	p.run(p.eng.Submit(ctx, question))
}

// run renders the outcome of a submission.
func (p *repl) run(_ session.HistoryItem, err error) {
	if err != nil {
		p.r.Error(engine.Message(err))
		return
	}
	p.report(renderDisplay(p.r, p.eng.Output()))
}

func (p *repl) schema(ctx context.Context, args []string) {
	if len(args) > 0 && args[0] != "refresh" {
		tables, _ := p.eng.Schema()
		for _, t := range tables {
			if t.Name == args[0] {
				p.report(renderTable(p.r, t))
				return
			}
		}
		p.r.Error(fmt.Sprintf("table %q not found", args[0]))
		return
	}
	tables, loading := p.eng.Schema()
	if len(args) > 0 || (len(tables) == 0 && !loading) {
		tables = p.eng.RefreshSchema(ctx)
	}
	p.report(renderSchema(p.r, tables))
}

func (p *repl) validate(ctx context.Context, sql string) {
	if sql == "" {
		sql = p.eng.Output().SQL
	}
	if sql == "" {
		p.usage(".validate [sql]")
		return
	}
	v, err := p.eng.Validate(ctx, sql)
	if err != nil {
		p.r.Error(engine.Message(err))
		return
	}
	renderValidation(p.r, v.Valid, v.Message)
}

func (p *repl) save(ctx context.Context, name string) {
	b, err := p.eng.SaveBookmark(ctx, name)
	switch {
	case errors.Is(err, session.ErrPersistenceWriteFailed):
		p.r.Warning(err.Error())
	case err != nil:
		p.report(err)
		return
	}
	p.r.Success(fmt.Sprintf("Saved bookmark %s (%s)", b.Name, shortID(b.ID)))
}

func (p *repl) show(ref string) {
	id, err := resolveRef(ref, historyIDs(p.eng.History()))
	if err != nil {
		p.report(err)
		return
	}
	item, err := p.eng.SelectHistory(id)
	if err != nil {
		p.report(err)
		return
	}
	if item.Error != "" {
		p.r.Error(item.Error)
		return
	}
	p.report(renderDisplay(p.r, p.eng.Output()))
}

func (p *repl) export(args []string) {
	if len(args) != 2 {
		p.usage(".export <csv|json|sql> <file>")
		return
	}
	if err := ExportFile(args[1], p.eng.Output(), strings.ToLower(args[0])); err != nil {
		p.report(err)
		return
	}
	p.r.Success("Exported to " + args[1])
}

func (p *repl) connect(ctx context.Context, uri string) {
	if uri == "" {
		p.usage(".connect <uri>")
		return
	}
	req, err := uriRequest(uri)
	if err != nil {
		p.report(err)
		return
	}
	msg, err := p.eng.Connect(ctx, req)
	if err != nil {
		p.report(err)
		return
	}
	p.r.Success(msg)
}

func (p *repl) config(ctx context.Context, args []string) {
	api := p.eng.APIConfig()
	if len(args) == 0 {
		p.r.Printf("base_url: %s\nendpoint: %s\n", api.BaseURL, api.Endpoint)
		return
	}
	api.BaseURL = args[0]
	if len(args) > 1 {
		api.Endpoint = args[1]
	}
	p.eng.Reconfigure(api)
	api = p.eng.APIConfig()
	p.r.Success(fmt.Sprintf("Using %s%s", api.BaseURL, api.Endpoint))
	p.report(renderStatus(p.r, p.eng.Probe(ctx)))
}

func (p *repl) usage(u string) {
	p.r.Error("Usage: " + u)
}

func (p *repl) report(err error) {
	if err != nil {
		p.r.Error(err.Error())
	}
}

// completer offers dot-commands, table names and export formats.
func (p *repl) completer() *readline.PrefixCompleter {
	tableNames := func(string) []string {
		tables, _ := p.eng.Schema()
		names := make([]string, len(tables))
		for i, t := range tables {
			names[i] = t.Name
		}
		return names
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".schema", readline.PcItem("refresh"), readline.PcItemDynamic(tableNames)),
		readline.PcItem(".tables"),
		readline.PcItem(".browse", readline.PcItemDynamic(tableNames)),
		readline.PcItem(".explain"),
		readline.PcItem(".validate"),
		readline.PcItem(".save"),
		readline.PcItem(".bookmarks"),
		readline.PcItem(".run"),
		readline.PcItem(".delete"),
		readline.PcItem(".history"),
		readline.PcItem(".show"),
		readline.PcItem(".stats"),
		readline.PcItem(".export", readline.PcItem(ExportCSV), readline.PcItem(ExportJSON), readline.PcItem(ExportSQL)),
		readline.PcItem(".connect"),
		readline.PcItem(".disconnect"),
		readline.PcItem(".status"),
		readline.PcItem(".config"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

// DotCommand documents one REPL dot-command.
type DotCommand struct {
	Usage       string
	Description string
}

// DotCommands lists the REPL dot-commands in help order.
var DotCommands = []DotCommand{
	{".help", "Show this help message"},
	{".schema [refresh|<table>]", "List tables, refetch them, or show one table"},
	{".tables", "List the cached tables"},
	{".browse <table>", "Show all records from a table"},
	{".explain", "Explain the displayed SQL"},
	{".validate [sql]", "Validate SQL (default: the displayed SQL)"},
	{".save <name>", "Save the displayed query as a bookmark"},
	{".bookmarks", "List saved queries"},
	{".run <n|id>", "Run a saved query"},
	{".delete <n|id>", "Delete a saved query"},
	{".history", "List this session's queries"},
	{".show <n|id>", "Redisplay a query from history"},
	{".stats", "Show query statistics"},
	{".export <csv|json|sql> <f>", "Export the displayed result"},
	{".connect <uri>", "Connect the backend to a database"},
	{".disconnect", "Close the database session"},
	{".status", "Probe the backend"},
	{".config [base_url [path]]", "Show or change the backend location"},
	{".clear", "Clear the screen"},
	{".quit / .exit", "Exit"},
}

func printREPLHelp(w io.Writer) {
	var b strings.Builder
	b.WriteString("\nCommands:\n")
	for _, c := range DotCommands {
		fmt.Fprintf(&b, "  %-27s %s\n", c.Usage, c.Description)
	}
	b.WriteString("\nAnything else is sent to the backend as a question.\n")
	_, _ = fmt.Fprintln(w, b.String())
}
