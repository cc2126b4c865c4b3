package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpilot/internal/cli/config"
	"github.com/leapstack-labs/sqlpilot/internal/cli/output"
	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/state"
)

// Check statuses.
const (
	checkPass  = "pass"
	checkWarn  = "warn"
	checkError = "error"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, backend and local state",
		Long: `Run a health check of the sqlpilot setup.

The report covers:
- Configuration: which file was loaded and where the backend is expected
- Backend: reachability, database session, schema and validation endpoints
- Storage: whether the bookmark store opens and is migrated

Each failing check comes with a recommendation. The command exits non-zero
when any check is an error.`,
		Example: `  # Run health check
  sqlpilot doctor

  # Output as JSON
  sqlpilot doctor -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         SetupSummary  `json:"summary"`
	HealthChecks    []HealthCheck `json:"health_checks"`
	Score           int           `json:"score"`
	Recommendations []string      `json:"recommendations"`
	IssueCount      int           `json:"issue_count"`
}

// SetupSummary describes what was checked.
type SetupSummary struct {
	ConfigFile string `json:"config_file,omitempty"`
	BaseURL    string `json:"base_url"`
	Endpoint   string `json:"endpoint"`
	StatePath  string `json:"state_path"`
	Tables     int    `json:"tables"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	CheckID string   `json:"check_id"`
	Name    string   `json:"name"`
	Group   string   `json:"group"`
	Status  string   `json:"status"` // "pass", "warn", "error"
	Details []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command) error {
	cc := NewCommandContextWithoutEngine(cmd)
	cfg := cc.Cfg

	// The engine runs without a store so a broken state file is reported
	// rather than fatal.
	eng, err := engine.New(engine.Config{
		API:          apiConfig(cfg),
		Timeout:      cfg.API.Timeout,
		PollInterval: cfg.PollInterval,
		Logger:       cc.Logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	out := buildDoctorOutput(cmd.Context(), eng, cfg, config.GetConfigFileUsed())

	r := cc.Renderer
	switch r.Mode() {
	case output.ModeJSON:
		if err := r.JSON(out); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderDoctorMarkdown(r, out)
	default:
		renderDoctorText(r, out)
	}

	for _, c := range out.HealthChecks {
		if c.Status == checkError {
			return fmt.Errorf("doctor found %d issue(s)", out.IssueCount)
		}
	}
	return nil
}

func buildDoctorOutput(ctx context.Context, eng *engine.Engine, cfg *config.Config, cfgFile string) *DoctorOutput {
	api := eng.APIConfig()
	summary := SetupSummary{
		ConfigFile: cfgFile,
		BaseURL:    api.BaseURL,
		Endpoint:   api.Endpoint,
		StatePath:  cfg.StatePath,
	}

	var checks []HealthCheck
	checks = append(checks, checkConfig(cfgFile))
	checks = append(checks, checkStorage(ctx, cfg.StatePath))

	backendChecks, tables := checkBackend(ctx, eng)
	checks = append(checks, backendChecks...)
	summary.Tables = tables

	sort.SliceStable(checks, func(i, j int) bool {
		if checks[i].Group != checks[j].Group {
			return checks[i].Group < checks[j].Group
		}
		return checks[i].CheckID < checks[j].CheckID
	})

	issues := 0
	for _, c := range checks {
		if c.Status != checkPass {
			issues++
		}
	}

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    checks,
		Score:           calculateHealthScore(checks),
		Recommendations: generateRecommendations(checks),
		IssueCount:      issues,
	}
}

func checkConfig(cfgFile string) HealthCheck {
	c := HealthCheck{CheckID: "CF01", Name: "Config file", Group: "configuration", Status: checkPass}
	if cfgFile == "" {
		c.Status = checkWarn
		c.Details = []string{"no sqlpilot.yaml found, using defaults and environment"}
		return c
	}
	c.Details = []string{cfgFile}
	return c
}

func checkStorage(ctx context.Context, path string) HealthCheck {
	c := HealthCheck{CheckID: "ST01", Name: "Bookmark store", Group: "storage", Status: checkPass}
	if path == "" {
		c.Status = checkWarn
		c.Details = []string{"no state_path configured, bookmarks are not persisted"}
		return c
	}

	store := state.NewSQLiteStore(nil)
	if err := store.Open(path); err != nil {
		c.Status = checkError
		c.Details = []string{err.Error()}
		return c
	}
	defer func() { _ = store.Close() }()

	version, err := store.MigrationVersion()
	if err != nil {
		c.Status = checkError
		c.Details = []string{err.Error()}
		return c
	}
	c.Details = []string{fmt.Sprintf("%s (schema version %d)", path, version)}

	blobs, err := store.ListBlobs(ctx)
	if err != nil {
		c.Status = checkError
		c.Details = append(c.Details, err.Error())
		return c
	}
	for _, b := range blobs {
		c.Details = append(c.Details, fmt.Sprintf("%s: %d bytes, updated %s", b.Name, b.Size, b.UpdatedAt.Format(time.RFC3339)))
	}
	return c
}

func checkBackend(ctx context.Context, eng *engine.Engine) ([]HealthCheck, int) {
	reach := HealthCheck{CheckID: "BK01", Name: "Backend reachable", Group: "backend", Status: checkPass}
	db := HealthCheck{CheckID: "BK02", Name: "Database connected", Group: "backend", Status: checkPass}
	schema := HealthCheck{CheckID: "BK03", Name: "Schema available", Group: "backend", Status: checkPass}
	validate := HealthCheck{CheckID: "BK04", Name: "Validation endpoint", Group: "backend", Status: checkPass}

	st := eng.Probe(ctx)
	if !st.Reachable {
		reach.Status = checkError
		reach.Details = []string{st.Error}
		for _, c := range []*HealthCheck{&db, &schema, &validate} {
			c.Status = checkWarn
			c.Details = []string{"skipped, backend unreachable"}
		}
		return []HealthCheck{reach, db, schema, validate}, 0
	}
	reach.Details = []string{st.BaseURL}

	tables := 0
	if st.Connected {
		db.Details = []string{strings.TrimSpace(st.DatabaseType + " " + st.DatabaseName)}
		tables = len(eng.RefreshSchema(ctx))
		if tables == 0 {
			schema.Status = checkWarn
			schema.Details = []string{"the schema endpoint returned no tables"}
		} else {
			schema.Details = []string{fmt.Sprintf("%d tables", tables)}
		}
	} else {
		db.Status = checkWarn
		db.Details = []string{"the backend has no active database session"}
		schema.Status = checkWarn
		schema.Details = []string{"skipped, no database"}
	}

	if _, err := eng.Validate(ctx, "SELECT 1"); err != nil {
		validate.Status = checkWarn
		validate.Details = []string{engine.Message(err)}
	}

	return []HealthCheck{reach, db, schema, validate}, tables
}

// calculateHealthScore computes a health score from 0-100. Errors cost
// twice as much as warnings.
func calculateHealthScore(checks []HealthCheck) int {
	score := 100
	for _, check := range checks {
		switch check.Status {
		case checkError:
			score -= 30
		case checkWarn:
			score -= 15
		}
	}
	return max(score, 0)
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	for _, check := range checks {
		if check.Status == checkPass {
			continue
		}
		if rec := getRecommendation(check.CheckID); rec != "" {
			recommendations = append(recommendations, rec)
		}
	}
	return recommendations
}

// getRecommendation returns a recommendation for a specific check.
func getRecommendation(checkID string) string {
	switch checkID {
	case "CF01":
		return "Run 'sqlpilot init' to write a starter config file"
	case "ST01":
		return "Point state_path at a writable location"
	case "BK01":
		return "Start the backend or set api.base_url to where it listens"
	case "BK02":
		return "Run 'sqlpilot connect <uri>' to open a database session"
	case "BK03":
		return "Check that the connected database has tables the backend can read"
	case "BK04":
		return "Upgrade the backend to one that serves /api/validate"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Title.Render("sqlpilot Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	r.Println(styles.Title.Render("Setup"))
	if out.Summary.ConfigFile != "" {
		r.Printf("   Config: %s\n", out.Summary.ConfigFile)
	}
	r.Printf("   Backend: %s%s\n", out.Summary.BaseURL, out.Summary.Endpoint)
	r.Printf("   State: %s\n", out.Summary.StatePath)
	r.Println("")

	r.Println(styles.Title.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Title.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.Success.Render("✓")
		switch check.Status {
		case checkWarn:
			icon = styles.Warning.Render("!")
		case checkError:
			icon = styles.Error.Render("✗")
		}

		r.Printf("   %s %s: %s\n", icon, check.CheckID, check.Name)
		for _, detail := range check.Details {
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println(styles.Title.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Println("# sqlpilot Health Report")
	r.Println("")

	r.Println("## Setup")
	r.Println("")
	if out.Summary.ConfigFile != "" {
		r.Printf("- **Config**: %s\n", out.Summary.ConfigFile)
	}
	r.Printf("- **Backend**: %s%s\n", out.Summary.BaseURL, out.Summary.Endpoint)
	r.Printf("- **State**: %s\n", out.Summary.StatePath)
	r.Printf("- **Tables**: %d\n", out.Summary.Tables)
	r.Println("")

	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + titleCaser.String(currentGroup))
			r.Println("")
		}
		r.Printf("- **[%s]** %s: %s\n", strings.ToUpper(check.Status), check.CheckID, check.Name)
		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}
}
