package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/sqlpilot/pkg/token"
)

// Styles holds the lipgloss styles used by the renderer.
type Styles struct {
	Keyword lipgloss.Style
	String  lipgloss.Style
	Number  lipgloss.Style
	Plain   lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Title   lipgloss.Style

	Online  lipgloss.Style
	Offline lipgloss.Style
}

// NewStyles builds the style set bound to a lipgloss renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Keyword: r.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		String:  r.NewStyle().Foreground(lipgloss.Color("114")),
		Number:  r.NewStyle().Foreground(lipgloss.Color("215")),
		Plain:   r.NewStyle(),

		Success: r.NewStyle().Foreground(lipgloss.Color("42")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("196")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
		Title:   r.NewStyle().Bold(true),

		Online:  r.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("42")).Padding(0, 1),
		Offline: r.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("196")).Padding(0, 1),
	}
}

// ForClass returns the style for a token class.
func (s Styles) ForClass(c token.Class) lipgloss.Style {
	switch c {
	case token.Keyword:
		return s.Keyword
	case token.String:
		return s.String
	case token.Number:
		return s.Number
	default:
		return s.Plain
	}
}
