package output

import (
	"strings"

	"github.com/leapstack-labs/sqlpilot/pkg/token"
)

// Highlight returns sql with each token styled by class. Without color the
// input is returned unchanged.
func (r *Renderer) Highlight(sql string) string {
	if !r.color {
		return sql
	}
	var b strings.Builder
	for _, t := range token.Tokenize(sql) {
		if t.Class == token.Plain {
			b.WriteString(t.Text)
			continue
		}
		b.WriteString(r.styles.ForClass(t.Class).Render(t.Text))
	}
	return b.String()
}

// SQL writes highlighted sql followed by a newline.
func (r *Renderer) SQL(sql string) {
	r.Println(r.Highlight(sql))
}
