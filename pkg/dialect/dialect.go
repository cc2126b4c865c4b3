// Package dialect describes the database flavors a backend can connect to.
//
// A dialect carries the scheme names that identify it in a connection URI and
// the port a server of that flavor listens on by default. Built-in dialects
// are registered when the package is loaded.
package dialect

import "strings"

// Dialect is an immutable database flavor description.
type Dialect struct {
	// Name is the canonical lower-case scheme, e.g. "postgresql".
	Name string
	// DisplayName is used in status output.
	DisplayName string
	// DefaultPort is 0 for file-based dialects.
	DefaultPort int
	// Aliases are alternative schemes that normalize to Name.
	Aliases []string
	// FileBased dialects have no host or port.
	FileBased bool
}

// HasDefaultPort reports whether the dialect defines a network port.
func (d *Dialect) HasDefaultPort() bool {
	return d.DefaultPort > 0
}

// Builder assembles a Dialect.
type Builder struct {
	d Dialect
}

// NewDialect starts a builder for the named dialect.
func NewDialect(name string) *Builder {
	name = strings.ToLower(name)
	return &Builder{d: Dialect{Name: name, DisplayName: name}}
}

// Display sets the human-readable name.
func (b *Builder) Display(name string) *Builder {
	b.d.DisplayName = name
	return b
}

// Port sets the default port.
func (b *Builder) Port(port int) *Builder {
	b.d.DefaultPort = port
	return b
}

// Aliases adds alternative schemes.
func (b *Builder) Aliases(names ...string) *Builder {
	for _, n := range names {
		b.d.Aliases = append(b.d.Aliases, strings.ToLower(n))
	}
	return b
}

// FileBased marks the dialect as having no network endpoint.
func (b *Builder) FileBased() *Builder {
	b.d.FileBased = true
	b.d.DefaultPort = 0
	return b
}

// Build returns the finished dialect.
func (b *Builder) Build() *Dialect {
	d := b.d
	d.Aliases = append([]string(nil), b.d.Aliases...)
	return &d
}
