package dialect

import (
	"sort"
	"strings"
	"sync"
)

// Dialect registry
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]*Dialect)
	aliases    = make(map[string]string)
)

// Register registers a dialect and its aliases in the global registry.
func Register(d *Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[d.Name] = d
	for _, a := range d.Aliases {
		aliases[a] = d.Name
	}
}

// Normalize lower-cases a scheme and resolves aliases. Unknown schemes pass
// through lower-cased.
func Normalize(scheme string) string {
	s := strings.ToLower(scheme)
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

// Get returns a dialect by name or alias.
func Get(name string) (*Dialect, bool) {
	n := Normalize(name)
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[n]
	return d, ok
}

// DefaultPort returns the default port for name, or 0 when the dialect is
// unknown or has no port.
func DefaultPort(name string) int {
	if d, ok := Get(name); ok {
		return d.DefaultPort
	}
	return 0
}

// List returns all registered dialect names (sorted).
func List() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
