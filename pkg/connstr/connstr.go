// Package connstr parses database connection URIs of the form
//
//	scheme://[user[:password]@]host[:port]/database[?ignored]
//
// into a Descriptor. Parsing is pure and never panics; anything that does not
// fit the grammar yields a *ParseError.
package connstr

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/leapstack-labs/sqlpilot/pkg/dialect"
)

// DefaultHost is substituted when the URI has an empty host.
const DefaultHost = "localhost"

// ErrParseFailure is matched by every *ParseError.
var ErrParseFailure = errors.New("invalid connection string")

// ParseError describes why a URI was rejected.
type ParseError struct {
	URI    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrParseFailure.Error(), e.Reason)
}

// Is reports whether target is ErrParseFailure.
func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailure
}

// Descriptor is a structured connection target.
type Descriptor struct {
	Dialect  string `json:"db_type"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// uriPattern captures scheme, user, password, host, port and database.
// The query string is matched and dropped.
var uriPattern = regexp.MustCompile(`^(\w+)://(?:([^:@]+)(?::([^@]*))?@)?([^:/]*)(?::(\d+))?/(.+?)(?:\?.*)?$`)

// Parse parses uri into a Descriptor. An explicit port must lie in 1-65535,
// which is stricter than the digit run the URI grammar allows.
func Parse(uri string) (Descriptor, error) {
	m := uriPattern.FindStringSubmatch(uri)
	if m == nil {
		return Descriptor{}, &ParseError{URI: uri, Reason: "expected scheme://[user[:password]@]host[:port]/database"}
	}

	d := Descriptor{
		Dialect:  dialect.Normalize(m[1]),
		Username: m[2],
		Password: m[3],
		Host:     m[4],
		Database: m[6],
	}
	if d.Host == "" {
		d.Host = DefaultHost
	}

	if m[5] != "" {
		port, err := strconv.Atoi(m[5])
		if err != nil || port < 1 || port > 65535 {
			return Descriptor{}, &ParseError{URI: uri, Reason: fmt.Sprintf("port %q out of range", m[5])}
		}
		d.Port = port
	} else {
		d.Port = dialect.DefaultPort(d.Dialect)
	}

	return d, nil
}

// Apply parses uri and returns the result, or current unchanged together with
// the parse error.
func Apply(current Descriptor, uri string) (Descriptor, error) {
	d, err := Parse(uri)
	if err != nil {
		return current, err
	}
	return d, nil
}

// WithDialect returns a copy of d switched to the named dialect. An unset port,
// or one still at the previous dialect's default, moves to the new default;
// an explicit port is kept.
func (d Descriptor) WithDialect(name string) Descriptor {
	next := dialect.Normalize(name)
	if next == d.Dialect {
		return d
	}
	if d.Port == 0 || d.Port == dialect.DefaultPort(d.Dialect) {
		d.Port = dialect.DefaultPort(next)
	}
	d.Dialect = next
	return d
}

// Address returns host:port, or just the host when no port applies.
func (d Descriptor) Address() string {
	if d.Port == 0 {
		return d.Host
	}
	return d.Host + ":" + strconv.Itoa(d.Port)
}

// Redacted returns the descriptor in URI form with the password masked.
func (d Descriptor) Redacted() string {
	auth := ""
	if d.Username != "" {
		auth = d.Username
		if d.Password != "" {
			auth += ":****"
		}
		auth += "@"
	}
	host := d.Address()
	if host == DefaultHost && d.Port == 0 {
		host = ""
	}
	return fmt.Sprintf("%s://%s%s/%s", d.Dialect, auth, host, d.Database)
}
