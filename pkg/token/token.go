// Package token splits SQL text into classified fragments for highlighting.
//
// The lexer is deliberately shallow: it never builds an AST and never fails.
// Every byte of the input ends up in exactly one token, so concatenating the
// token texts reproduces the input.
package token

// Class identifies how a fragment of SQL text should be presented.
type Class uint8

// Token classes.
const (
	Plain Class = iota
	Keyword
	String
	Number
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case Keyword:
		return "keyword"
	case String:
		return "string-literal"
	case Number:
		return "numeric-literal"
	default:
		return "plain"
	}
}

// Token is a contiguous fragment of the input and its class.
type Token struct {
	Text  string `json:"text"`
	Class Class  `json:"class"`
}

// Join concatenates token texts.
func Join(tokens []Token) string {
	n := 0
	for _, t := range tokens {
		n += len(t.Text)
	}
	buf := make([]byte, 0, n)
	for _, t := range tokens {
		buf = append(buf, t.Text...)
	}
	return string(buf)
}
