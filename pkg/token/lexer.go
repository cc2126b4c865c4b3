package token

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer splits SQL text on whitespace runs, the single characters ( ) , ;,
// single-quoted literals and bare integer runs. Text between delimiters is
// emitted as one fragment.
type Lexer struct {
	input string
	pos   int // current position in input
	start int // start of the pending fragment
	out   []Token
}

// NewLexer creates a lexer for input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize is shorthand for NewLexer(sql).Tokenize().
func Tokenize(sql string) []Token {
	return NewLexer(sql).Tokenize()
}

// Tokenize returns the classified fragments of the input. It always succeeds;
// an unterminated quote is simply plain text.
func (l *Lexer) Tokenize() []Token {
	l.pos, l.start, l.out = 0, 0, nil

	for l.pos < len(l.input) {
		end := l.matchDelimiter()
		if end == l.pos {
			_, size := utf8.DecodeRuneInString(l.input[l.pos:])
			l.pos += size
			continue
		}
		l.flush(l.pos)
		l.emit(l.input[l.pos:end])
		l.pos = end
		l.start = end
	}
	l.flush(l.pos)

	return l.out
}

// matchDelimiter returns the end offset of the delimiter starting at l.pos,
// or l.pos when none starts there.
func (l *Lexer) matchDelimiter() int {
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])

	switch {
	case unicode.IsSpace(r):
		end := l.pos + size
		for end < len(l.input) {
			r, size = utf8.DecodeRuneInString(l.input[end:])
			if !unicode.IsSpace(r) {
				break
			}
			end += size
		}
		return end
	case r == '(' || r == ')' || r == ',' || r == ';':
		return l.pos + 1
	case r == '\'':
		for end := l.pos + 1; end < len(l.input); end++ {
			if l.input[end] == '\'' {
				return end + 1
			}
		}
		return l.pos
	case isDigit(l.input[l.pos]):
		return l.matchInteger()
	}
	return l.pos
}

// matchInteger matches a digit run bounded by word boundaries on both sides.
func (l *Lexer) matchInteger() int {
	if l.pos > 0 && isWordByte(l.input[l.pos-1]) {
		return l.pos
	}
	end := l.pos
	for end < len(l.input) && isDigit(l.input[end]) {
		end++
	}
	if end < len(l.input) && isWordByte(l.input[end]) {
		return l.pos
	}
	return end
}

func (l *Lexer) flush(end int) {
	if end > l.start {
		l.emit(l.input[l.start:end])
	}
}

func (l *Lexer) emit(text string) {
	l.out = append(l.out, Token{Text: text, Class: Classify(text)})
}

// Classify returns the class of a single fragment. Keywords win over the
// literal shapes.
func Classify(text string) Class {
	switch {
	case IsKeyword(text):
		return Keyword
	case isQuoted(text):
		return String
	case isInteger(text):
		return Number
	default:
		return Plain
	}
}

// isQuoted matches a literal on a single line. A quoted run spanning a line
// break is still one fragment but stays plain.
func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' && !strings.ContainsAny(s, "\r\n")
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isWordByte matches the ASCII word class used for boundary checks.
func isWordByte(b byte) bool {
	return b == '_' || isDigit(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
