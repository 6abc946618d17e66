package scanner

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kaiserthe13th/kon/errors"
	"github.com/kaiserthe13th/kon/internal/token"
)

// EOF is returned by Peek and PeekAt past the end of the source.
const EOF rune = -1

// Scanner is a cursor over an immutable KON source. It reads lexemes on
// demand for the parser; there is no separate token stream.
type Scanner struct {
	src string
	pos int // byte offset of the current rune
}

// New creates and returns a new Scanner.
func New(src string) *Scanner {
	return &Scanner{src: src}
}

// Number is a numeric lexeme.
type Number struct {
	Literal string // the full source text, including any base prefix
	Digits  string // Literal without the base prefix
	Base    int    // 2, 8, 10 or 16
	Float   bool
}

// Offset returns the byte offset of the current rune.
func (s *Scanner) Offset() int { return s.pos }

// EOF reports whether the whole source has been consumed.
func (s *Scanner) EOF() bool { return s.pos >= len(s.src) }

// Peek returns the current rune without consuming it.
func (s *Scanner) Peek() rune {
	if s.pos >= len(s.src) {
		return EOF
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return r
}

// PeekAt returns the rune n positions after the current one.
func (s *Scanner) PeekAt(n int) rune {
	i := s.pos
	for ; n > 0 && i < len(s.src); n-- {
		_, size := utf8.DecodeRuneInString(s.src[i:])
		i += size
	}
	if i >= len(s.src) {
		return EOF
	}
	r, _ := utf8.DecodeRuneInString(s.src[i:])
	return r
}

// Advance consumes the current rune.
func (s *Scanner) Advance() {
	if s.pos >= len(s.src) {
		return
	}
	_, size := utf8.DecodeRuneInString(s.src[s.pos:])
	s.pos += size
}

// CheckUTF8 returns an InvalidUTF8 error at the first invalid byte.
func (s *Scanner) CheckUTF8() error {
	for i := 0; i < len(s.src); {
		r, size := utf8.DecodeRuneInString(s.src[i:])
		if r == utf8.RuneError && size == 1 {
			return s.Errorf(errors.InvalidUTF8, i, s.src[i:i+1], "invalid utf-8 byte 0x%02x", s.src[i])
		}
		i += size
	}
	return nil
}

// SkipSpace consumes whitespace. Newlines are consumed only when newlines
// is true.
func (s *Scanner) SkipSpace(newlines bool) {
	for {
		ch := s.Peek()
		if ch == EOF || !unicode.IsSpace(ch) || (ch == '\n' && !newlines) {
			return
		}
		s.Advance()
	}
}

// SkipComment consumes a '#' comment up to, but not including, the newline.
func (s *Scanner) SkipComment() {
	for ch := s.Peek(); ch != '\n' && ch != EOF; ch = s.Peek() {
		s.Advance()
	}
}

// ReadIdentifier consumes a bare identifier.
func (s *Scanner) ReadIdentifier() string {
	start := s.pos
	if token.IsIdentStart(s.Peek()) {
		s.Advance()
	}
	for token.IsIdentChar(s.Peek()) {
		s.Advance()
	}
	return s.src[start:s.pos]
}

// ReadNumber consumes a numeric literal starting at a digit.
func (s *Scanner) ReadNumber() (Number, error) {
	start := s.pos
	if s.Peek() == '0' {
		if base := basePrefix(s.PeekAt(1)); base != 0 {
			s.Advance()
			s.Advance()
			digitsStart := s.pos
			for isBaseDigit(s.Peek(), base) {
				s.Advance()
			}
			if s.pos == digitsStart {
				lit := s.src[start:s.pos]
				return Number{}, s.Errorf(errors.InvalidNumber, start, lit, "missing digits in base-%d literal %q", base, lit)
			}
			return Number{Literal: s.src[start:s.pos], Digits: s.src[digitsStart:s.pos], Base: base}, nil
		}
	}

	n := Number{Base: 10}
	s.consumeDigits()
	if s.Peek() == '.' {
		n.Float = true
		s.Advance()
		s.consumeDigits()
	}
	if ch := s.Peek(); ch == 'e' || ch == 'E' {
		n.Float = true
		s.Advance()
		if ch := s.Peek(); ch == '+' || ch == '-' {
			s.Advance()
		}
		expStart := s.pos
		s.consumeDigits()
		if s.pos == expStart {
			lit := s.src[start:s.pos]
			return Number{}, s.Errorf(errors.InvalidNumber, start, lit, "missing exponent digits in %q", lit)
		}
	}
	n.Literal = s.src[start:s.pos]
	n.Digits = n.Literal
	return n, nil
}

func (s *Scanner) consumeDigits() {
	for token.IsDigit(s.Peek()) {
		s.Advance()
	}
}

func basePrefix(ch rune) int {
	switch ch {
	case 'x':
		return 16
	case 'o':
		return 8
	case 'b':
		return 2
	}
	return 0
}

func isBaseDigit(ch rune, base int) bool {
	switch base {
	case 2:
		return ch == '0' || ch == '1'
	case 8:
		return '0' <= ch && ch <= '7'
	case 16:
		_, ok := hexValue(ch)
		return ok
	}
	return token.IsDigit(ch)
}

func hexValue(ch rune) (rune, bool) {
	switch {
	case '0' <= ch && ch <= '9':
		return ch - '0', true
	case 'a' <= ch && ch <= 'f':
		return ch - 'a' + 10, true
	case 'A' <= ch && ch <= 'F':
		return ch - 'A' + 10, true
	}
	return 0, false
}

// ReadString consumes a quoted string starting at its opening quote and
// returns the decoded text. multiline reports whether the body contained a
// raw (unescaped) newline.
func (s *Scanner) ReadString() (text string, multiline bool, err error) {
	start := s.pos
	quote := s.Peek()
	s.Advance() // consume opening quote

	var buf strings.Builder
	for {
		ch := s.Peek()
		switch ch {
		case EOF:
			return "", false, s.Errorf(errors.UnterminatedString, start, s.src[start:], "unterminated string")
		case quote:
			s.Advance() // consume closing quote
			return buf.String(), multiline, nil
		case '\\':
			if err := s.readEscape(&buf); err != nil {
				return "", false, err
			}
		default:
			if ch == '\n' {
				multiline = true
			}
			buf.WriteRune(ch)
			s.Advance()
		}
	}
}

func (s *Scanner) readEscape(buf *strings.Builder) error {
	start := s.pos
	s.Advance() // consume backslash
	ch := s.Peek()
	switch ch {
	case EOF:
		return s.Errorf(errors.UnterminatedEscape, start, `\`, "unterminated escape sequence in string")
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'x', 'u':
		digits := 2
		if ch == 'u' {
			digits = 4
		}
		s.Advance()
		r, ok := s.readHex(digits)
		if !ok {
			return s.Errorf(errors.InvalidEscape, start, s.src[start:s.pos], "invalid \\%c escape %q", ch, s.src[start:s.pos])
		}
		if utf8.ValidRune(r) {
			buf.WriteRune(r)
			return nil
		}
		return s.Errorf(errors.InvalidEscape, start, s.src[start:s.pos], "invalid unicode scalar value in %q", s.src[start:s.pos])
	case '\r':
		if s.PeekAt(1) == '\n' {
			s.Advance()
		}
	default:
		if !unicode.IsSpace(ch) {
			// \\, \", \' and any unknown escape yield the character itself.
			buf.WriteRune(ch)
		}
	}
	s.Advance()
	return nil
}

// readHex consumes up to n hex digits; ok is false unless all n are present.
func (s *Scanner) readHex(n int) (rune, bool) {
	var val rune
	for range n {
		d, ok := hexValue(s.Peek())
		if !ok {
			return 0, false
		}
		val = val*16 + d
		s.Advance()
	}
	return val, true
}

// Position converts a byte offset into a 1-based line and column.
func (s *Scanner) Position(offset int) (line, column int) {
	if offset > len(s.src) {
		offset = len(s.src)
	}
	prefix := s.src[:offset]
	line = strings.Count(prefix, "\n") + 1
	lineStart := strings.LastIndexByte(prefix, '\n') + 1
	column = utf8.RuneCountInString(prefix[lineStart:]) + 1
	return line, column
}

// Errorf builds a ParseError located at offset.
func (s *Scanner) Errorf(kind errors.Kind, offset int, text, format string, args ...any) *errors.ParseError {
	line, col := s.Position(offset)
	return &errors.ParseError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
		Line:    line,
		Column:  col,
		Text:    text,
	}
}
