package token

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Type is the type of a bare identifier token.
type Type string

const (
	IDENT Type = "IDENT" // a, key, $var, :sym, a-b

	// Keywords
	NULL  Type = "NULL"
	TRUE  Type = "TRUE"
	FALSE Type = "FALSE"
	INF   Type = "INF" // inf, infinity, in any letter case
	NAN   Type = "NAN" // nan, in any letter case
)

var keywords = map[string]Type{
	"null":  NULL,
	"true":  TRUE,
	"false": FALSE,
}

// LookupIdent checks the keywords table for an identifier.
// If the identifier is a keyword, it returns the keyword's token type.
// Otherwise, it returns IDENT.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	switch {
	case strings.EqualFold(ident, "inf"), strings.EqualFold(ident, "infinity"):
		return INF
	case strings.EqualFold(ident, "nan"):
		return NAN
	}
	return IDENT
}

// IsDigit reports whether ch starts a numeric literal.
func IsDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

// IsQuote reports whether ch opens a string literal.
func IsQuote(ch rune) bool {
	return ch == '"' || ch == '\''
}

// IsIdentStart reports whether ch can start a bare identifier.
// A leading '-' is a sign, never part of an identifier.
func IsIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_' || ch == '$' || ch == ':'
}

// IsIdentChar reports whether ch can continue a bare identifier.
func IsIdentChar(ch rune) bool {
	return IsIdentStart(ch) || unicode.IsDigit(ch) || ch == '-'
}

// IsBareIdent reports whether s reads back as the string s when written
// without quotes.
func IsBareIdent(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	for i, ch := range s {
		if i == 0 && !IsIdentStart(ch) {
			return false
		}
		if !IsIdentChar(ch) {
			return false
		}
	}
	return LookupIdent(s) == IDENT
}
