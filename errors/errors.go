// Package errors holds the error types returned by the kon codec.
package errors

import (
	"fmt"
	"reflect"
)

// Kind classifies a ParseError. A Kind is itself an error, so callers can
// test for a class of failure with errors.Is(err, errors.UnsetKey).
type Kind int

const (
	_ Kind = iota
	// EmptySource: the input is empty, whitespace, or holds no value.
	EmptySource
	// UnexpectedCharacter: a character that starts no production.
	UnexpectedCharacter
	// UnterminatedString: end of input before the closing quote.
	UnterminatedString
	// UnterminatedEscape: end of input right after a backslash.
	UnterminatedEscape
	// InvalidEscape: a malformed \x or \u payload.
	InvalidEscape
	// InvalidNumber: a numeric literal that cannot be converted.
	InvalidNumber
	// InvalidUTF8: the source is not valid UTF-8.
	InvalidUTF8
	// MultilineString: a raw newline inside an unmarked string while
	// multiline strings are configured as errors.
	MultilineString
	// UnsetKey: a dict or the document ends with keys that have no value.
	UnsetKey
	// NegationType: a sign applied to something other than a number.
	NegationType
	// UnexpectedToken: a structural mismatch such as a missing delimiter.
	UnexpectedToken
	// MaxDepth: the input nests deeper than the configured limit.
	MaxDepth
)

var kindNames = map[Kind]string{
	EmptySource:         "empty source",
	UnexpectedCharacter: "unexpected character",
	UnterminatedString:  "unterminated string",
	UnterminatedEscape:  "unterminated escape",
	InvalidEscape:       "invalid escape",
	InvalidNumber:       "invalid number",
	InvalidUTF8:         "invalid utf-8",
	MultilineString:     "multiline string",
	UnsetKey:            "unset key",
	NegationType:        "negation type",
	UnexpectedToken:     "unexpected token",
	MaxDepth:            "max depth exceeded",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Error() string { return "kon: " + k.String() }

// ParseError describes why a parse failed and where.
type ParseError struct {
	Kind    Kind
	Message string
	// Offset is the byte offset into the source where the error was detected.
	Offset int
	Line   int
	Column int
	// Text is the offending source text, when there is any.
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("kon: parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Kind }

// UnsupportedTypeError is returned when a Go value has no KON representation.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "kon: unsupported type for marshaling: " + e.Type.String()
}

// A MarshalerError represents an error from calling a MarshalKON method.
type MarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *MarshalerError) Error() string {
	return "kon: error calling MarshalKON for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *MarshalerError) Unwrap() error { return e.Err }

// An UnmarshalerError represents an error from calling an UnmarshalKON method.
type UnmarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *UnmarshalerError) Error() string {
	return "kon: error calling UnmarshalKON for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *UnmarshalerError) Unwrap() error { return e.Err }
