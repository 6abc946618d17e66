package kon

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/kaiserthe13th/kon/internal/formatter"
	"github.com/kaiserthe13th/kon/internal/marshaler"
	"github.com/kaiserthe13th/kon/internal/parser"
	"github.com/kaiserthe13th/kon/value"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Marshaler is the interface implemented by types that
// can marshal themselves into valid KON.
type Marshaler = marshaler.Marshaler

// Parse parses the KON-encoded data into a value tree.
func Parse(data []byte, opts ...Option) (value.Value, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return o.parse(data)
}

// Marshal returns the KON encoding of v.
func Marshal(v any, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, opts...)
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses the KON-encoded data and stores the result
// in the value pointed to by v.
//
// A *value.Value receives the tree itself and a *any its native form:
// map[string]any, or map[any]any when a dict has non-string keys, []any,
// int64, *big.Int for integers beyond int64, float64, string, bool and nil.
// Structs are filled by matching dict keys against field names or their
// `kon` tags, case-insensitively. Integers that do not fit the target type
// are an error. Null leaves the target untouched.
func Unmarshal(data []byte, v any, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	tree, err := o.parse(data)
	if err != nil {
		return err
	}
	return decodeValue(tree, v, o.maxDepth)
}

// Format parses data and writes it back out in canonical form. Comments
// and the input layout are not preserved.
func Format(data []byte, opts ...Option) ([]byte, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	tree, err := o.parse(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := o.format(&buf, tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *options) parse(data []byte) (value.Value, error) {
	return parser.New(sourceText(data), o.parserConfig()).Parse()
}

func (o *options) format(w io.Writer, v value.Value) error {
	f := formatter.New(w, formatter.Config{
		Pretty:   o.pretty,
		Indent:   o.indent,
		MaxDepth: o.maxDepth,
	})
	return f.Format(v)
}

// sourceText strips a leading byte order mark. Ill-formed input is passed
// through as is so the parser can report where it goes wrong.
func sourceText(data []byte) string {
	if !utf8.Valid(data) {
		return string(data)
	}
	text, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(text)
}
