package formatter

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kaiserthe13th/kon/errors"
	"github.com/kaiserthe13th/kon/internal/token"
	"github.com/kaiserthe13th/kon/value"
)

const (
	defaultIndent   = 2
	defaultMaxDepth = 1000
)

// Config controls the output layout.
type Config struct {
	Pretty bool
	// Indent is the number of spaces per level in pretty mode. Nil means 2.
	Indent   *int
	MaxDepth int
}

// Formatter writes a value tree as KON text to an output stream.
type Formatter struct {
	w        io.Writer
	pretty   bool
	indent   string
	depth    int // indentation level of the current line
	nesting  int
	maxDepth int
	err      error
}

// New returns a new formatter that writes to w.
func New(w io.Writer, cfg Config) *Formatter {
	spaces := defaultIndent
	if cfg.Indent != nil {
		spaces = *cfg.Indent
	}
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	return &Formatter{
		w:        w,
		pretty:   cfg.Pretty,
		indent:   strings.Repeat(" ", max(spaces, 0)),
		maxDepth: maxDepth,
	}
}

// context tells writeValue where a value sits in its parent.
type context int

const (
	inRoot context = iota
	inEntry
	inList
)

// Format writes the KON representation of v. In pretty mode a document
// root dict is written one entry per line without braces.
func (f *Formatter) Format(v value.Value) error {
	f.writeValue(v, inRoot)
	return f.err
}

func (f *Formatter) write(s string) {
	if f.err != nil {
		return
	}
	_, f.err = io.WriteString(f.w, s)
}

func (f *Formatter) newline() {
	f.write("\n")
	for range f.depth {
		f.write(f.indent)
	}
}

func (f *Formatter) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

func (f *Formatter) writeValue(v value.Value, ctx context) {
	if f.err != nil {
		return
	}
	switch v := v.(type) {
	case nil, value.Null:
		f.write("null")
	case value.Bool:
		f.write(strconv.FormatBool(bool(v)))
	case value.Int:
		f.write(v.String())
	case value.Float:
		f.write(FormatFloat(float64(v)))
	case value.String:
		s, err := Quote(string(v))
		if err != nil {
			f.fail(err)
			return
		}
		f.write(s)
	case value.List:
		f.nest(func() { f.writeList(v) })
	case *value.Dict:
		f.nest(func() { f.writeDict(v, ctx) })
	default:
		f.fail(&errors.UnsupportedTypeError{Type: reflect.TypeOf(v)})
	}
}

func (f *Formatter) nest(write func()) {
	f.nesting++
	if f.nesting > f.maxDepth {
		f.fail(fmt.Errorf("kon: exceeded max depth of %d", f.maxDepth))
		return
	}
	write()
	f.nesting--
}

func (f *Formatter) writeList(l value.List) {
	if len(l) == 0 {
		f.write("()")
		return
	}
	if !f.pretty || len(l) == 1 {
		// A single element stays inline and compact.
		pretty := f.pretty
		f.pretty = false
		f.write("(")
		for i, elem := range l {
			if i > 0 {
				f.write(", ")
			}
			f.writeValue(elem, inList)
		}
		f.write(")")
		f.pretty = pretty
		return
	}

	f.write("(")
	f.depth++
	for _, elem := range l {
		f.newline()
		f.writeValue(elem, inList)
	}
	f.depth--
	f.newline()
	f.write(")")
}

func (f *Formatter) writeDict(d *value.Dict, ctx context) {
	entries := d.Entries()
	switch {
	case len(entries) == 0:
		f.write("{}")
	case !f.pretty:
		f.write("{")
		for i, e := range entries {
			if i > 0 {
				f.write(", ")
			}
			f.writeEntry(e)
		}
		f.write("}")
	case ctx == inRoot:
		for i, e := range entries {
			if i > 0 {
				f.newline()
			}
			f.writeEntry(e)
		}
	case len(entries) == 1 && ctx == inEntry:
		// The shorthand form: a b c = 1.
		f.writeEntry(entries[0])
	case len(entries) == 1:
		f.write("{")
		f.writeEntry(entries[0])
		f.write("}")
	default:
		f.write("{")
		f.depth++
		for _, e := range entries {
			f.newline()
			f.writeEntry(e)
		}
		f.depth--
		f.newline()
		f.write("}")
	}
}

func (f *Formatter) writeEntry(e value.Entry) {
	f.writeValue(e.Key, inEntry)
	switch e.Value.(type) {
	case *value.Dict:
		f.write(" ")
	case value.List:
	default:
		f.write(" = ")
	}
	f.writeValue(e.Value, inEntry)
}

// FormatFloat returns the shortest text that parses back to x. The result
// always reads as a float: it carries a '.' or an exponent.
func FormatFloat(x float64) string {
	switch {
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	case math.IsNaN(x):
		return "nan"
	}
	format := byte('f')
	if abs := math.Abs(x); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		format = 'e'
	}
	s := strconv.FormatFloat(x, format, -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Quote returns s as a bare identifier when it reads back unchanged,
// otherwise as a double-quoted literal.
func Quote(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("kon: string %q is not valid utf-8", s)
	}
	if token.IsBareIdent(s) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String(), nil
}
