package kon

import (
	"fmt"

	"github.com/kaiserthe13th/kon/internal/parser"
)

// MultilineBehaviour selects how a string literal that spans several lines
// is treated when it carries no '<' or '|' marker.
type MultilineBehaviour int

const (
	// MultilineIgnore keeps the string exactly as written.
	MultilineIgnore MultilineBehaviour = iota
	// MultilineDedent removes one leading newline and the indentation
	// common to every line.
	MultilineDedent
	// MultilineError rejects the document.
	MultilineError
)

func (b MultilineBehaviour) String() string {
	switch b {
	case MultilineIgnore:
		return "ignore"
	case MultilineDedent:
		return "dedent"
	case MultilineError:
		return "error"
	}
	return fmt.Sprintf("MultilineBehaviour(%d)", int(b))
}

const defaultMaxDepth = parser.DefaultMaxDepth

// Option configures parsing and serialization.
type Option func(*options) error

type options struct {
	implicitDicts bool
	multiline     MultilineBehaviour
	pretty        bool
	indent        *int
	maxDepth      int
}

func newOptions(opts []Option) (*options, error) {
	o := &options{
		implicitDicts: true,
		maxDepth:      defaultMaxDepth,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *options) parserConfig() parser.Config {
	cfg := parser.Config{
		ImplicitDicts: o.implicitDicts,
		MaxDepth:      o.maxDepth,
	}
	switch o.multiline {
	case MultilineDedent:
		cfg.Multiline = parser.Dedent
	case MultilineError:
		cfg.Multiline = parser.Error
	}
	return cfg
}

// ImplicitDicts enables or disables the shorthand grammar in which a run of
// keys followed by a value, as in `a b c = 1`, stands for nested dicts.
// It is enabled by default. When disabled only `key = value` is accepted.
func ImplicitDicts(enabled bool) Option {
	return func(o *options) error {
		o.implicitDicts = enabled
		return nil
	}
}

// Multiline sets the default treatment of unmarked multiline strings.
func Multiline(b MultilineBehaviour) Option {
	return func(o *options) error {
		switch b {
		case MultilineIgnore, MultilineDedent, MultilineError:
			o.multiline = b
			return nil
		}
		return fmt.Errorf("kon: invalid multiline behaviour %d", int(b))
	}
}

// Pretty selects the indented multi-line output layout with the default
// indentation of two spaces.
func Pretty() Option {
	return func(o *options) error {
		o.pretty = true
		return nil
	}
}

// Indent selects the pretty layout with the given number of spaces per
// nesting level.
func Indent(spaces int) Option {
	return func(o *options) error {
		if spaces < 0 {
			return fmt.Errorf("kon: indent spaces cannot be negative")
		}
		o.pretty = true
		o.indent = &spaces
		return nil
	}
}

// MaxDepth limits the nesting depth accepted when parsing and produced when
// marshaling. This guards against stack exhaustion on hostile input and
// against reference cycles in Go values. The default is 1000.
//
// The depth n must be a positive integer.
func MaxDepth(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("kon: max depth must be a positive integer")
		}
		o.maxDepth = n
		return nil
	}
}
