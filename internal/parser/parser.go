package parser

import (
	stderrors "errors"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/kaiserthe13th/kon/errors"
	"github.com/kaiserthe13th/kon/internal/scanner"
	"github.com/kaiserthe13th/kon/internal/token"
	"github.com/kaiserthe13th/kon/value"
	"github.com/lithammer/dedent"
)

// Multiline selects what happens to a string literal whose body contains a
// raw newline and that carries no explicit marker.
type Multiline int

const (
	// Ignore keeps the string as written.
	Ignore Multiline = iota
	// Dedent strips one leading newline and the common indentation.
	Dedent
	// Error fails the parse.
	Error
)

// DefaultMaxDepth is the nesting limit used when Config.MaxDepth is zero.
const DefaultMaxDepth = 1000

// Config controls the accepted grammar.
type Config struct {
	ImplicitDicts bool
	Multiline     Multiline
	MaxDepth      int
}

// Parser turns one KON source into a value tree. A Parser performs a single
// parse and is not safe for concurrent use.
type Parser struct {
	s     *scanner.Scanner
	cfg   Config
	depth int
}

// New creates a new parser over src.
func New(src string, cfg Config) *Parser {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return &Parser{s: scanner.New(src), cfg: cfg}
}

// part is a value produced inside a sequence, with the offset it started at
// and the number of containers nested in it, counting itself.
type part struct {
	v      value.Value
	offset int
	height int
}

// Parse parses the whole source and returns the document's value.
func (p *Parser) Parse() (value.Value, error) {
	if err := p.s.CheckUTF8(); err != nil {
		return nil, err
	}
	pt, err := p.parseSequence(true)
	if err != nil {
		return nil, err
	}
	return pt.v, nil
}

// parseSequence reads values until the end of the current sequence. At the
// top level newlines and commas separate values and only the end of input
// stops the loop; nested sequences stop before a newline, ',' ')' or '}'.
func (p *Parser) parseSequence(top bool) (part, error) {
	start := p.s.Offset()
	var parts []part
loop:
	for {
		p.s.SkipSpace(top)
		ch := p.s.Peek()
		offset := p.s.Offset()
		switch {
		case ch == scanner.EOF:
			break loop
		case ch == '#':
			p.s.SkipComment()
		case ch == '\n' || ch == ',':
			if !top {
				break loop
			}
			p.s.Advance()
		case ch == ')' || ch == '}':
			if !top {
				break loop
			}
			return part{}, p.s.Errorf(errors.UnexpectedCharacter, offset, string(ch), "unexpected character %q", ch)
		case ch == '{' || ch == '(':
			pt, err := p.parseContainer()
			if err != nil {
				return part{}, err
			}
			if p.cfg.ImplicitDicts {
				if parts, err = p.collapse(parts, pt, true); err != nil {
					return part{}, err
				}
			} else {
				parts = append(parts, pt)
			}
		case ch == '=':
			p.s.Advance()
			if err := p.enter(offset); err != nil {
				return part{}, err
			}
			pt, err := p.parseSequence(false)
			p.leave()
			if err != nil {
				return part{}, err
			}
			pt.offset = offset
			if parts, err = p.collapse(parts, pt, p.cfg.ImplicitDicts); err != nil {
				return part{}, err
			}
		default:
			v, err := p.parseOperand()
			if err != nil {
				return part{}, err
			}
			parts = append(parts, part{v: v, offset: offset})
		}
	}

	switch len(parts) {
	case 0:
		if top {
			return part{}, p.s.Errorf(errors.EmptySource, start, "", "empty or otherwise invalid source")
		}
		return part{}, p.s.Errorf(errors.UnexpectedToken, start, string(p.s.Peek()), "expected a value")
	case 1:
		return parts[0], nil
	}
	if top {
		if merged, ok := mergeDicts(parts); ok {
			return part{merged, start, maxHeight(parts)}, nil
		}
	}
	return part{}, p.unsetKey(parts)
}

// collapse wraps leaf in the pending scalars at the end of parts, most
// recent first, and appends the result. With all false at most one scalar
// is consumed. Each wrap adds a level of nesting, so long shorthand chains
// are held to MaxDepth like bracketed ones.
func (p *Parser) collapse(parts []part, leaf part, all bool) ([]part, error) {
	result := leaf
	for len(parts) > 0 {
		last := parts[len(parts)-1]
		key, ok := last.v.(value.Key)
		if !ok {
			break
		}
		parts = parts[:len(parts)-1]
		if err := p.checkHeight(result.height+1, last.offset); err != nil {
			return nil, err
		}
		d := value.NewDict()
		d.Set(key, result.v)
		result = part{d, last.offset, result.height + 1}
		if !all {
			break
		}
	}
	return append(parts, result), nil
}

// parseContainer reads a list or a dict at the cursor.
func (p *Parser) parseContainer() (part, error) {
	if p.s.Peek() == '{' {
		return p.parseDict()
	}
	return p.parseList()
}

// parseOperand reads a single value that does not take part in collapsing:
// a signed number, a number, a string, an identifier, a list or a dict.
func (p *Parser) parseOperand() (value.Value, error) {
	ch := p.s.Peek()
	offset := p.s.Offset()
	switch {
	case ch == '+' || ch == '-':
		return p.parseSigned()
	case token.IsDigit(ch):
		return p.parseNumber()
	case token.IsQuote(ch):
		return p.parseString(p.cfg.Multiline)
	case ch == '<' && token.IsQuote(p.s.PeekAt(1)):
		p.s.Advance()
		return p.parseString(Dedent)
	case ch == '|' && token.IsQuote(p.s.PeekAt(1)):
		p.s.Advance()
		return p.parseString(Ignore)
	case token.IsIdentStart(ch):
		return identValue(p.s.ReadIdentifier()), nil
	case ch == '{' || ch == '(':
		pt, err := p.parseContainer()
		return pt.v, err
	case ch == scanner.EOF:
		return nil, p.s.Errorf(errors.UnexpectedToken, offset, "", "unexpected end of input")
	}
	return nil, p.s.Errorf(errors.UnexpectedCharacter, offset, string(ch), "unexpected character %q", ch)
}

// parseSigned applies a run of unary signs to the operand that follows.
func (p *Parser) parseSigned() (value.Value, error) {
	offset := p.s.Offset()
	sign := p.s.Peek()
	p.s.Advance()
	// The operand may start on the next line.
	p.s.SkipSpace(true)

	if err := p.enter(offset); err != nil {
		return nil, err
	}
	operand, err := p.parseOperand()
	p.leave()
	if err != nil {
		return nil, err
	}

	switch n := operand.(type) {
	case value.Int:
		if sign == '-' {
			return n.Neg(), nil
		}
		return n, nil
	case value.Float:
		if sign == '-' {
			return -n, nil
		}
		return n, nil
	}
	verb := "negate"
	if sign == '+' {
		verb = "apply unary plus to"
	}
	return nil, p.s.Errorf(errors.NegationType, offset, string(sign), "cannot %s a(n) %s, only an int or float", verb, operand.Kind())
}

func (p *Parser) parseNumber() (value.Value, error) {
	offset := p.s.Offset()
	n, err := p.s.ReadNumber()
	if err != nil {
		return nil, err
	}
	if n.Float {
		f, err := strconv.ParseFloat(n.Digits, 64)
		if err != nil && !isRangeError(err) {
			return nil, p.s.Errorf(errors.InvalidNumber, offset, n.Literal, "invalid float %q: %v", n.Literal, err)
		}
		return value.Float(f), nil
	}
	i, ok := new(big.Int).SetString(n.Digits, n.Base)
	if !ok {
		return nil, p.s.Errorf(errors.InvalidNumber, offset, n.Literal, "invalid integer %q", n.Literal)
	}
	return value.NewBigInt(i), nil
}

// isRangeError reports whether err is a ParseFloat overflow or underflow,
// in which case the returned value is already ±Inf or ±0.
func isRangeError(err error) bool {
	var numErr *strconv.NumError
	return stderrors.As(err, &numErr) && numErr.Err == strconv.ErrRange
}

func (p *Parser) parseString(behaviour Multiline) (value.Value, error) {
	offset := p.s.Offset()
	text, multiline, err := p.s.ReadString()
	if err != nil {
		return nil, err
	}
	if !multiline {
		return value.String(text), nil
	}
	switch behaviour {
	case Dedent:
		text = dedent.Dedent(strings.TrimPrefix(text, "\n"))
	case Error:
		return nil, p.s.Errorf(errors.MultilineString, offset, "", "multiline strings are not allowed")
	}
	return value.String(text), nil
}

func identValue(ident string) value.Value {
	switch token.LookupIdent(ident) {
	case token.NULL:
		return value.Null{}
	case token.TRUE:
		return value.Bool(true)
	case token.FALSE:
		return value.Bool(false)
	case token.INF:
		return value.Float(math.Inf(1))
	case token.NAN:
		return value.Float(math.NaN())
	}
	return value.String(ident)
}

// parseElements reads the comma or newline separated values between an
// opening delimiter at the cursor and the matching close.
func (p *Parser) parseElements(close rune) ([]part, error) {
	open := p.s.Offset()
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer p.leave()
	p.s.Advance() // consume the opening delimiter

	var elems []part
	for {
		p.skipBlank()
		switch p.s.Peek() {
		case close:
			p.s.Advance()
			return elems, nil
		case scanner.EOF:
			return nil, p.unterminated(open, close)
		}

		offset := p.s.Offset()
		pt, err := p.parseSequence(false)
		if err != nil {
			return nil, err
		}
		pt.offset = offset
		elems = append(elems, pt)

		p.s.SkipSpace(false)
		switch ch := p.s.Peek(); ch {
		case '\n', ',':
			p.s.Advance()
		case close:
			p.s.Advance()
			return elems, nil
		case scanner.EOF:
			return nil, p.unterminated(open, close)
		default:
			return nil, p.s.Errorf(errors.UnexpectedToken, p.s.Offset(), string(ch),
				"expected a newline, %q or a comma, but found %q", close, ch)
		}
	}
}

func (p *Parser) parseList() (part, error) {
	offset := p.s.Offset()
	elems, err := p.parseElements(')')
	if err != nil {
		return part{}, err
	}
	height := 1 + maxHeight(elems)
	if err := p.checkHeight(height, offset); err != nil {
		return part{}, err
	}
	l := make(value.List, len(elems))
	for i, e := range elems {
		l[i] = e.v
	}
	return part{l, offset, height}, nil
}

func (p *Parser) parseDict() (part, error) {
	offset := p.s.Offset()
	elems, err := p.parseElements('}')
	if err != nil {
		return part{}, err
	}
	if len(elems) == 0 {
		return part{value.NewDict(), offset, 1}, nil
	}
	merged, ok := mergeDicts(elems)
	if !ok {
		return part{}, p.unsetKey(elems)
	}
	// Every element is a dict, so merging adds no level.
	height := maxHeight(elems)
	if err := p.checkHeight(height, offset); err != nil {
		return part{}, err
	}
	return part{merged, offset, height}, nil
}

func maxHeight(parts []part) int {
	h := 0
	for _, pt := range parts {
		h = max(h, pt.height)
	}
	return h
}

// mergeDicts folds parts left to right when every part is a dict.
func mergeDicts(parts []part) (*value.Dict, bool) {
	merged := value.NewDict()
	for _, pt := range parts {
		d, ok := pt.v.(*value.Dict)
		if !ok {
			return nil, false
		}
		merged.Merge(d)
	}
	return merged, true
}

// unsetKey reports the last value of parts that is not a dict, naming the
// values that precede it.
func (p *Parser) unsetKey(parts []part) error {
	idx := len(parts) - 1
	for i := len(parts) - 1; i >= 0; i-- {
		if _, ok := parts[i].v.(*value.Dict); !ok {
			idx = i
			break
		}
	}
	dangling := parts[idx]
	var path []string
	for _, pt := range parts[:idx] {
		path = append(path, pt.v.String())
	}
	msg := "unset key " + dangling.v.String()
	if len(path) > 0 {
		msg += " after (" + strings.Join(path, " ") + ")"
	}
	return p.s.Errorf(errors.UnsetKey, dangling.offset, dangling.v.String(), "%s", msg)
}

func (p *Parser) unterminated(open int, close rune) error {
	return p.s.Errorf(errors.UnexpectedToken, p.s.Offset(), "", "missing %q for the delimiter opened at offset %d", close, open)
}

// skipBlank skips whitespace, newlines and comments between elements.
func (p *Parser) skipBlank() {
	for {
		p.s.SkipSpace(true)
		if p.s.Peek() != '#' {
			return
		}
		p.s.SkipComment()
	}
}

func (p *Parser) enter(offset int) error {
	p.depth++
	if p.depth > p.cfg.MaxDepth {
		return p.s.Errorf(errors.MaxDepth, offset, "", "exceeded max depth of %d", p.cfg.MaxDepth)
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

// checkHeight rejects a value nested deeper than MaxDepth.
func (p *Parser) checkHeight(height, offset int) error {
	if height > p.cfg.MaxDepth {
		return p.s.Errorf(errors.MaxDepth, offset, "", "exceeded max depth of %d", p.cfg.MaxDepth)
	}
	return nil
}
