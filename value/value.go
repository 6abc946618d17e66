// Package value defines the in-memory tree that KON text is parsed into and
// serialized from.
//
// A Value is exactly one of Null, Bool, Int, Float, String, List or *Dict.
// Dispatch on the variant with a type switch or with Kind; the set is sealed.
package value

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	StringKind
	ListKind
	DictKind
)

var kindNames = [...]string{
	NullKind:   "null",
	BoolKind:   "bool",
	IntKind:    "int",
	FloatKind:  "float",
	StringKind: "string",
	ListKind:   "list",
	DictKind:   "dict",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Value is the interface implemented by every node of a value tree.
type Value interface {
	// Kind reports the variant.
	Kind() Kind
	// Interface returns the value as plain Go data: nil, bool, int64 or
	// *big.Int, float64, string, []any, map[string]any or map[any]any.
	Interface() any
	// String returns a short diagnostic representation.
	String() string
	value()
}

// Key is a Value that may be used as a Dict key. Only scalars implement it.
type Key interface {
	Value
	key()
}

// Null is the null value.
type Null struct{}

func (Null) value()         {}
func (Null) key()           {}
func (Null) Kind() Kind     { return NullKind }
func (Null) Interface() any { return nil }
func (Null) String() string { return "null" }

// Bool is a boolean value.
type Bool bool

func (Bool) value()           {}
func (Bool) key()             {}
func (Bool) Kind() Kind       { return BoolKind }
func (b Bool) Interface() any { return bool(b) }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// Int is an arbitrary-precision integer. The zero Int is 0.
//
// An Int never shares its big.Int with callers: constructors and Big copy.
type Int struct {
	n *big.Int
}

// NewInt returns an Int holding x.
func NewInt(x int64) Int { return Int{n: big.NewInt(x)} }

// NewBigInt returns an Int holding a copy of x. A nil x is 0.
func NewBigInt(x *big.Int) Int {
	if x == nil {
		return Int{}
	}
	return Int{n: new(big.Int).Set(x)}
}

func (i Int) bigInt() *big.Int {
	if i.n == nil {
		return new(big.Int)
	}
	return i.n
}

func (Int) value()     {}
func (Int) key()       {}
func (Int) Kind() Kind { return IntKind }

// Interface returns an int64 when the value fits, a new *big.Int otherwise.
func (i Int) Interface() any {
	if v, ok := i.Int64(); ok {
		return v
	}
	return i.Big()
}

func (i Int) String() string { return i.bigInt().String() }

// Big returns a copy of the integer.
func (i Int) Big() *big.Int { return new(big.Int).Set(i.bigInt()) }

// Int64 returns the value and whether it fits in an int64.
func (i Int) Int64() (int64, bool) {
	b := i.bigInt()
	if !b.IsInt64() {
		return 0, false
	}
	return b.Int64(), true
}

// Neg returns -i.
func (i Int) Neg() Int { return Int{n: new(big.Int).Neg(i.bigInt())} }

// Sign returns -1, 0 or +1.
func (i Int) Sign() int { return i.bigInt().Sign() }

// Cmp compares i and j numerically.
func (i Int) Cmp(j Int) int { return i.bigInt().Cmp(j.bigInt()) }

// Float is an IEEE-754 double, including the infinities and NaN.
type Float float64

func (Float) value()           {}
func (Float) key()             {}
func (Float) Kind() Kind       { return FloatKind }
func (f Float) Interface() any { return float64(f) }
func (f Float) String() string {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// String is a UTF-8 text value.
type String string

func (String) value()           {}
func (String) key()             {}
func (String) Kind() Kind       { return StringKind }
func (s String) Interface() any { return string(s) }
func (s String) String() string { return string(s) }

// List is an ordered sequence of values.
type List []Value

func (List) value()     {}
func (List) Kind() Kind { return ListKind }

func (l List) Interface() any {
	out := make([]any, len(l))
	for i, v := range l {
		out[i] = v.Interface()
	}
	return out
}

func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// IsScalar reports whether v is one of the key-eligible variants.
func IsScalar(v Value) bool {
	_, ok := v.(Key)
	return ok
}
