package testutil

import (
	"fmt"
	"math"

	"github.com/google/go-cmp/cmp"
	"github.com/kaiserthe13th/kon/value"
)

// ValueOptions compares value trees structurally: dicts entry by entry in
// order, ints numerically and NaN floats as equal to each other.
var ValueOptions = cmp.Options{
	cmp.Transformer("Entries", func(d *value.Dict) []value.Entry {
		return d.Entries()
	}),
	cmp.Comparer(func(a, b value.Int) bool {
		return a.Cmp(b) == 0
	}),
	cmp.Comparer(func(a, b value.Float) bool {
		if math.IsNaN(float64(a)) && math.IsNaN(float64(b)) {
			return true
		}
		return a == b && math.Signbit(float64(a)) == math.Signbit(float64(b))
	}),
}

// Diff returns a human-readable report of the differences between two value
// trees, or "" when they are the same.
func Diff(want, got value.Value) string {
	return cmp.Diff(want, got, ValueOptions)
}

// Dict builds a dict from alternating keys and values. Plain Go scalars are
// converted with V.
func Dict(kv ...any) *value.Dict {
	if len(kv)%2 != 0 {
		panic("testutil.Dict: odd number of arguments")
	}
	d := value.NewDict()
	for i := 0; i < len(kv); i += 2 {
		k, ok := V(kv[i]).(value.Key)
		if !ok {
			panic(fmt.Sprintf("testutil.Dict: %v cannot be a key", kv[i]))
		}
		d.Set(k, V(kv[i+1]))
	}
	return d
}

// List builds a list, converting plain Go scalars with V.
func List(items ...any) value.List {
	l := make(value.List, len(items))
	for i, item := range items {
		l[i] = V(item)
	}
	return l
}

// V converts a Go literal used in tests into a value.
func V(x any) value.Value {
	switch x := x.(type) {
	case value.Value:
		return x
	case nil:
		return value.Null{}
	case bool:
		return value.Bool(x)
	case int:
		return value.NewInt(int64(x))
	case int64:
		return value.NewInt(x)
	case float64:
		return value.Float(x)
	case string:
		return value.String(x)
	}
	panic(fmt.Sprintf("testutil.V: unsupported %T", x))
}
