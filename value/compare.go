package value

import (
	"cmp"
	"strings"
)

// Equal reports whether a and b are the same tree. Floats compare with
// IEEE-754 semantics, so a NaN is never equal to anything. Dicts are equal
// when they hold the same keys with equal values, in any order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a := a.(type) {
	case Null:
		return true
	case Bool:
		return a == b.(Bool)
	case Int:
		return a.Cmp(b.(Int)) == 0
	case Float:
		return a == b.(Float)
	case String:
		return a == b.(String)
	case List:
		bl := b.(List)
		if len(a) != len(bl) {
			return false
		}
		for i := range a {
			if !Equal(a[i], bl[i]) {
				return false
			}
		}
		return true
	case *Dict:
		bd := b.(*Dict)
		if a.Len() != bd.Len() {
			return false
		}
		for k, v := range a.All() {
			w, ok := bd.Get(k)
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	}
	return false
}

// CompareKeys orders keys first by kind, then by value. It returns -1, 0
// or +1. NaN sorts before every other float.
func CompareKeys(a, b Key) int {
	if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}
	switch a := a.(type) {
	case Bool:
		switch {
		case a == b.(Bool):
			return 0
		case !bool(a):
			return -1
		}
		return 1
	case Int:
		return a.Cmp(b.(Int))
	case Float:
		return cmp.Compare(float64(a), float64(b.(Float)))
	case String:
		return strings.Compare(string(a), string(b.(String)))
	}
	return 0
}
