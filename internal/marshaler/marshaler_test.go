package marshaler_test

import (
	stderrors "errors"
	"math"
	"math/big"
	"net/netip"
	"strconv"
	"testing"

	"github.com/kaiserthe13th/kon/errors"
	"github.com/kaiserthe13th/kon/internal/marshaler"
	"github.com/kaiserthe13th/kon/internal/testutil"
	"github.com/kaiserthe13th/kon/value"
	"github.com/stretchr/testify/require"
)

var (
	d = testutil.Dict
	l = testutil.List
)

func requireValue(t *testing.T, want value.Value, got value.Value) {
	t.Helper()
	if diff := testutil.Diff(want, got); diff != "" {
		require.Fail(t, "value mismatch (-want +got)", diff)
	}
}

func marshal(t *testing.T, v any) value.Value {
	t.Helper()
	res, err := marshaler.Marshal(v, 0)
	require.NoError(t, err)
	return res
}

func TestMarshal_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected value.Value
	}{
		{"Nil", nil, value.Null{}},
		{"String", "hello", value.String("hello")},
		{"Integer", 123, value.NewInt(123)},
		{"Int8", int8(-8), value.NewInt(-8)},
		{"Float", 3.14, value.Float(3.14)},
		{"Float32", float32(0.5), value.Float(0.5)},
		{"Infinity", math.Inf(1), value.Float(math.Inf(1))},
		{"Boolean", true, value.Bool(true)},
		{"Value passthrough", value.String("x"), value.String("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireValue(t, tt.expected, marshal(t, tt.input))
		})
	}
}

func TestMarshal_BigIntegers(t *testing.T) {
	t.Run("Uint64 beyond int64", func(t *testing.T) {
		v := marshal(t, uint64(math.MaxUint64))
		require.Equal(t, "18446744073709551615", v.String())
	})

	t.Run("big.Int", func(t *testing.T) {
		n, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
		require.Equal(t, n.String(), marshal(t, n).String())
		require.Equal(t, n.String(), marshal(t, *n).String())

		var nilInt *big.Int
		require.Equal(t, value.Null{}, marshal(t, nilInt))
	})
}

func TestMarshal_SlicesAndArrays(t *testing.T) {
	requireValue(t, l(1, 2, 3), marshal(t, []int{1, 2, 3}))
	requireValue(t, l("a", "b"), marshal(t, [2]string{"a", "b"}))
	requireValue(t, l(), marshal(t, []int{}))
	requireValue(t, l(1, "two", nil), marshal(t, []any{1, "two", nil}))

	var nilSlice []int
	require.Equal(t, value.Null{}, marshal(t, nilSlice))
}

func TestMarshal_Maps(t *testing.T) {
	t.Run("Sorted string keys", func(t *testing.T) {
		v := marshal(t, map[string]int{"b": 2, "a": 1, "c": 3})
		requireValue(t, d("a", 1, "b", 2, "c", 3), v)
		require.Equal(t, []value.Key{value.String("a"), value.String("b"), value.String("c")}, v.(*value.Dict).Keys())
	})

	t.Run("Scalar keys", func(t *testing.T) {
		v := marshal(t, map[any]string{2: "two", "x": "ex", true: "yes", nil: "none", 1.5: "float"})
		keys := v.(*value.Dict).Keys()
		require.Len(t, keys, 5)
		for i := 1; i < len(keys); i++ {
			require.Negative(t, value.CompareKeys(keys[i-1], keys[i]))
		}
	})

	t.Run("Int keys", func(t *testing.T) {
		requireValue(t, d(-1, "a", 4, "b"), marshal(t, map[int]string{4: "b", -1: "a"}))
	})

	t.Run("Nil map", func(t *testing.T) {
		var input map[string]any
		require.Equal(t, value.Null{}, marshal(t, input))
	})

	t.Run("Unsupported key", func(t *testing.T) {
		_, err := marshaler.Marshal(map[[2]int]string{{1, 2}: "a"}, 0)
		var ute *errors.UnsupportedTypeError
		require.True(t, stderrors.As(err, &ute))
		require.Equal(t, "[2]int", ute.Type.String())
	})
}

type Embedded struct {
	ID   int
	Kind string `kon:"kind"`
}

func TestMarshal_Structs(t *testing.T) {
	type testStruct struct {
		FirstName  string
		LastName   string `kon:"surname"`
		Age        int
		unexported bool
		Ignored    string `kon:"-"`
		Notes      *string
		Tags       []string `kon:"tags,omitempty"`
	}

	t.Run("Basic struct", func(t *testing.T) {
		notes := "some notes"
		input := testStruct{
			FirstName:  "John",
			LastName:   "Doe",
			Age:        42,
			unexported: true,
			Ignored:    "should be ignored",
			Notes:      &notes,
		}
		v := marshal(t, input)
		requireValue(t, d("FirstName", "John", "surname", "Doe", "Age", 42, "Notes", "some notes"), v)
	})

	t.Run("Struct with nil pointer field", func(t *testing.T) {
		v := marshal(t, testStruct{FirstName: "Jane", Tags: []string{"x"}})
		notes, ok := v.(*value.Dict).Get(value.String("Notes"))
		require.True(t, ok)
		require.Equal(t, value.Null{}, notes)
		tags, ok := v.(*value.Dict).Get(value.String("tags"))
		require.True(t, ok)
		requireValue(t, l("x"), tags)
	})

	t.Run("Embedded struct", func(t *testing.T) {
		type outer struct {
			Embedded
			Name string
			Kind string
		}
		v := marshal(t, outer{Embedded: Embedded{ID: 7, Kind: "inner"}, Name: "n", Kind: "outer"})
		requireValue(t, d("Name", "n", "Kind", "outer", "ID", 7, "kind", "inner"), v)
	})

	t.Run("Nil embedded pointer", func(t *testing.T) {
		type outer struct {
			*Embedded
			Name string
		}
		requireValue(t, d("Name", "n"), marshal(t, outer{Name: "n"}))
	})
}

func TestMarshal_Pointers(t *testing.T) {
	s := "hello"
	requireValue(t, value.String("hello"), marshal(t, &s))

	var ps *string
	require.Equal(t, value.Null{}, marshal(t, ps))

	type simple struct{ A int }
	requireValue(t, d("A", 10), marshal(t, &simple{A: 10}))
}

type point struct{ X, Y int }

func (p point) MarshalKON() ([]byte, error) {
	return []byte("{x = " + strconv.Itoa(p.X) + ", y = " + strconv.Itoa(p.Y) + "}"), nil
}

type broken struct{}

func (*broken) MarshalKON() ([]byte, error) { return []byte("a b c"), nil }

type failing struct{}

func (failing) MarshalKON() ([]byte, error) { return nil, stderrors.New("boom") }

func TestMarshal_Marshaler(t *testing.T) {
	requireValue(t, d("x", 1, "y", 2), marshal(t, point{1, 2}))
	requireValue(t, l(d("x", 1, "y", 2)), marshal(t, []*point{{1, 2}}))

	var np *point
	require.Equal(t, value.Null{}, marshal(t, np))

	_, err := marshaler.Marshal(&broken{}, 0)
	var me *errors.MarshalerError
	require.True(t, stderrors.As(err, &me))
	require.True(t, stderrors.Is(err, errors.UnsetKey))

	_, err = marshaler.Marshal(failing{}, 0)
	require.EqualError(t, err, "kon: error calling MarshalKON for type marshaler_test.failing: boom")
}

func TestMarshal_TextMarshaler(t *testing.T) {
	addr := netip.MustParseAddr("192.168.0.1")
	requireValue(t, value.String("192.168.0.1"), marshal(t, addr))
	requireValue(t, d("addr", "192.168.0.1"), marshal(t, map[string]netip.Addr{"addr": addr}))
}

func TestMarshal_Unsupported(t *testing.T) {
	for _, input := range []any{make(chan int), func() {}, complex(1, 2)} {
		_, err := marshaler.Marshal(input, 0)
		var ute *errors.UnsupportedTypeError
		require.True(t, stderrors.As(err, &ute), "input %T", input)
	}

	var nilChan chan int
	_, err := marshaler.Marshal(nilChan, 0)
	require.Error(t, err)
}

func TestMarshal_MaxDepth(t *testing.T) {
	type node struct {
		Next *node
	}
	n := &node{}
	n.Next = n

	_, err := marshaler.Marshal(n, 50)
	require.EqualError(t, err, "kon: exceeded max depth of 50")

	_, err = marshaler.Marshal([][]int{{1}}, 3)
	require.NoError(t, err)
	_, err = marshaler.Marshal([][]int{{1}}, 2)
	require.Error(t, err)
}
