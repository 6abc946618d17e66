package marshaler

import (
	"encoding"
	"fmt"
	"math/big"
	"reflect"
	"slices"

	"github.com/kaiserthe13th/kon/errors"
	"github.com/kaiserthe13th/kon/internal/mapper"
	"github.com/kaiserthe13th/kon/internal/parser"
	"github.com/kaiserthe13th/kon/value"
)

// Marshaler is implemented by types that encode themselves as KON text.
type Marshaler interface {
	MarshalKON() ([]byte, error)
}

var (
	valueType         = reflect.TypeFor[value.Value]()
	marshalerType     = reflect.TypeFor[Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	bigIntType        = reflect.TypeFor[big.Int]()
	bigIntPtrType     = reflect.TypeFor[*big.Int]()
	dictPtrType       = reflect.TypeFor[*value.Dict]()
)

// Marshal converts a Go value into a value tree. Nesting deeper than
// maxDepth, which includes reference cycles, is an error.
func Marshal(v any, maxDepth int) (value.Value, error) {
	if maxDepth <= 0 {
		maxDepth = parser.DefaultMaxDepth
	}
	m := &marshaler{maxDepth: maxDepth}
	return m.marshal(reflect.ValueOf(v))
}

type marshaler struct {
	depth    int
	maxDepth int
}

func (m *marshaler) marshal(v reflect.Value) (value.Value, error) {
	if !v.IsValid() {
		return value.Null{}, nil
	}
	m.depth++
	defer func() { m.depth-- }()
	if m.depth > m.maxDepth {
		return nil, fmt.Errorf("kon: exceeded max depth of %d", m.maxDepth)
	}

	switch v.Type() {
	case bigIntType:
		b := v.Interface().(big.Int)
		return value.NewBigInt(&b), nil
	case bigIntPtrType:
		if v.IsNil() {
			return value.Null{}, nil
		}
		return value.NewBigInt(v.Interface().(*big.Int)), nil
	}

	if done, res, err := m.marshalSelf(v); done {
		return res, err
	}

	// Follow pointers and interfaces to find the concrete value.
	if v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return value.Null{}, nil
		}
		return m.marshal(v.Elem())
	}

	switch v.Kind() {
	case reflect.String:
		return value.String(v.String()), nil
	case reflect.Bool:
		return value.Bool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.NewInt(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return value.NewBigInt(new(big.Int).SetUint64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return value.Float(v.Float()), nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return value.Null{}, nil
		}
		list := make(value.List, v.Len())
		for i := range v.Len() {
			elem, err := m.marshal(v.Index(i))
			if err != nil {
				return nil, err
			}
			list[i] = elem
		}
		return list, nil
	case reflect.Map:
		if v.IsNil() {
			return value.Null{}, nil
		}
		return m.marshalMap(v)
	case reflect.Struct:
		return m.marshalStruct(v)
	}
	return nil, &errors.UnsupportedTypeError{Type: v.Type()}
}

// marshalSelf handles values that already are value trees or that know how
// to encode themselves. done is false when v needs the generic encoding.
func (m *marshaler) marshalSelf(v reflect.Value) (done bool, res value.Value, err error) {
	t := v.Type()
	if t.Implements(valueType) && (t.Kind() != reflect.Pointer || t == dictPtrType) {
		if v.Kind() == reflect.Interface && v.IsNil() {
			return true, value.Null{}, nil
		}
		return true, v.Interface().(value.Value), nil
	}

	if !t.Implements(marshalerType) && !t.Implements(textMarshalerType) {
		if t.Kind() == reflect.Pointer || !v.CanAddr() {
			return false, nil, nil
		}
		// A pointer method set applies to addressable values.
		pt := reflect.PointerTo(t)
		if !pt.Implements(marshalerType) && !pt.Implements(textMarshalerType) {
			return false, nil, nil
		}
		v = v.Addr()
		t = pt
	}
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return true, value.Null{}, nil
	}

	if t.Implements(marshalerType) {
		text, err := v.Interface().(Marshaler).MarshalKON()
		if err != nil {
			return true, nil, &errors.MarshalerError{Type: t, Err: err}
		}
		res, err := parser.New(string(text), parser.Config{ImplicitDicts: true}).Parse()
		if err != nil {
			return true, nil, &errors.MarshalerError{Type: t, Err: err}
		}
		return true, res, nil
	}

	text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return true, nil, &errors.MarshalerError{Type: t, Err: err}
	}
	return true, value.String(text), nil
}

func (m *marshaler) marshalMap(v reflect.Value) (value.Value, error) {
	type entry struct {
		key value.Key
		val reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, err := m.marshalKey(iter.Key())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{key, iter.Value()})
	}
	// Map iteration is not ordered; sort for stable output.
	slices.SortFunc(entries, func(a, b entry) int {
		return value.CompareKeys(a.key, b.key)
	})

	d := value.NewDict()
	for _, e := range entries {
		val, err := m.marshal(e.val)
		if err != nil {
			return nil, err
		}
		d.Set(e.key, val)
	}
	return d, nil
}

func (m *marshaler) marshalKey(k reflect.Value) (value.Key, error) {
	kv, err := m.marshal(k)
	if err != nil {
		return nil, err
	}
	key, ok := kv.(value.Key)
	if !ok {
		return nil, &errors.UnsupportedTypeError{Type: k.Type()}
	}
	return key, nil
}

func (m *marshaler) marshalStruct(v reflect.Value) (value.Value, error) {
	d := value.NewDict()
	for _, f := range mapper.Fields(v.Type()) {
		fv, err := v.FieldByIndexErr(f.Index)
		if err != nil {
			// A nil embedded pointer contributes no fields.
			continue
		}
		if f.OmitEmpty && mapper.IsEmptyValue(fv) {
			continue
		}
		val, err := m.marshal(fv)
		if err != nil {
			return nil, err
		}
		d.Set(value.String(f.Name), val)
	}
	return d, nil
}
