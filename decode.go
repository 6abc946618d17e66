package kon

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"math/big"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/kaiserthe13th/kon/errors"
	"github.com/kaiserthe13th/kon/internal/formatter"
	"github.com/kaiserthe13th/kon/internal/mapper"
	"github.com/kaiserthe13th/kon/value"
)

// Unmarshaler is the interface implemented by types that can decode a KON
// representation of themselves. UnmarshalKON receives the compact KON text
// of the value found at the target's position.
type Unmarshaler interface {
	UnmarshalKON([]byte) error
}

// Decoder reads and decodes KON values from an input stream.
type Decoder struct {
	r    io.Reader
	opts []Option
}

// NewDecoder returns a new decoder that reads from r.
//
// Functional options can be provided to configure the decoding process,
// such as disabling the shorthand grammar with ImplicitDicts(false).
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode reads the whole input and stores the decoded document in the value
// pointed to by v. See Unmarshal for the conversion rules.
//
// Note: This is a non-streaming implementation. It reads the entire
// reader into memory first before parsing.
func (d *Decoder) Decode(v any) error {
	if d.r == nil {
		return fmt.Errorf("kon: Decode(nil reader)")
	}
	o, err := newOptions(d.opts)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	tree, err := o.parse(data)
	if err != nil {
		return err
	}
	return decodeValue(tree, v, o.maxDepth)
}

var (
	valueType       = reflect.TypeFor[value.Value]()
	unmarshalerType = reflect.TypeFor[Unmarshaler]()
	bigIntType      = reflect.TypeFor[big.Int]()
	bigIntPtrType   = reflect.TypeFor[*big.Int]()
)

// decodeValue stores tree in the value pointed to by out.
func decodeValue(tree value.Value, out any, maxDepth int) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("kon: Unmarshal(non-pointer %T or nil)", out)
	}
	if p, ok := out.(*value.Value); ok {
		*p = tree
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			unmarshalerHook(maxDepth),
			valueHook,
			numberHook,
			mapstructure.TextUnmarshallerHookFunc(),
			nullHook,
		),
		Result:  out,
		TagName: mapper.TagName,
		Squash:  true,
	})
	if err != nil {
		return fmt.Errorf("kon: %w", err)
	}
	if err := dec.Decode(tree); err != nil {
		return fmt.Errorf("kon: %w", err)
	}
	return nil
}

// unmarshalerHook hands the compact text of a subtree to types implementing
// Unmarshaler.
func unmarshalerHook(maxDepth int) mapstructure.DecodeHookFuncType {
	return func(_, to reflect.Type, data any) (any, error) {
		v, ok := data.(value.Value)
		if !ok || to.Kind() == reflect.Pointer || to.Kind() == reflect.Interface {
			return data, nil
		}
		if !reflect.PointerTo(to).Implements(unmarshalerType) {
			return data, nil
		}
		var buf bytes.Buffer
		if err := formatter.New(&buf, formatter.Config{MaxDepth: maxDepth}).Format(v); err != nil {
			return nil, err
		}
		ptr := reflect.New(to)
		if err := ptr.Interface().(Unmarshaler).UnmarshalKON(buf.Bytes()); err != nil {
			return nil, &errors.UnmarshalerError{Type: ptr.Type(), Err: err}
		}
		return ptr.Interface(), nil
	}
}

// valueHook unwraps one level of the value tree so mapstructure can walk
// it. Targets of type value.Value or of the subtree's own type keep it as
// is and interface targets receive its native form. Null is left to
// nullHook.
func valueHook(_, to reflect.Type, data any) (any, error) {
	v, ok := data.(value.Value)
	if !ok || to == valueType {
		return data, nil
	}
	if t := reflect.TypeOf(v); t == to || t == reflect.PointerTo(to) {
		return data, nil
	}
	switch v := v.(type) {
	case value.Null:
		return data, nil
	case *value.Dict:
		if to.Kind() == reflect.Interface {
			return v.Interface(), nil
		}
		return shallowDict(v), nil
	case value.List:
		if to.Kind() == reflect.Interface {
			return v.Interface(), nil
		}
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = elem
		}
		return out, nil
	}
	return v.Interface(), nil
}

// shallowDict converts the keys of d and leaves its values as subtrees.
func shallowDict(d *value.Dict) any {
	stringKeys := true
	for k := range d.All() {
		if _, ok := k.(value.String); !ok {
			stringKeys = false
			break
		}
	}
	if stringKeys {
		m := make(map[string]any, d.Len())
		for k, v := range d.All() {
			m[string(k.(value.String))] = v
		}
		return m
	}
	m := make(map[any]any, d.Len())
	for k, v := range d.All() {
		m[k.Interface()] = v
	}
	return m
}

// numberHook range-checks integers against the target type and converts
// between int64 and *big.Int.
func numberHook(_, to reflect.Type, data any) (any, error) {
	switch n := data.(type) {
	case int64:
		return convertInt(big.NewInt(n), to, data)
	case *big.Int:
		return convertInt(n, to, data)
	case float64:
		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return nil, fmt.Errorf("cannot decode float %v into %s", n, to)
		case reflect.Float32:
			if !math.IsInf(n, 0) && !math.IsNaN(n) && reflect.Zero(to).OverflowFloat(n) {
				return nil, fmt.Errorf("value %v overflows %s", n, to)
			}
		}
	}
	return data, nil
}

func convertInt(b *big.Int, to reflect.Type, data any) (any, error) {
	if to == bigIntType || to == bigIntPtrType {
		return new(big.Int).Set(b), nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !b.IsInt64() || reflect.Zero(to).OverflowInt(b.Int64()) {
			return nil, fmt.Errorf("value %s overflows %s", b, to)
		}
		return b.Int64(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if !b.IsUint64() || reflect.Zero(to).OverflowUint(b.Uint64()) {
			return nil, fmt.Errorf("value %s overflows %s", b, to)
		}
		return b.Uint64(), nil
	case reflect.Float32, reflect.Float64:
		f, _ := new(big.Float).SetInt(b).Float64()
		return f, nil
	}
	return data, nil
}

// nullHook turns null into nil, which leaves the target untouched.
func nullHook(_, to reflect.Type, data any) (any, error) {
	if _, ok := data.(value.Null); ok && to != valueType {
		return nil, nil
	}
	return data, nil
}
