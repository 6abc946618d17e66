// Package konparser implements a koanf.Parser that reads and writes KON
// configuration files.
//
//	k := koanf.New(".")
//	if err := k.Load(file.Provider("app.kon"), konparser.Parser()); err != nil {
//		// handle error
//	}
package konparser

import (
	"fmt"

	"github.com/kaiserthe13th/kon"
	"github.com/kaiserthe13th/kon/value"
)

// KON implements a KON parser.
type KON struct {
	opts []kon.Option
}

// Parser returns a KON parser. Marshal writes indented output; opts are
// applied after that default, to both directions.
func Parser(opts ...kon.Option) *KON {
	return &KON{opts: opts}
}

// Unmarshal parses the given KON bytes into a nested config map. The
// document must be a dict. Non-string keys are converted with their String
// method, so `{1 = a}` loads as the key "1".
func (p *KON) Unmarshal(b []byte) (map[string]any, error) {
	v, err := kon.Parse(b, p.opts...)
	if err != nil {
		return nil, err
	}
	d, ok := v.(*value.Dict)
	if !ok {
		return nil, fmt.Errorf("konparser: document is a %s, not a dict", v.Kind())
	}
	return toMap(d), nil
}

// Marshal marshals the given config map to KON bytes.
func (p *KON) Marshal(o map[string]any) ([]byte, error) {
	opts := append([]kon.Option{kon.Pretty()}, p.opts...)
	return kon.Marshal(o, opts...)
}

func toMap(d *value.Dict) map[string]any {
	m := make(map[string]any, d.Len())
	for k, v := range d.All() {
		m[k.String()] = toNative(v)
	}
	return m
}

// toNative mirrors value.Value.Interface but keeps every nested dict a
// map[string]any. Integers beyond int64 become their decimal string, as
// koanf copies config maps field by field and would lose a *big.Int.
func toNative(v value.Value) any {
	switch v := v.(type) {
	case *value.Dict:
		return toMap(v)
	case value.List:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = toNative(elem)
		}
		return out
	case value.Int:
		if n, ok := v.Int64(); ok {
			return n
		}
		return v.String()
	}
	return v.Interface()
}
