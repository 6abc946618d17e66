package value

import (
	"iter"
	"math"
	"strings"
)

// Entry is a single key/value pair of a Dict.
type Entry struct {
	Key   Key
	Value Value
}

// Dict is an insertion-ordered mapping from scalar keys to values.
// The zero Dict is empty and ready to use.
type Dict struct {
	entries []Entry
	index   map[keyID]int
}

// keyID is the comparable identity of a Key.
type keyID struct {
	kind Kind
	text string
	bits uint64
}

func idOf(k Key) keyID {
	switch k := k.(type) {
	case Null:
		return keyID{kind: NullKind}
	case Bool:
		if k {
			return keyID{kind: BoolKind, bits: 1}
		}
		return keyID{kind: BoolKind}
	case Int:
		return keyID{kind: IntKind, text: k.bigInt().String()}
	case Float:
		f := float64(k)
		if f == 0 {
			f = 0 // -0.0 and 0.0 are the same key
		}
		return keyID{kind: FloatKind, bits: math.Float64bits(f)}
	case String:
		return keyID{kind: StringKind, text: string(k)}
	}
	return keyID{kind: k.Kind(), text: k.String()}
}

// NewDict returns an empty Dict.
func NewDict() *Dict { return &Dict{} }

func (*Dict) value()     {}
func (*Dict) Kind() Kind { return DictKind }

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Get returns the value stored under k.
func (d *Dict) Get(k Key) (Value, bool) {
	if d == nil || d.index == nil {
		return nil, false
	}
	i, ok := d.index[idOf(k)]
	if !ok {
		return nil, false
	}
	return d.entries[i].Value, true
}

// Has reports whether k is present.
func (d *Dict) Has(k Key) bool {
	_, ok := d.Get(k)
	return ok
}

// Set stores v under k. An existing key keeps its position and has its
// value replaced.
func (d *Dict) Set(k Key, v Value) {
	if d.index == nil {
		d.index = make(map[keyID]int)
	}
	id := idOf(k)
	if i, ok := d.index[id]; ok {
		d.entries[i].Value = v
		return
	}
	d.index[id] = len(d.entries)
	d.entries = append(d.entries, Entry{Key: k, Value: v})
}

// Delete removes k and reports whether it was present.
func (d *Dict) Delete(k Key) bool {
	if d == nil || d.index == nil {
		return false
	}
	id := idOf(k)
	i, ok := d.index[id]
	if !ok {
		return false
	}
	delete(d.index, id)
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	for j := i; j < len(d.entries); j++ {
		d.index[idOf(d.entries[j].Key)] = j
	}
	return true
}

// Merge copies every entry of other into d. Keys already in d keep their
// position and take other's value.
func (d *Dict) Merge(other *Dict) {
	for _, e := range other.Entries() {
		d.Set(e.Key, e.Value)
	}
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []Key {
	keys := make([]Key, d.Len())
	for i := range keys {
		keys[i] = d.entries[i].Key
	}
	return keys
}

// Values returns the values in insertion order.
func (d *Dict) Values() []Value {
	vals := make([]Value, d.Len())
	for i := range vals {
		vals[i] = d.entries[i].Value
	}
	return vals
}

// Entries returns a copy of the entries in insertion order.
func (d *Dict) Entries() []Entry {
	if d == nil {
		return nil
	}
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// All iterates over the entries in insertion order.
func (d *Dict) All() iter.Seq2[Key, Value] {
	return func(yield func(Key, Value) bool) {
		if d == nil {
			return
		}
		for _, e := range d.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Interface returns a map[string]any when every key is a String and a
// map[any]any otherwise.
func (d *Dict) Interface() any {
	stringKeys := true
	for _, e := range d.Entries() {
		if _, ok := e.Key.(String); !ok {
			stringKeys = false
			break
		}
	}
	if stringKeys {
		m := make(map[string]any, d.Len())
		for k, v := range d.All() {
			m[string(k.(String))] = v.Interface()
		}
		return m
	}
	m := make(map[any]any, d.Len())
	for k, v := range d.All() {
		m[k.Interface()] = v.Interface()
	}
	return m
}

func (d *Dict) String() string {
	parts := make([]string, 0, d.Len())
	for k, v := range d.All() {
		parts = append(parts, k.String()+" = "+v.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
