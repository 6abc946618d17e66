package mapper

import (
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag key read by the codec.
const TagName = "kon"

// Field is an encodable struct field.
type Field struct {
	Name      string
	Index     []int
	Tagged    bool
	OmitEmpty bool
}

// fieldCache caches the field list for a given struct type.
var fieldCache sync.Map // map[reflect.Type][]Field

// Fields returns the encodable fields of struct type t in declaration order.
// Unexported fields and fields tagged "kon:\"-\"" are skipped. The fields
// of an untagged embedded struct are promoted, unless an outer field
// already uses the same name.
func Fields(t reflect.Type) []Field {
	if f, ok := fieldCache.Load(t); ok {
		return f.([]Field)
	}
	fields := typeFields(t, nil, map[reflect.Type]bool{t: true})
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	f, _ := fieldCache.LoadOrStore(t, out)
	return f.([]Field)
}

// typeFields lists direct fields first and promoted ones after them, so the
// shallower field wins a name clash.
func typeFields(t reflect.Type, prefix []int, visiting map[reflect.Type]bool) []Field {
	var direct, promoted []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get(TagName)
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		index := append(append([]int(nil), prefix...), i)

		if sf.Anonymous && name == "" {
			et := sf.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				if !visiting[et] {
					visiting[et] = true
					promoted = append(promoted, typeFields(et, index, visiting)...)
					delete(visiting, et)
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		f := Field{Name: sf.Name, Index: index}
		if name != "" {
			f.Name = name
			f.Tagged = true
		}
		for opts != "" {
			var opt string
			opt, opts, _ = strings.Cut(opts, ",")
			if strings.TrimSpace(opt) == "omitempty" {
				f.OmitEmpty = true
			}
		}
		direct = append(direct, f)
	}
	return append(direct, promoted...)
}

// IsEmptyValue reports whether v is empty in the encoding/json sense:
// false, 0, a nil pointer, a nil interface value, and any empty array,
// slice, map, or string.
func IsEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}
