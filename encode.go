package kon

import (
	"io"

	"github.com/kaiserthe13th/kon/internal/marshaler"
)

// Encoder writes KON values to an output stream.
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the KON encoding of v to the stream, with no trailing
// newline.
//
// Value trees are written as they are. Other Go values are converted
// first: structs and maps become dicts, map keys sorted, slices and arrays
// become lists, pointers and interfaces are followed, and nil becomes
// null. Types implementing Marshaler or encoding.TextMarshaler encode
// themselves. Struct fields honour `kon:"name,omitempty"` tags and
// `kon:"-"` skips a field.
func (e *Encoder) Encode(v any) error {
	o, err := newOptions(e.opts)
	if err != nil {
		return err
	}
	tree, err := marshaler.Marshal(v, o.maxDepth)
	if err != nil {
		return err
	}
	return o.format(e.w, tree)
}
