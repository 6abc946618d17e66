/*
Package kon parses and writes KON, a small human-writable notation for
configuration and structured data. KON reads like JSON with the noise
removed: braces around the document, commas between lines and quotes
around simple words are all optional, and a run of keys in front of a
value stands for nested dicts.

	# a comment
	name = kon
	server {
		host = "0.0.0.0"
		ports(8080, 8443)
	}
	log level = debug

parses as

	{name: "kon", server: {host: "0.0.0.0", ports: [8080, 8443]}, log: {level: "debug"}}

The package offers two workflows.

1. Value Trees

Parse turns a document into a value.Value tree: Null, Bool, Int (arbitrary
precision), Float, String, List and an insertion-ordered *value.Dict whose
keys may be any scalar. Marshal and Format write a tree back out, compactly
by default or indented with the Pretty and Indent options. Parsing the
output of Marshal yields an equal tree.

	v, err := kon.Parse([]byte("a b c = 3"))
	if err != nil {
		// handle error
	}
	out, _ := kon.Marshal(v) // {a {b {c = 3}}}

2. Go Values

Unmarshal and Decoder fill structs, maps, slices and scalars from a
document; Marshal and Encoder convert Go values to KON. Field names can be
changed with `kon:"name,omitempty"` tags.

	type Config struct {
		Name  string `kon:"name"`
		Ports []int  `kon:"ports"`
	}

	var cfg Config
	if err := kon.Unmarshal(data, &cfg); err != nil {
		// handle error
	}

Types can take over their own encoding by implementing Marshaler and
Unmarshaler, or encoding.TextMarshaler and encoding.TextUnmarshaler for a
string form.

Parse failures are reported as *errors.ParseError values carrying a Kind,
so errors.Is(err, errors.UnsetKey) tests for a class of failure.
*/
package kon
