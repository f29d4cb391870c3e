// Package bind implements destructuring patterns: a pattern describes the
// shape of a value, and binding a value against it produces named values.
//
// A pattern starts out as a Source, a neutral description of the pattern
// tree. Compile turns a Source into a Pattern, validating it and fixing
// default values; the Pattern can then be bound against any number of values.
package bind

// Source describes a pattern prior to compilation. The concrete types are
// Leaf, Rest, Seq and Keyed.
type Source interface{ source() }

// Leaf binds a single name to whatever value it is matched against. It
// matches anything.
type Leaf struct {
	Name string
}

// Rest binds a name to all elements of a sequence not consumed by the
// preceding positional items. It is only valid as the final item of a Seq.
type Rest struct {
	Name string
}

// Seq matches a list and destructures it positionally.
type Seq struct {
	Items []Source
}

// Keyed matches a map (or nil, treated as an empty map) and destructures it
// by key. If As is non-empty, the whole undestructured value is additionally
// bound to it.
type Keyed struct {
	Entries []Entry
	As      string
}

// Entry is one key of a Keyed pattern. When the key is absent from the
// matched map, the sub-pattern is bound against Default if HasDefault is
// true, and against nil otherwise.
type Entry struct {
	Key        any
	Pat        Source
	Default    any
	HasDefault bool
}

func (Leaf) source()  {}
func (Rest) source()  {}
func (Seq) source()   {}
func (Keyed) source() {}
