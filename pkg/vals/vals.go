// Package vals defines the value domain of the library and basic operations
// on it.
//
// The domain is deliberately closed. A value is one of the following:
//
//   - nil
//   - bool
//   - int or float64
//   - string
//   - Keyword
//   - List (a persistent vector)
//   - Map (a persistent hashmap)
//
// Every function in this package switches exhaustively on this set; values of
// any other type are reported, never silently accepted. Map keys may be any
// value, including nil.
//
// All values are immutable once constructed and may be shared freely between
// goroutines.
package vals

import (
	"github.com/m4ver1k/immu/pkg/persistent/hashmap"
	"github.com/m4ver1k/immu/pkg/persistent/vector"
)

// List is an alias for the persistent vector type.
type List = vector.Vector

// Map is an alias for the persistent hashmap type.
type Map = hashmap.Map

// Keyword is a symbolic key, printed with a leading colon. It is a distinct
// type from string: the keyword :name and the string "name" are not equal.
type Keyword string

// String returns the text of the keyword, without the leading colon. This is
// also how keyword keys surface as JSON object keys.
func (k Keyword) String() string { return string(k) }

// EmptyList is an empty list.
var EmptyList = vector.Empty

// EmptyMap is an empty map.
var EmptyMap = hashmap.New(Equal, Hash)

// MakeList builds a List from the given elements.
func MakeList(vs ...any) List {
	l := EmptyList
	for _, v := range vs {
		l = l.Conj(v)
	}
	return l
}

// MakeMap builds a Map from the given arguments, which are alternately keys
// and values. It panics if the number of arguments is odd.
func MakeMap(a ...any) Map {
	if len(a)%2 == 1 {
		panic("odd number of arguments to MakeMap")
	}
	m := EmptyMap
	for i := 0; i+1 < len(a); i += 2 {
		m = m.Assoc(a[i], a[i+1])
	}
	return m
}
