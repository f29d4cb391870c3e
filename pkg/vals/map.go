package vals

import "github.com/m4ver1k/immu/pkg/persistent/hashmap"

// Get returns the value associated with k in m, or dflt if m has no such key.
// A nil m is treated as an empty map. Get never fails.
func Get(m Map, k, dflt any) any {
	if m == nil {
		return dflt
	}
	if v, ok := m.Index(k); ok {
		return v
	}
	return dflt
}

// HasKey reports whether m has the given key. A nil m is treated as an empty
// map.
func HasKey(m Map, k any) bool {
	return m != nil && hashmap.HasKey(m, k)
}

// Keys returns the keys of m as a List. The order of the keys is unspecified
// and must not be relied on; it is driven by the hash of the keys.
func Keys(m Map) List {
	l := EmptyList
	if m == nil {
		return l
	}
	for it := m.Iterator(); it.HasElem(); it.Next() {
		k, _ := it.Elem()
		l = l.Conj(k)
	}
	return l
}

// Merge returns a map containing all entries of base and overrides, with
// entries of overrides winning when both have the same key. Nil arguments are
// treated as empty maps.
func Merge(base, overrides Map) Map {
	if base == nil {
		base = EmptyMap
	}
	m := base
	if overrides == nil {
		return m
	}
	for it := overrides.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		m = m.Assoc(k, v)
	}
	return m
}
