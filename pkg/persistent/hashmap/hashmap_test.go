package hashmap

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/m4ver1k/immu/pkg/persistent/hash"
)

const (
	NSequential = 0x1000
	NCollision  = 0x100
	NRandom     = 0x4000
	NReplace    = 0x200

	NIneffectiveDissoc = 0x200
)

type testKey uint64

func equalFunc(k1, k2 any) bool {
	switch k1 := k1.(type) {
	case testKey:
		t2, ok := k2.(testKey)
		return ok && k1 == t2
	default:
		return k1 == k2
	}
}

func hashFunc(k any) uint32 {
	switch k := k.(type) {
	case uint32:
		return k
	case string:
		return hash.String(k)
	case testKey:
		// Return the lower 32 bits for testKey. This is intended so that hash
		// collisions can be easily constructed.
		return uint32(k & 0xffffffff)
	default:
		return 0
	}
}

var empty = New(equalFunc, hashFunc)

type refEntry struct {
	k testKey
	v string
}

func hex(i uint64) string {
	return "0x" + strconv.FormatUint(i, 16)
}

func TestHashMap(t *testing.T) {
	var refEntries []refEntry
	add := func(k testKey, v string) {
		refEntries = append(refEntries, refEntry{k, v})
	}

	for i := 0; i < NSequential; i++ {
		add(testKey(i), hex(uint64(i)))
	}
	for i := 0; i < NCollision; i++ {
		add(testKey(uint64(i+1)<<32), "collision "+hex(uint64(i)))
	}
	for i := 0; i < NRandom; i++ {
		k := uint64(rand.Int63())>>31 | uint64(rand.Int63())<<32
		add(testKey(k), "random "+hex(k))
	}
	for i := 0; i < NReplace; i++ {
		k := uint64(rand.Int31n(NSequential))
		add(testKey(k), "replace "+hex(k))
	}

	testHashMapWithRefEntries(t, refEntries)
}

// testHashMapWithRefEntries feeds all entries of refEntries into an empty
// hash map, and tests the map against a reference implementation on native
// maps after each addition and each removal.
func testHashMapWithRefEntries(t *testing.T, refEntries []refEntry) {
	m := empty
	// A native map is used as the reference implementation.
	ref := make(map[testKey]string, len(refEntries))

	for _, e := range refEntries {
		oldm := m
		oldLen := len(ref)
		m = m.Assoc(e.k, e.v)
		ref[e.k] = e.v

		if oldm.Len() != oldLen {
			t.Errorf("the old map has length %d, want %d", oldm.Len(), oldLen)
		}
		if m.Len() != len(ref) {
			t.Errorf("the new map has length %d, want %d", m.Len(), len(ref))
		}
	}
	testMapContent(t, m, ref)
	testIterator(t, m, ref)

	// Ineffective dissoc of keys that are absent.
	for i := 0; i < NIneffectiveDissoc; i++ {
		k := testKey(uint64(rand.Int63())>>31 | uint64(rand.Int63())<<32)
		if _, present := ref[k]; present {
			continue
		}
		if m2 := m.Dissoc(k); m2 != m {
			t.Errorf("dissoc of absent key %v did not return the same map", k)
		}
	}

	// Remove all keys, one by one.
	for k := range ref {
		oldLen := m.Len()
		m = m.Dissoc(k)
		delete(ref, k)

		if m.Len() != oldLen-1 {
			t.Errorf("after dissoc, map has length %d, want %d", m.Len(), oldLen-1)
		}
		if _, in := m.Index(k); in {
			t.Errorf("dissoc'ed key %v still in map", k)
		}
	}
	if m.Len() != 0 {
		t.Errorf("after removing all keys, map has length %d, want 0", m.Len())
	}
}

func testMapContent(t *testing.T, m Map, ref map[testKey]string) {
	for k, v := range ref {
		got, in := m.Index(k)
		if !in {
			t.Errorf("map does not contain key %v", k)
			continue
		}
		if got != v {
			t.Errorf("m.Index(%v) = %v, want %v", k, got, v)
		}
		if !HasKey(m, k) {
			t.Errorf("HasKey(m, %v) = false, want true", k)
		}
	}
}

func testIterator(t *testing.T, m Map, ref map[testKey]string) {
	ref2 := make(map[any]any, len(ref))
	for k, v := range ref {
		ref2[k] = v
	}
	for it := m.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		if ref2[k] != v {
			t.Errorf("iterator produces unexpected pair %v, %v", k, v)
		}
		delete(ref2, k)
	}
	if len(ref2) > 0 {
		t.Errorf("iterating was not exhaustive; %d pairs remain", len(ref2))
	}
}

func TestSharing(t *testing.T) {
	m := empty
	for i := 0; i < NSequential; i++ {
		m = m.Assoc(testKey(i), hex(uint64(i)))
	}
	// Writes to a derived map must leave the original observable unchanged.
	m2 := m.Assoc(testKey(0), "replaced").Dissoc(testKey(1))
	if v, _ := m.Index(testKey(0)); v != hex(0) {
		t.Errorf("original map changed by Assoc on derived map")
	}
	if _, in := m.Index(testKey(1)); !in {
		t.Errorf("original map changed by Dissoc on derived map")
	}
	if v, _ := m2.Index(testKey(0)); v != "replaced" {
		t.Errorf("derived map does not reflect Assoc")
	}
	if _, in := m2.Index(testKey(1)); in {
		t.Errorf("derived map does not reflect Dissoc")
	}
}

func TestCollisionChain(t *testing.T) {
	// All testKeys with identical low 32 bits collide on their hash and are
	// kept in a chained leaf, scanned with the equality function.
	m := empty
	const n = 0x40
	for i := 0; i < n; i++ {
		m = m.Assoc(testKey(uint64(i)<<32|1), hex(uint64(i)))
	}
	if m.Len() != n {
		t.Errorf("map with %d colliding keys has length %d", n, m.Len())
	}
	for i := 0; i < n; i++ {
		k := testKey(uint64(i)<<32 | 1)
		if v, _ := m.Index(k); v != hex(uint64(i)) {
			t.Errorf("m.Index(%v) = %v, want %v", k, v, hex(uint64(i)))
		}
	}
	for i := 0; i < n; i++ {
		m = m.Dissoc(testKey(uint64(i)<<32 | 1))
	}
	if m.Len() != 0 {
		t.Errorf("map has length %d after removing all colliding keys", m.Len())
	}
}

func TestNilKey(t *testing.T) {
	m := empty.Assoc(nil, "nothing")
	if v, in := m.Index(nil); !in || v != "nothing" {
		t.Errorf("m.Index(nil) = %v, %v, want nothing, true", v, in)
	}

	// nil hashes to 0 here and shares a bucket with testKey(0); both must
	// remain retrievable.
	m = m.Assoc(testKey(0), "zero").Assoc(nil, "replaced")
	if m.Len() != 2 {
		t.Errorf("map has length %d, want 2", m.Len())
	}
	if v, _ := m.Index(nil); v != "replaced" {
		t.Errorf("m.Index(nil) = %v, want replaced", v)
	}
	if v, _ := m.Index(testKey(0)); v != "zero" {
		t.Errorf("m.Index(0) = %v, want zero", v)
	}

	seen := false
	for it := m.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		if k == nil {
			seen = true
			if v != "replaced" {
				t.Errorf("iterator produces nil -> %v, want replaced", v)
			}
		}
	}
	if !seen {
		t.Errorf("iterator does not produce the nil key")
	}

	m = m.Dissoc(nil)
	if _, in := m.Index(nil); in {
		t.Errorf("nil key still in map after Dissoc")
	}
	if v, _ := m.Index(testKey(0)); v != "zero" {
		t.Errorf("m.Index(0) = %v after Dissoc(nil), want zero", v)
	}
	if m.Len() != 1 {
		t.Errorf("map has length %d after Dissoc(nil), want 1", m.Len())
	}
}

func TestMarshalJSON(t *testing.T) {
	m := empty.Assoc("a", 1).Assoc("b", []any{"x", "y"})
	b, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON -> error %v", err)
	}
	got := string(b)
	want1 := `{"a":1,"b":["x","y"]}`
	want2 := `{"b":["x","y"],"a":1}`
	if got != want1 && got != want2 {
		t.Errorf("MarshalJSON -> %s, want %s (in some order)", got, want1)
	}

	_, err = empty.Assoc(uint32(1), "x").MarshalJSON()
	if err == nil {
		t.Errorf("MarshalJSON of map with non-string key -> no error, want error")
	}
}
