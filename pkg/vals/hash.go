package vals

import (
	"fmt"
	"math"

	"github.com/m4ver1k/immu/pkg/persistent/hash"
	"github.com/m4ver1k/immu/pkg/persistent/hashmap"
)

// Hash returns the 32-bit hash of a value, consistent with Equal: equal
// values have identical hash codes.
func Hash(v any) uint32 {
	switch v := v.(type) {
	case nil:
		return 0
	case bool:
		if v {
			return 1
		}
		return 0
	case int:
		return hash.UInt64(uint64(v))
	case float64:
		return hash.UInt64(math.Float64bits(v))
	case string:
		return hash.String(v)
	case Keyword:
		// Distinct from the hash of the same text as a string.
		return hash.DJB(hash.String(string(v)))
	case List:
		h := hash.DJBInit
		for it := v.Iterator(); it.HasElem(); it.Next() {
			h = hash.DJBCombine(h, Hash(it.Elem()))
		}
		return h
	case Map:
		return hashMap(v.Iterator())
	default:
		panic(fmt.Sprintf("invalid value type %T", v))
	}
}

func hashMap(it hashmap.Iterator) uint32 {
	// Iteration order of two equal maps can differ when keys collide on their
	// hash, so the per-pair hashes are combined by summing, which is
	// order-insensitive.
	var h uint32
	for ; it.HasElem(); it.Next() {
		k, v := it.Elem()
		h += hash.DJB(Hash(k), Hash(v))
	}
	return h
}
