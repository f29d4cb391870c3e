package vals

import "fmt"

// Equal returns whether two values are structurally equal. Lists are equal
// when they have equal elements in the same order; maps are equal when they
// have equal sets of keys associated with equal values. Numbers compare
// type-strictly: an int is never equal to a float64.
func Equal(x, y any) bool {
	switch x := x.(type) {
	case nil:
		return y == nil
	case bool:
		return x == y
	case int:
		return x == y
	case float64:
		return x == y
	case string:
		return x == y
	case Keyword:
		return x == y
	case List:
		if y, ok := y.(List); ok {
			return equalList(x, y)
		}
		return false
	case Map:
		if y, ok := y.(Map); ok {
			return equalMap(x, y)
		}
		return false
	default:
		panic(fmt.Sprintf("invalid value type %T", x))
	}
}

func equalList(x, y List) bool {
	if x.Len() != y.Len() {
		return false
	}
	ix := x.Iterator()
	iy := y.Iterator()
	for ix.HasElem() && iy.HasElem() {
		if !Equal(ix.Elem(), iy.Elem()) {
			return false
		}
		ix.Next()
		iy.Next()
	}
	return true
}

func equalMap(x, y Map) bool {
	if x.Len() != y.Len() {
		return false
	}
	for it := x.Iterator(); it.HasElem(); it.Next() {
		k, vx := it.Elem()
		vy, ok := y.Index(k)
		if !ok || !Equal(vx, vy) {
			return false
		}
	}
	return true
}
