package vals

import "fmt"

// Kind returns the kind of a value: one of "nil", "bool", "number", "string",
// "keyword", "list" and "map". For a value outside the domain it returns the
// Go type name preceded by "!!".
func Kind(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "bool"
	case int, float64:
		return "number"
	case string:
		return "string"
	case Keyword:
		return "keyword"
	case List:
		return "list"
	case Map:
		return "map"
	default:
		return fmt.Sprintf("!!%T", v)
	}
}
