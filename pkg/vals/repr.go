package vals

import (
	"fmt"
	"strconv"
	"strings"
)

// Repr returns a literal-like textual representation of a value. The string
// is preferably an expression that reads back as an equal value, like
// `[1 "two" :three]` for a list.
func Repr(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return strconv.Quote(v)
	case Keyword:
		return ":" + string(v)
	case List:
		var sb strings.Builder
		sb.WriteByte('[')
		first := true
		for it := v.Iterator(); it.HasElem(); it.Next() {
			if first {
				first = false
			} else {
				sb.WriteByte(' ')
			}
			sb.WriteString(Repr(it.Elem()))
		}
		sb.WriteByte(']')
		return sb.String()
	case Map:
		var sb strings.Builder
		sb.WriteByte('{')
		first := true
		for it := v.Iterator(); it.HasElem(); it.Next() {
			if first {
				first = false
			} else {
				sb.WriteString(", ")
			}
			k, v := it.Elem()
			sb.WriteString(Repr(k))
			sb.WriteByte(' ')
			sb.WriteString(Repr(v))
		}
		sb.WriteByte('}')
		return sb.String()
	default:
		return fmt.Sprintf("<unknown %v>", v)
	}
}
