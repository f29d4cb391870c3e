package vals

import "fmt"

// FromGo converts a native Go value to a value in the domain. Values already
// in the domain are returned unchanged; other integer and float types are
// widened; []any and map trees (such as those produced by decoding YAML or
// JSON into any) are converted recursively into Lists and Maps. FromGo fails
// on values with no counterpart in the domain.
func FromGo(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, int, float64, string, Keyword, List, Map:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case float32:
		return float64(v), nil
	case []any:
		l := EmptyList
		for _, elem := range v {
			converted, err := FromGo(elem)
			if err != nil {
				return nil, err
			}
			l = l.Conj(converted)
		}
		return l, nil
	case map[string]any:
		m := EmptyMap
		for k, mv := range v {
			converted, err := FromGo(mv)
			if err != nil {
				return nil, err
			}
			m = m.Assoc(k, converted)
		}
		return m, nil
	case map[any]any:
		m := EmptyMap
		for k, mv := range v {
			kc, err := FromGo(k)
			if err != nil {
				return nil, err
			}
			vc, err := FromGo(mv)
			if err != nil {
				return nil, err
			}
			m = m.Assoc(kc, vc)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to a value", v)
	}
}
