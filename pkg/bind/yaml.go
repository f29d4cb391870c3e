package bind

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/m4ver1k/immu/pkg/vals"
)

// ParseYAML decodes a YAML document describing a pattern source. The
// descriptor mirrors the Source tree:
//
//	name: x                     # Leaf
//	rest: xs                    # Rest
//	seq:                        # Seq
//	  - name: x
//	  - rest: xs
//	keyed:                      # Keyed
//	  - key: :pname
//	    pat: {name: pname}
//	  - key: :moons
//	    pat: {name: moons}
//	    default: 0
//	as: planet
//
// Scalar keys and defaults become domain values; a key string starting with
// ":" becomes a Keyword. Structural problems that can only be seen against
// the whole pattern (such as a misplaced rest-capture) are left for Compile
// to report.
func ParseYAML(data []byte) (Source, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return sourceFromGo(raw)
}

func sourceFromGo(raw any) (Source, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("pattern descriptor must be a mapping, not %T", raw)
	}
	var kinds []string
	for _, field := range []string{"name", "rest", "seq", "keyed"} {
		if _, ok := m[field]; ok {
			kinds = append(kinds, field)
		}
	}
	switch len(kinds) {
	case 0:
		return nil, fmt.Errorf(
			"pattern descriptor needs one of name, rest, seq and keyed")
	case 1:
	default:
		return nil, fmt.Errorf(
			"pattern descriptor has %s; need exactly one of name, rest, seq and keyed",
			strings.Join(kinds, " and "))
	}
	if _, ok := m["as"]; ok && kinds[0] != "keyed" {
		return nil, fmt.Errorf("as is only valid in a keyed descriptor")
	}
	switch kinds[0] {
	case "name":
		name, err := descriptorString(m, "name")
		if err != nil {
			return nil, err
		}
		return Leaf{name}, nil
	case "rest":
		name, err := descriptorString(m, "rest")
		if err != nil {
			return nil, err
		}
		return Rest{name}, nil
	case "seq":
		items, ok := m["seq"].([]any)
		if !ok {
			return nil, fmt.Errorf("seq must be a sequence, not %T", m["seq"])
		}
		var seq Seq
		for _, item := range items {
			sub, err := sourceFromGo(item)
			if err != nil {
				return nil, err
			}
			seq.Items = append(seq.Items, sub)
		}
		return seq, nil
	default:
		entries, ok := m["keyed"].([]any)
		if !ok {
			return nil, fmt.Errorf("keyed must be a sequence, not %T", m["keyed"])
		}
		var keyed Keyed
		for _, rawEntry := range entries {
			entry, err := entryFromGo(rawEntry)
			if err != nil {
				return nil, err
			}
			keyed.Entries = append(keyed.Entries, entry)
		}
		if as, ok := m["as"]; ok {
			s, isString := as.(string)
			if !isString {
				return nil, fmt.Errorf("as must be a string, not %T", as)
			}
			keyed.As = s
		}
		return keyed, nil
	}
}

func entryFromGo(raw any) (Entry, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Entry{}, fmt.Errorf("keyed entry must be a mapping, not %T", raw)
	}
	rawKey, ok := m["key"]
	if !ok {
		return Entry{}, fmt.Errorf("keyed entry needs a key")
	}
	key, err := keyFromGo(rawKey)
	if err != nil {
		return Entry{}, err
	}
	rawPat, ok := m["pat"]
	if !ok {
		return Entry{}, fmt.Errorf("keyed entry %s needs a pat", keyString(key))
	}
	pat, err := sourceFromGo(rawPat)
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{Key: key, Pat: pat}
	if rawDefault, ok := m["default"]; ok {
		def, err := vals.FromGo(rawDefault)
		if err != nil {
			return Entry{}, err
		}
		entry.Default = def
		entry.HasDefault = true
	}
	return entry, nil
}

// keyFromGo converts a decoded YAML scalar to a map key, turning ":name"
// strings into Keywords.
func keyFromGo(raw any) (any, error) {
	v, err := vals.FromGo(raw)
	if err != nil {
		return nil, err
	}
	if s, ok := v.(string); ok && strings.HasPrefix(s, ":") {
		return vals.Keyword(s[1:]), nil
	}
	return v, nil
}

func descriptorString(m map[string]any, field string) (string, error) {
	s, ok := m[field].(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, not %T", field, m[field])
	}
	return s, nil
}
