package bind

import (
	"fmt"

	"github.com/m4ver1k/immu/pkg/vals"
)

// Pattern is a compiled pattern. It is immutable and may be reused across any
// number of Bind calls, including concurrently. The zero value is not a valid
// Pattern; use Compile.
type Pattern struct {
	op patternOp
}

// patternOp is a node of the compiled pattern tree. Binding walks the tree,
// writing bound names into out and threading the path for error reporting.
type patternOp interface {
	bind(v any, path string, out map[string]any) error
}

// Compile turns a pattern source into a Pattern. It fails with a
// *DefinitionError when the source declares the same name twice, contains a
// rest-capture anywhere but the final position of a Seq, or is otherwise
// malformed.
func Compile(src Source) (Pattern, error) {
	names := make(map[string]bool)
	op, err := compile(src, "value", names)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{op}, nil
}

// Params returns the number of positional items and the presence of a
// rest-capture of a pattern whose top level is a Seq. The last return value
// is false for any other pattern.
func (p Pattern) Params() (n int, variadic bool, ok bool) {
	op, isSeq := p.op.(*seqOp)
	if !isSeq {
		return 0, false, false
	}
	return len(op.items), op.hasRest, true
}

// Bind matches the pattern against a value and returns the bindings it
// produces, a mapping from each declared name to the value it captured. It
// fails with a *MismatchError when the shape of the value is incompatible
// with the pattern. The value is never modified.
func (p Pattern) Bind(v any) (map[string]any, error) {
	if p.op == nil {
		panic("Bind called on zero Pattern")
	}
	out := make(map[string]any)
	if err := p.op.bind(v, "value", out); err != nil {
		return nil, err
	}
	return out, nil
}

func compile(src Source, path string, names map[string]bool) (patternOp, error) {
	switch src := src.(type) {
	case Leaf:
		if err := declare(names, src.Name, path); err != nil {
			return nil, err
		}
		return leafOp{src.Name}, nil
	case Rest:
		return nil, &DefinitionError{path,
			"rest-capture must be the final item of a sequence pattern"}
	case Seq:
		op := &seqOp{}
		for i, item := range src.Items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if rest, isRest := item.(Rest); isRest {
				if i != len(src.Items)-1 {
					return nil, &DefinitionError{itemPath,
						"rest-capture must be the final item of a sequence pattern"}
				}
				if err := declare(names, rest.Name, itemPath); err != nil {
					return nil, err
				}
				op.rest = rest.Name
				op.hasRest = true
				continue
			}
			itemOp, err := compile(item, itemPath, names)
			if err != nil {
				return nil, err
			}
			op.items = append(op.items, itemOp)
		}
		return op, nil
	case Keyed:
		op := &keyedOp{alias: src.As}
		if src.As != "" {
			if err := declare(names, src.As, path); err != nil {
				return nil, err
			}
		}
		for _, entry := range src.Entries {
			entryPath := path + "." + keyString(entry.Key)
			entryOp, err := compile(entry.Pat, entryPath, names)
			if err != nil {
				return nil, err
			}
			// The default is fixed here, at compile time; an entry without
			// one falls back to nil, so absent keys never fail.
			def := any(nil)
			if entry.HasDefault {
				def = entry.Default
			}
			op.entries = append(op.entries, keyedEntry{entry.Key, entryOp, def})
		}
		return op, nil
	case nil:
		return nil, &DefinitionError{path, "missing pattern"}
	default:
		return nil, &DefinitionError{path,
			fmt.Sprintf("invalid pattern source type %T", src)}
	}
}

func declare(names map[string]bool, name, path string) error {
	if name == "" {
		return &DefinitionError{path, "empty binding name"}
	}
	if names[name] {
		return &DefinitionError{path, "duplicate binding name " + name}
	}
	names[name] = true
	return nil
}

// keyString renders a map key for use in a pattern path.
func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return vals.Repr(k)
}

type leafOp struct {
	name string
}

func (op leafOp) bind(v any, path string, out map[string]any) error {
	out[op.name] = v
	return nil
}

type seqOp struct {
	items   []patternOp
	rest    string
	hasRest bool
}

func (op *seqOp) bind(v any, path string, out map[string]any) error {
	l, ok := v.(vals.List)
	if !ok {
		return &MismatchError{path, "list", vals.Kind(v)}
	}
	for i, item := range op.items {
		// Past the end of a short list, the sub-pattern is bound against
		// nil; a list longer than the pattern is fine.
		elem, _ := l.Index(i)
		err := item.bind(elem, fmt.Sprintf("%s[%d]", path, i), out)
		if err != nil {
			return err
		}
	}
	if op.hasRest {
		rest := vals.EmptyList
		if l.Len() > len(op.items) {
			rest = l.SubVector(len(op.items), l.Len())
		}
		out[op.rest] = rest
	}
	return nil
}

type keyedEntry struct {
	key any
	op  patternOp
	def any
}

type keyedOp struct {
	entries []keyedEntry
	alias   string
}

func (op *keyedOp) bind(v any, path string, out map[string]any) error {
	var m vals.Map
	switch v := v.(type) {
	case nil:
		// Treated as an empty map: every key is absent.
	case vals.Map:
		m = v
	default:
		return &MismatchError{path, "map", vals.Kind(v)}
	}
	if op.alias != "" {
		// The alias captures the original, undestructured value.
		out[op.alias] = v
	}
	for _, entry := range op.entries {
		elem := vals.Get(m, entry.key, entry.def)
		err := entry.op.bind(elem, path+"."+keyString(entry.key), out)
		if err != nil {
			return err
		}
	}
	return nil
}
