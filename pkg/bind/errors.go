package bind

import "fmt"

// DefinitionError is returned by Compile for a malformed pattern source, like
// duplicate binding names or a misplaced rest-capture. Path locates the
// offending subpattern.
type DefinitionError struct {
	Path string
	Msg  string
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid pattern: %s: %s", e.Path, e.Msg)
}

// MismatchError is returned by Bind when the shape of a value is incompatible
// with the pattern. Path locates the subpattern that failed.
type MismatchError struct {
	Path     string
	WantKind string
	GotKind  string
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("pattern mismatch: %s must be a %s, but is a %s",
		e.Path, e.WantKind, e.GotKind)
}
