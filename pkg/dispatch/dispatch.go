// Package dispatch implements multi-arity function tables: per logical
// function, a set of fixed-arity forms plus at most one variadic form,
// selected by the number of arguments of each call.
package dispatch

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/m4ver1k/immu/pkg/bind"
	"github.com/m4ver1k/immu/pkg/errs"
	"github.com/m4ver1k/immu/pkg/vals"
)

// Arity describes the number of arguments a form accepts: exactly Min, or,
// when Variadic is set, Min or more.
type Arity struct {
	Min      int
	Variadic bool
}

// Fixed returns the Arity of a form accepting exactly n arguments.
func Fixed(n int) Arity { return Arity{n, false} }

// AtLeast returns the Arity of a variadic form accepting n or more arguments.
func AtLeast(n int) Arity { return Arity{n, true} }

// String implements the fmt.Stringer interface.
func (a Arity) String() string {
	if a.Variadic {
		return strconv.Itoa(a.Min) + " or more"
	}
	return strconv.Itoa(a.Min)
}

// Body is the callable of a registered form. It receives the bindings
// produced by matching the form's parameter pattern against the arguments.
// Whatever it returns is propagated unchanged by Dispatch.
type Body func(bound map[string]any) (any, error)

type form struct {
	arity   Arity
	pattern bind.Pattern
	body    Body
}

// Table is a dispatch table for one logical function. Registration must be
// complete before the first call to Dispatch: Register calls may not be
// concurrent with each other or with Dispatch, and once any Dispatch has run,
// further registration is rejected. After registration any number of
// goroutines may call Dispatch concurrently.
type Table struct {
	what     string
	fixed    map[int]*form
	variadic *form
	used     atomic.Bool
}

// ErrRegisterAfterDispatch is returned by Register once the table has
// dispatched a call.
var ErrRegisterAfterDispatch = errors.New("cannot register after dispatch")

// AmbiguousArityError is returned by Register when the arity of a new form
// collides with a form already in the table.
type AmbiguousArityError struct {
	What  string
	Arity Arity
}

// Error implements the error interface.
func (e *AmbiguousArityError) Error() string {
	return fmt.Sprintf("ambiguous arity: %s already has a form taking %s arguments",
		e.What, e.Arity)
}

// ArityError is returned by Dispatch when no form accepts the number of
// arguments of a call. It carries the full accepted-arity set of the table.
type ArityError struct {
	What     string
	Accepted []Arity
	Actual   int
}

// Error implements the error interface.
func (e *ArityError) Error() string {
	descs := make([]string, len(e.Accepted))
	for i, a := range e.Accepted {
		descs[i] = a.String()
	}
	return fmt.Sprintf("arity mismatch: %s takes %s arguments, but is called with %d",
		e.What, strings.Join(descs, ", "), e.Actual)
}

// NewTable returns an empty table. The name is used in error messages.
func NewTable(what string) *Table {
	return &Table{what: what, fixed: make(map[int]*form)}
}

// Register adds a form to the table. The pattern must be a compiled sequence
// pattern agreeing with the arity: one positional item per argument, plus a
// rest-capture if and only if the arity is variadic. It fails with an
// *AmbiguousArityError when the arity collides with a registered form, per
// the rules: one form per fixed arity, at most one variadic form, and the
// minimum of the variadic form must differ from every fixed arity.
func (t *Table) Register(a Arity, p bind.Pattern, body Body) error {
	if t.used.Load() {
		return fmt.Errorf("%s: %w", t.what, ErrRegisterAfterDispatch)
	}
	n, variadic, ok := p.Params()
	if !ok || n != a.Min || variadic != a.Variadic {
		return fmt.Errorf(
			"parameter pattern of %s must be a sequence pattern taking %s arguments",
			t.what, a)
	}
	if a.Variadic {
		if t.variadic != nil {
			return &AmbiguousArityError{t.what, t.variadic.arity}
		}
		if _, clash := t.fixed[a.Min]; clash {
			return &AmbiguousArityError{t.what, Fixed(a.Min)}
		}
		t.variadic = &form{a, p, body}
		return nil
	}
	if _, clash := t.fixed[a.Min]; clash {
		return &AmbiguousArityError{t.what, a}
	}
	if t.variadic != nil && t.variadic.arity.Min == a.Min {
		return &AmbiguousArityError{t.what, t.variadic.arity}
	}
	t.fixed[a.Min] = &form{a, p, body}
	return nil
}

// Dispatch selects the form for the given arguments, binds the form's
// parameter pattern against them, and invokes its body with the resulting
// bindings. A fixed-arity form matching the argument count always wins over
// the variadic form; the variadic form takes any call with at least its
// minimum count, capturing the arguments beyond it in a fresh list. The
// selection depends only on the number of arguments, so identical calls
// always reach the identical form.
func (t *Table) Dispatch(args []any) (any, error) {
	t.used.Store(true)
	if f, ok := t.fixed[len(args)]; ok {
		return t.call(f, args)
	}
	if t.variadic != nil && len(args) >= t.variadic.arity.Min {
		return t.call(t.variadic, args)
	}
	return nil, t.arityError(len(args))
}

// AcceptedArities returns the arities the table accepts, fixed arities in
// increasing order and the variadic arity, if any, last.
func (t *Table) AcceptedArities() []Arity {
	arities := make([]Arity, 0, len(t.fixed)+1)
	for n := range t.fixed {
		arities = append(arities, Fixed(n))
	}
	sort.Slice(arities, func(i, j int) bool { return arities[i].Min < arities[j].Min })
	if t.variadic != nil {
		arities = append(arities, t.variadic.arity)
	}
	return arities
}

func (t *Table) call(f *form, args []any) (any, error) {
	bound, err := f.pattern.Bind(vals.MakeList(args...))
	if err != nil {
		return nil, err
	}
	return f.body(bound)
}

func (t *Table) arityError(actual int) error {
	accepted := t.AcceptedArities()
	if len(accepted) == 1 {
		// A single form reports the friendlier range error.
		a := accepted[0]
		high := a.Min
		if a.Variadic {
			high = -1
		}
		return errs.ArityMismatch{
			What: "arguments to " + t.what, ValidLow: a.Min, ValidHigh: high,
			Actual: actual}
	}
	return &ArityError{t.what, accepted, actual}
}
