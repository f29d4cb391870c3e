package vals

import (
	"strconv"

	"github.com/m4ver1k/immu/pkg/errs"
)

// ListIndex returns the i-th element of l. It fails with errs.OutOfRange when
// i is not in [0, l.Len()).
func ListIndex(l List, i int) (any, error) {
	v, ok := l.Index(i)
	if !ok {
		return nil, indexError(l, i)
	}
	return v, nil
}

// ListAssoc returns an almost identical list with the i-th element replaced.
// It fails with errs.OutOfRange when i is not in [0, l.Len()); unlike the
// underlying vector's Assoc, i == l.Len() is not an append.
func ListAssoc(l List, i int, v any) (List, error) {
	if i < 0 || i >= l.Len() {
		return nil, indexError(l, i)
	}
	return l.Assoc(i, v), nil
}

// SubList returns a fresh list of the elements of l from i up to but not
// including j. It fails with errs.OutOfRange when the range is not within
// [0, l.Len()].
func SubList(l List, i, j int) (List, error) {
	sub := l.SubVector(i, j)
	if sub == nil {
		return nil, errs.OutOfRange{
			What: "index", ValidLow: 0, ValidHigh: l.Len(),
			Actual: strconv.Itoa(i) + ".." + strconv.Itoa(j)}
	}
	return sub, nil
}

func indexError(l List, i int) error {
	return errs.OutOfRange{
		What: "index", ValidLow: 0, ValidHigh: l.Len() - 1,
		Actual: strconv.Itoa(i)}
}
