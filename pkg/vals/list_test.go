package vals

import (
	"testing"

	"github.com/m4ver1k/immu/pkg/errs"
	"github.com/m4ver1k/immu/pkg/tt"
)

func TestListIndex(t *testing.T) {
	l := MakeList("a", "b", "c")
	tt.Test(t, tt.Fn("ListIndex", ListIndex), tt.Table{
		tt.Args(l, 0).Rets("a", nil),
		tt.Args(l, 2).Rets("c", nil),
		tt.Args(l, -1).Rets(nil,
			errs.OutOfRange{What: "index", ValidLow: 0, ValidHigh: 2, Actual: "-1"}),
		tt.Args(l, 3).Rets(nil,
			errs.OutOfRange{What: "index", ValidLow: 0, ValidHigh: 2, Actual: "3"}),
		tt.Args(EmptyList, 0).Rets(nil,
			errs.OutOfRange{What: "index", ValidLow: 0, ValidHigh: -1, Actual: "0"}),
	})
}

func TestListAssoc(t *testing.T) {
	l := MakeList("a", "b", "c")

	l2, err := ListAssoc(l, 1, "B")
	if err != nil {
		t.Fatalf("ListAssoc -> error %v", err)
	}
	if !Equal(l2, MakeList("a", "B", "c")) {
		t.Errorf("ListAssoc -> %s", Repr(l2))
	}
	if !Equal(l, MakeList("a", "b", "c")) {
		t.Errorf("source list changed to %s", Repr(l))
	}

	// Updating at the length is out of range, not an append.
	_, err = ListAssoc(l, l.Len(), "d")
	wantErr := errs.OutOfRange{What: "index", ValidLow: 0, ValidHigh: 2, Actual: "3"}
	if err != wantErr {
		t.Errorf("ListAssoc(l, len) -> error %v, want %v", err, wantErr)
	}
}

func TestConjThenIndex(t *testing.T) {
	l := MakeList(1, 2)
	l2 := l.Conj(3)
	if v, err := ListIndex(l2, l.Len()); err != nil || v != 3 {
		t.Errorf("appended element not at old length: %v, %v", v, err)
	}
	if l2.Len() != l.Len()+1 {
		t.Errorf("Conj result has length %d, want %d", l2.Len(), l.Len()+1)
	}
}

func TestSubList(t *testing.T) {
	l := MakeList(0, 1, 2, 3, 4)

	sub, err := SubList(l, 1, 3)
	if err != nil {
		t.Fatalf("SubList -> error %v", err)
	}
	if !Equal(sub, MakeList(1, 2)) {
		t.Errorf("SubList(l, 1, 3) -> %s", Repr(sub))
	}

	if _, err := SubList(l, 3, 1); err == nil {
		t.Errorf("SubList(l, 3, 1) -> no error")
	}
	if _, err := SubList(l, 0, 6); err == nil {
		t.Errorf("SubList(l, 0, 6) -> no error")
	}
}
