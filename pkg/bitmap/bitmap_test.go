package bitmap

import "testing"

func TestSetClearTest(t *testing.T) {
	b := New(10)
	if ok, _ := b.Test(3); ok {
		t.Fatalf("expected bit 3 clear initially")
	}
	if err := b.Set(3); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ok, _ := b.Test(3); !ok {
		t.Fatalf("expected bit 3 set")
	}
	if err := b.Clear(3); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if ok, _ := b.Test(3); ok {
		t.Fatalf("expected bit 3 clear after Clear")
	}
}

func TestOutOfRange(t *testing.T) {
	b := New(4)
	if err := b.Set(4); err != ErrInvalidIndex {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}
	if err := b.Set(-1); err != ErrInvalidIndex {
		t.Fatalf("expected ErrInvalidIndex for negative index, got %v", err)
	}
}

func TestSetAllClearAllRespectsTail(t *testing.T) {
	b := New(70) // spans two words, tail partially used
	b.SetAll()
	if b.Count() != 70 {
		t.Fatalf("expected 70 bits set, got %d", b.Count())
	}
	if b.FirstUnset() != -1 {
		t.Fatalf("expected no unset bits, got %d", b.FirstUnset())
	}
	b.ClearAll()
	if !b.IsZero() {
		t.Fatalf("expected zero bitmap after ClearAll")
	}
}

func TestFirstNextSet(t *testing.T) {
	b := New(128)
	for _, i := range []int{5, 64, 65, 127} {
		b.Set(i)
	}
	got := []int{}
	for i := b.FirstSet(); i != -1; i = b.NextSet(i) {
		got = append(got, i)
	}
	want := []int{5, 64, 65, 127}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestSetFirstUnset(t *testing.T) {
	b := New(4)
	b.Set(0)
	b.Set(1)
	i, err := b.SetFirstUnset()
	if err != nil || i != 2 {
		t.Fatalf("expected index 2, got %d err=%v", i, err)
	}
	i, err = b.SetFirstUnset()
	if err != nil || i != 3 {
		t.Fatalf("expected index 3, got %d err=%v", i, err)
	}
	if _, err := b.SetFirstUnset(); err != ErrInvalidIndex {
		t.Fatalf("expected ErrInvalidIndex when full, got %v", err)
	}
}

func TestAndOrAndNotXor(t *testing.T) {
	a := New(8)
	b := New(8)
	a.Set(0)
	a.Set(1)
	a.Set(2)
	b.Set(1)
	b.Set(2)
	b.Set(3)

	and := a.Copy()
	and.And(b)
	if and.Count() != 2 {
		t.Fatalf("AND: expected 2 bits, got %d", and.Count())
	}

	or := a.Copy()
	or.Or(b)
	if or.Count() != 4 {
		t.Fatalf("OR: expected 4 bits, got %d", or.Count())
	}

	andNot := a.Copy()
	andNot.AndNot(b)
	if andNot.Count() != 1 {
		t.Fatalf("ANDNOT: expected 1 bit, got %d", andNot.Count())
	}
	if ok, _ := andNot.Test(0); !ok {
		t.Fatalf("ANDNOT: expected bit 0 set")
	}

	xor := a.Copy()
	xor.Xor(b)
	if xor.Count() != 2 {
		t.Fatalf("XOR: expected 2 bits, got %d", xor.Count())
	}
}

func TestEqualCopy(t *testing.T) {
	a := New(20)
	a.Set(5)
	b := a.Copy()
	if !a.Equal(b) {
		t.Fatalf("expected copy to be equal")
	}
	b.Set(6)
	if a.Equal(b) {
		t.Fatalf("expected divergent bitmaps to differ")
	}
}

func TestMismatchedSizeErrors(t *testing.T) {
	a := New(8)
	b := New(16)
	if err := a.And(b); err != ErrInvalidIndex {
		t.Fatalf("expected ErrInvalidIndex for mismatched sizes, got %v", err)
	}
}
