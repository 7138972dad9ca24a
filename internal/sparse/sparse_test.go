package sparse

import "testing"

func TestSetBasics(t *testing.T) {
	s := NewSet(16)
	if s.Contains(3) {
		t.Error("fresh set should be empty")
	}
	s.Insert(3)
	s.Insert(7)
	s.Insert(3) // duplicate
	if !s.Contains(3) || !s.Contains(7) {
		t.Error("inserted values missing")
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if s.Contains(99) {
		t.Error("out-of-capacity value must not be a member")
	}
	s.Clear()
	if s.Len() != 0 || s.Contains(3) {
		t.Error("Clear failed")
	}
}

func TestValuesOrder(t *testing.T) {
	s := NewSet(8)
	for _, v := range []uint32{5, 1, 6} {
		s.Insert(v)
	}
	got := s.Values()
	want := []uint32{5, 1, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values = %v, want %v", got, want)
		}
	}
}
