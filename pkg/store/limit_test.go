package store

import "testing"

func TestMaxObjectsRejectsWhenFull(t *testing.T) {
	s := New(Options{MaxObjects: 2})

	if !s.Set(1, "a") || !s.Set(2, "b") {
		t.Fatalf("expected Sets below the cap to succeed")
	}
	if s.Set(3, "c") {
		t.Fatalf("expected Set to be rejected at MaxObjects")
	}
	if s.Exists(3) {
		t.Fatalf("rejected object must not exist")
	}
	if st := s.Metrics(); st.Objects != 2 {
		t.Fatalf("Objects=2 expected, got %d", st.Objects)
	}
}

func TestMaxObjectsAllowsOverwriteAtCap(t *testing.T) {
	s := New(Options{MaxObjects: 1})

	s.Set(1, "a")
	if created := s.Set(1, "b"); created {
		t.Fatalf("overwrite should report created=false")
	}
	if v, _ := s.Get(1); v != "b" {
		t.Fatalf("overwrite at cap should succeed, got %v", v)
	}
}

func TestObjectAccountingOnDelete(t *testing.T) {
	s := New(Options{MaxObjects: 1})

	s.Set(1, "a")
	if !s.Delete(1) {
		t.Fatalf("Delete missed a stored object")
	}
	// The slot freed by the delete must be reusable.
	if !s.Set(2, "b") {
		t.Fatalf("expected the freed slot to accept a new object")
	}
	if st := s.Metrics(); st.Objects != 1 {
		t.Fatalf("Objects=1 expected, got %d", st.Objects)
	}
}
