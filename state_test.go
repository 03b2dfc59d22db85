package mkbsc

import (
	"errors"
	"testing"
)

// TestBaseState verifies the base-level constructor and accessors.
func TestBaseState(t *testing.T) {
	s := NewBaseState("start")
	if !s.IsBase() {
		t.Fatal("IsBase() = false for a base state")
	}
	if s.Label() != "start" {
		t.Errorf("Label() = %q, want %q", s.Label(), "start")
	}
	if s.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", s.Depth())
	}
	if s.Arity() != 1 {
		t.Errorf("Arity() = %d, want 1", s.Arity())
	}
	proj := s.Project(3)
	if proj.Len() != 1 || !proj.Contains(s) {
		t.Error("a base state must project to a singleton of itself for any player")
	}
}

// TestStructuralEquality verifies that equality ignores identity and
// member insertion order.
func TestStructuralEquality(t *testing.T) {
	a1, a2 := NewBaseState("a"), NewBaseState("a")
	b := NewBaseState("b")
	if !a1.Equal(a2) {
		t.Fatal("two base states with the same label must be equal")
	}
	if a1.Equal(b) {
		t.Fatal("base states with different labels must differ")
	}
	if a1.Hash() != a2.Hash() {
		t.Error("equal states must hash equally")
	}

	s1 := mustNested([]Set{NewSet(a1, b), NewSet(a1)})
	s2 := mustNested([]Set{NewSet(b, a2), NewSet(a2)})
	if !s1.Equal(s2) {
		t.Error("nested states with equal per-player sets must be equal regardless of build order")
	}
	s3 := mustNested([]Set{NewSet(a1), NewSet(a1, b)})
	if s1.Equal(s3) {
		t.Error("swapping player components must change the state")
	}
}

// TestNewStateArityMismatch verifies the construction guards.
func TestNewStateArityMismatch(t *testing.T) {
	a := NewBaseState("a")
	nested := mustNested([]Set{NewSet(a), NewSet(a)})

	if _, err := NewState(nil); !errors.Is(err, ErrArityMismatch) {
		t.Errorf("NewState(nil) err = %v, want ErrArityMismatch", err)
	}
	if _, err := NewState([]Set{NewSet(a), NewSet()}); !errors.Is(err, ErrArityMismatch) {
		t.Errorf("empty player set err = %v, want ErrArityMismatch", err)
	}
	if _, err := NewState([]Set{NewSet(a, nested), NewSet(a)}); !errors.Is(err, ErrArityMismatch) {
		t.Errorf("mixed-level members err = %v, want ErrArityMismatch", err)
	}
}

// TestConsistentBase verifies base-state resolution through two levels
// of nesting, plus the base-level idempotence property.
func TestConsistentBase(t *testing.T) {
	x := NewBaseState("x")
	got, err := x.ConsistentBase()
	if err != nil {
		t.Fatalf("ConsistentBase() error: %v", err)
	}
	if got.Len() != 1 || !got.Contains(x) {
		t.Fatal("ConsistentBase of a base state must be its own singleton")
	}

	a, b := NewBaseState("a"), NewBaseState("b")
	s := mustNested([]Set{NewSet(a, b), NewSet(a)})
	got, err = s.ConsistentBase()
	if err != nil {
		t.Fatalf("ConsistentBase() error: %v", err)
	}
	if got.Len() != 1 || !got.Contains(a) {
		t.Errorf("ConsistentBase = %v, want {a}", got.id)
	}

	// One level deeper: both members still agree only on a.
	s2 := mustNested([]Set{NewSet(s), NewSet(s)})
	got, err = s2.ConsistentBase()
	if err != nil {
		t.Fatalf("ConsistentBase() error: %v", err)
	}
	if got.Len() != 1 || !got.Contains(a) {
		t.Errorf("nested ConsistentBase = %v, want {a}", got.id)
	}
}

// TestConsistentBaseInconsistent verifies that a disjoint construction
// is reported as a bug rather than recovered from.
func TestConsistentBaseInconsistent(t *testing.T) {
	a, b := NewBaseState("a"), NewBaseState("b")
	s := mustNested([]Set{NewSet(a), NewSet(b)})
	if _, err := s.ConsistentBase(); !errors.Is(err, ErrInconsistentKnowledge) {
		t.Errorf("ConsistentBase err = %v, want ErrInconsistentKnowledge", err)
	}
}

// TestSetOperations exercises the canonical set type.
func TestSetOperations(t *testing.T) {
	a, b, c := NewBaseState("a"), NewBaseState("b"), NewBaseState("c")
	ab := NewSet(a, b, a) // duplicate folded
	if ab.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ab.Len())
	}
	bc := NewSet(c, b)

	if got := ab.Intersect(bc); got.Len() != 1 || !got.Contains(b) {
		t.Errorf("Intersect = %v, want {b}", got.id)
	}
	if got := ab.Union(bc); got.Len() != 3 {
		t.Errorf("Union has %d members, want 3", got.Len())
	}
	if !ab.Equal(NewSet(NewBaseState("b"), NewBaseState("a"))) {
		t.Error("sets with structurally equal members must be equal")
	}
	if ab.Contains(c) {
		t.Error("Contains(c) on {a, b}")
	}
}
