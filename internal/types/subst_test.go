package types

import "testing"

func TestApplyResolvesChainedMetavars(t *testing.T) {
	s := Subst{
		0: Metavar(1),
		1: Int(),
	}
	got := s.Apply(Metavar(0))
	if !got.Equal(Int()) {
		t.Fatalf("expected int, got %s", got)
	}
}

func TestApplyBreaksCycles(t *testing.T) {
	s := Subst{
		0: Metavar(1),
		1: Metavar(0),
	}
	got := s.Apply(Metavar(0))
	if !got.IsMetavar() {
		t.Fatalf("expected cycle to return a metavar unresolved, got %s", got)
	}
}

func TestApplyRecursesIntoFunction(t *testing.T) {
	s := Subst{0: String(), 1: Bool()}
	fn := Function([]Type{Metavar(0)}, Metavar(1))
	got := s.Apply(fn)
	want := Function([]Type{String()}, Bool())
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestHasMetavarOrMissing(t *testing.T) {
	if HasMetavarOrMissing(Int()) {
		t.Fatal("int should be ground")
	}
	if !HasMetavarOrMissing(Ref(Metavar(3))) {
		t.Fatal("ref(metavar) should be flagged")
	}
	if !HasMetavarOrMissing(Missing()) {
		t.Fatal("missing should be flagged")
	}
}

func TestCoercionIdentity(t *testing.T) {
	if !Id().IsIdentity() {
		t.Fatal("Id() must be identity")
	}
	if !Meta(Int(), Int()).IsIdentity() {
		t.Fatal("Meta(t,t) must be identity")
	}
	if Meta(Int(), Any()).IsIdentity() {
		t.Fatal("Meta(int,any) must not be identity")
	}
}
