package genstack_test

import (
	"testing"

	"oocbe/internal/genstack"
)

func TestBlockNesting(t *testing.T) {
	var s genstack.Stack
	m := &genstack.MethodFrame{Name: "foo"}
	s.Push(m)

	outer := s.BlockPush()
	if outer.Ofs != 0 {
		t.Fatalf("outer block ofs = %d, want 0", outer.Ofs)
	}
	s.VarAddHard("a")
	if outer.Size != 1 || outer.Vars[0].Ofs != -1 {
		t.Fatalf("unexpected outer block state: %+v", outer)
	}

	inner := s.BlockPush()
	if inner.Ofs != outer.Ofs-outer.Size {
		t.Fatalf("inner block ofs = %d, want %d", inner.Ofs, outer.Ofs-outer.Size)
	}
	if v := s.VarFind("a"); v == nil || v.Ofs != -1 {
		t.Fatalf("VarFind did not see outer variable: %+v", v)
	}

	s.Pop(inner)
	s.Pop(outer)
	s.Pop(m)
}

func TestBlockCurrentStopsAtMethod(t *testing.T) {
	var s genstack.Stack
	m := &genstack.MethodFrame{Name: "foo"}
	s.Push(m)
	if s.BlockCurrent() != nil {
		t.Fatalf("BlockCurrent should be nil before any block is pushed")
	}
}

func TestClassCurrentSearchesPastMethod(t *testing.T) {
	var s genstack.Stack
	c := &genstack.ClassFrame{Name: "Foo"}
	s.Push(c)
	m := &genstack.MethodFrame{Name: "bar"}
	s.Push(m)
	b := s.BlockPush()

	if got := s.ClassCurrent(); got != c {
		t.Fatalf("ClassCurrent() = %v, want %v", got, c)
	}
	s.Pop(b)
	s.Pop(m)
	s.Pop(c)
}

func TestBreakLoopLabelsAllocatedOnce(t *testing.T) {
	var s genstack.Stack
	var lab genstack.Labeler

	br := s.BreakPush(&lab, "for")
	lp := s.LoopPush(&lab, "for")
	if br.ExitLabel == lp.ContinueLabel {
		t.Fatalf("break and loop labels collided: %q", br.ExitLabel)
	}
	if s.NearestBreak() != br {
		t.Fatalf("NearestBreak did not find break frame")
	}
	if s.NearestLoop() != lp {
		t.Fatalf("NearestLoop did not find loop frame")
	}
	s.Pop(lp)
	s.Pop(br)
}

func TestFullyQualifiedName(t *testing.T) {
	var s genstack.Stack
	ns := &genstack.NamespaceFrame{Name: "net"}
	s.Push(ns)
	cl := &genstack.ClassFrame{Name: "Scanner"}
	s.Push(cl)

	got := genstack.FullyQualifiedName(&s, "mod", "run")
	want := "mod$net$Scanner$run"
	if got != want {
		t.Fatalf("FullyQualifiedName() = %q, want %q", got, want)
	}
}
