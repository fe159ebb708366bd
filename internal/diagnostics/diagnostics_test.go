package diagnostics_test

import (
	"testing"

	"oocbe/internal/diagnostics"
)

func TestSinkAccumulates(t *testing.T) {
	var s diagnostics.Sink
	s.Report(diagnostics.KindMissingMethod, diagnostics.Location{File: "a.oo", Line: 4}, "class %s missing method %s", "Foo", "bar")
	s.Report(diagnostics.KindContext, diagnostics.Location{}, "break not within a loop")

	if s.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", s.Count())
	}
	errs := s.Errors()
	if errs[0].Error() != "a.oo:4: ClassMissingMethod: class Foo missing method bar" {
		t.Fatalf("unexpected message: %s", errs[0].Error())
	}
	if errs[1].Error() != "ContextError: break not within a loop" {
		t.Fatalf("unexpected message: %s", errs[1].Error())
	}
}

func TestAssertPanicsOnlyWhenFalse(t *testing.T) {
	diagnostics.Assert(true, "should not panic")

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		if _, ok := r.(*diagnostics.AssertionFailure); !ok {
			t.Fatalf("expected *AssertionFailure, got %T", r)
		}
	}()
	diagnostics.Assert(false, "unreachable state %d", 7)
}
