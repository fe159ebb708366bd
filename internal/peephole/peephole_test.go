package peephole

import (
	"testing"

	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

func fn(children ...*tree.Node) *tree.Node {
	f := ir.Func("f", 0, false, true)
	for _, c := range children {
		f.Append(c)
	}
	return f
}

func tags(n *tree.Node) []string {
	out := make([]string, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.Tag
	}
	return out
}

func TestAdjacentStackAllocsFuse(t *testing.T) {
	f := fn(ir.StackAlloc(2), ir.StackAlloc(3), ir.Ret())
	optim(f)
	got := tags(f)
	if len(got) != 2 || got[0] != "stack_alloc" || got[1] != "ret" {
		t.Fatalf("expected [stack_alloc, ret], got %v", got)
	}
	size, _ := f.Nth(0).Get("size")
	if size != "5" {
		t.Fatalf("expected fused size 5, got %s", size)
	}
}

func TestFreeThenAllocBecomesFreeAlloc(t *testing.T) {
	f := fn(ir.StackFree(2), ir.StackAlloc(3), ir.Ret())
	optim(f)
	got := tags(f)
	if len(got) != 2 || got[0] != "stack_free_alloc" {
		t.Fatalf("expected [stack_free_alloc, ret], got %v", got)
	}
}

func TestStackFreeBeforeRetIsDropped(t *testing.T) {
	f := fn(ir.StackFree(2), ir.Ret())
	optim(f)
	got := tags(f)
	if len(got) != 1 || got[0] != "ret" {
		t.Fatalf("expected [ret] only, got %v", got)
	}
}

func TestDeadCodeAfterJmpDroppedUntilLabel(t *testing.T) {
	f := fn(ir.Jmp("L1"), ir.StackAlloc(1), ir.Label("L1"), ir.Ret())
	optim(f)
	got := tags(f)
	if len(got) != 3 {
		t.Fatalf("expected dead stack_alloc dropped, got %v", got)
	}
	for _, tag := range got {
		if tag == "stack_alloc" {
			t.Fatalf("stack_alloc after jmp before label should have been dropped")
		}
	}
}

func TestIdempotent(t *testing.T) {
	f := fn(ir.StackAlloc(2), ir.StackFree(1), ir.StackAlloc(4), ir.Jmp("L1"),
		ir.StackAlloc(9), ir.Label("L1"), ir.StackFree(2), ir.Ret())
	optim(f)
	first := tags(f)
	optim(f)
	second := tags(f)
	if len(first) != len(second) {
		t.Fatalf("second pass changed instruction count: %v -> %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("second pass changed tags: %v -> %v", first, second)
		}
	}
}
