package generator

import (
	"testing"

	"oocbe/internal/diagnostics"
	"oocbe/internal/genstack"
	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

func obj1(name string) *tree.Node {
	n := tree.New("obj1")
	n.Set("name", name)
	return n
}

func sym(tag string, children ...*tree.Node) *tree.Node {
	n := tree.New(tag)
	for _, c := range children {
		n.Append(c)
	}
	return n
}

func newGen() *Generator {
	return New("m", &diagnostics.Sink{})
}

func countTag(n *tree.Node, tag string) int {
	c := 0
	for _, ch := range n.Children {
		if ch.Tag == tag {
			c++
		}
	}
	return c
}

func TestShortCircuitEmitsConditionalJumpPerOperandButLast(t *testing.T) {
	g := newGen()
	g.cur = tree.New("func")
	land := sym("land", obj1("a"), obj1("b"), obj1("c"))
	g.lowerShortCircuit(land, ir.None(), true)

	if n := countTag(g.cur, "jf"); n != 2 {
		t.Fatalf("expected 2 jf instructions (one per non-final operand), got %d", n)
	}
	if n := countTag(g.cur, "label"); n != 1 {
		t.Fatalf("expected exactly one done label, got %d", n)
	}
}

func TestShortCircuitOrUsesJt(t *testing.T) {
	g := newGen()
	g.cur = tree.New("func")
	lor := sym("lor", obj1("a"), obj1("b"))
	g.lowerShortCircuit(lor, ir.None(), false)

	if n := countTag(g.cur, "jt"); n != 1 {
		t.Fatalf("expected 1 jt instruction, got %d", n)
	}
	if n := countTag(g.cur, "jf"); n != 0 {
		t.Fatalf("lor must never emit jf, got %d", n)
	}
}

func TestBreakUnwindsThroughBlocksAndExceptFrames(t *testing.T) {
	g := newGen()
	g.cur = tree.New("func")

	brk := g.Stack.BreakPush(&g.Lab, "loop")
	outerBlock := g.Stack.BlockPush()
	outerBlock.Size = 2
	exc := &genstack.ExceptFrame{}
	g.Stack.Push(exc)
	innerBlock := g.Stack.BlockPush()
	innerBlock.Size = 3

	g.lowerBreak(tree.New("break"), 1)

	if n := countTag(g.cur, "except_pop"); n != 1 {
		t.Fatalf("expected one except_pop, got %d", n)
	}
	// only the outer block's 2 slots are cleaned up: the except frame resets
	// the running cleanup total, so the inner block's 3 slots above it are
	// dropped from the count, matching the walk's reset-on-except rule.
	freeSize := ""
	for _, ch := range g.cur.Children {
		if ch.Tag == "stack_free" {
			freeSize, _ = ch.Get("size")
		}
	}
	if freeSize != "2" {
		t.Fatalf("expected stack_free 2 (outer block only), got %q", freeSize)
	}
	if !brk.Used {
		t.Fatalf("break frame should be marked used")
	}
}

func TestBreakPastMethodBoundaryIsAnError(t *testing.T) {
	g := newGen()
	g.cur = tree.New("func")
	g.Stack.Push(&genstack.MethodFrame{Name: "m"})
	g.lowerBreak(tree.New("break"), 1)
	if g.Diag.Count() == 0 {
		t.Fatalf("expected a diagnostic for an out-of-range break")
	}
}
