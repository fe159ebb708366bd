package generator

import (
	"testing"

	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

// TestCondExprDoesNotDoubleFreeItsConditionSlot guards against a past bug
// where condexpr's condition was materialized into an explicit
// stack_alloc(1) slot and then stack_free(1)'d a second time after popjf
// already self-balanced the stack, corrupting every later sp-relative
// offset in the enclosing function.
func TestCondExprDoesNotDoubleFreeItsConditionSlot(t *testing.T) {
	g := newGen()
	g.cur = tree.New("func")
	ce := sym("condexpr", obj1("cond"), obj1("a"), obj1("b"))
	g.lowerCondExpr(ce, ir.None())

	if n := countTag(g.cur, "stack_alloc"); n != 0 {
		t.Fatalf("condexpr must not allocate a slot for its condition, got %d stack_alloc", n)
	}
	if n := countTag(g.cur, "stack_free"); n != 0 {
		t.Fatalf("condexpr must not free a slot for its condition, got %d stack_free", n)
	}
	if n := countTag(g.cur, "environ_at_push"); n != 1 {
		t.Fatalf("expected the non-local condition to be pushed, got %d environ_at_push", n)
	}
	if n := countTag(g.cur, "popjf"); n != 1 {
		t.Fatalf("expected exactly one popjf, got %d", n)
	}
}

// TestModuleOrClassAssignUsesThreeArgAtput guards against a past bug that
// called atput with argc=2 instead of 3 (receiver, key, value).
func TestModuleOrClassAssignUsesThreeArgAtput(t *testing.T) {
	g := newGen()
	g.cur = tree.New("func")
	g.lowerModuleOrClassAssign("x", tree.IntNode(5, 0))

	found := false
	for _, ch := range g.cur.Children {
		if ch.Tag == "method_call" && ch.GetOr("sel", "") == "atput" {
			found = true
			if argc := ch.GetOr("argc", ""); argc != "3" {
				t.Fatalf("expected atput argc=3, got %q", argc)
			}
		}
	}
	if !found {
		t.Fatalf("expected an atput method_call")
	}
}

// TestLowerMethodInstallsIntoTableWithAdjustedReceiverAndCorrectArgc guards
// against three past bugs in one function: the class receiver's sp-offset
// not being adjusted for the 3 slots LowerMethod itself reserves, the
// methods/classmethods accessor call using argc=0 instead of 1, and atput
// using argc=2 instead of 3.
func TestLowerMethodInstallsIntoTableWithAdjustedReceiverAndCorrectArgc(t *testing.T) {
	g := newGen()
	g.cur = tree.New("func")
	classRecv := ir.Slot(ir.BaseSP, 4)

	m := sym("method", obj1("greet"), tree.New("params"), tree.New("block"))
	g.LowerMethod(m, classRecv, false)

	var sawInstAssign, sawAccessor, sawAtput bool
	for _, ch := range g.cur.Children {
		switch {
		case ch.Tag == "inst_assign" && ch.GetOr("dst", "") == "sp[0]":
			sawInstAssign = true
			if src := ch.GetOr("src", ""); src != "sp[7]" {
				t.Fatalf("expected class receiver adjusted to sp[7] (4+3), got %q", src)
			}
		case ch.Tag == "method_call" && ch.GetOr("sel", "") == "methods":
			sawAccessor = true
			if argc := ch.GetOr("argc", ""); argc != "1" {
				t.Fatalf("expected methods accessor argc=1, got %q", argc)
			}
		case ch.Tag == "method_call" && ch.GetOr("sel", "") == "atput":
			sawAtput = true
			if argc := ch.GetOr("argc", ""); argc != "3" {
				t.Fatalf("expected atput argc=3, got %q", argc)
			}
		}
	}
	if !sawInstAssign {
		t.Fatalf("expected the class receiver to be re-targeted into the table slot")
	}
	if !sawAccessor {
		t.Fatalf("expected a methods accessor call")
	}
	if !sawAtput {
		t.Fatalf("expected an atput call")
	}
}

// TestNegLowersAsZeroSubNotAnInventedSelector guards against a past bug
// that sent an invented "neg" selector (absent from the runtime selector
// list) to negate a surviving non-literal minus node; negation is instead
// lowered as 0.sub(operand), reusing the listed "sub" selector.
func TestNegLowersAsZeroSubNotAnInventedSelector(t *testing.T) {
	g := newGen()
	g.cur = tree.New("func")
	g.lowerNeg(sym("minus", obj1("y")), ir.None())

	for _, ch := range g.cur.Children {
		if ch.Tag == "method_call" && ch.GetOr("sel", "") == "neg" {
			t.Fatalf("must not send an invented \"neg\" selector")
		}
	}
	sawZero, sawSub := false, false
	for _, ch := range g.cur.Children {
		if ch.Tag == "int_newc" && ch.GetOr("val", "") == "0" {
			sawZero = true
		}
		if ch.Tag == "method_call" && ch.GetOr("sel", "") == "sub" {
			sawSub = true
			if argc := ch.GetOr("argc", ""); argc != "1" {
				t.Fatalf("expected sub argc=1, got %q", argc)
			}
		}
	}
	if !sawZero {
		t.Fatalf("expected a zero literal to seed the subtraction")
	}
	if !sawSub {
		t.Fatalf("expected a sub method_call")
	}
}
