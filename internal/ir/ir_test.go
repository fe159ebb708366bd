package ir_test

import (
	"testing"

	"oocbe/internal/ir"
)

func TestDestStringRoundTrip(t *testing.T) {
	cases := []ir.Dest{
		ir.Slot(ir.BaseAP, -1),
		ir.Slot(ir.BaseBP, 0),
		ir.Slot(ir.BaseSP, 3),
		ir.Abstract(),
	}
	for _, d := range cases {
		s := d.String()
		got, err := ir.ParseDest(s)
		if err != nil {
			t.Fatalf("ParseDest(%q): %v", s, err)
		}
		if got != d {
			t.Fatalf("round-trip mismatch: %v -> %q -> %v", d, s, got)
		}
	}
}

func TestDestAdjOnlyShiftsSP(t *testing.T) {
	sp := ir.Slot(ir.BaseSP, 0).Adj(2)
	if sp.Offset != 2 {
		t.Fatalf("sp[0].Adj(2) = %v, want offset 2", sp)
	}
	bp := ir.Slot(ir.BaseBP, 0).Adj(2)
	if bp.Offset != 0 {
		t.Fatalf("bp[0].Adj(2) should not shift, got %v", bp)
	}
}

func TestPushVsSlotDualForms(t *testing.T) {
	push := ir.Int(ir.Push(), 5)
	if push.Tag != ir.TagIntPushc {
		t.Fatalf("push destination should choose %s, got %s", ir.TagIntPushc, push.Tag)
	}
	if _, ok := push.Get("dst"); ok {
		t.Fatalf("push form should not carry a dst attribute")
	}

	slot := ir.Int(ir.Slot(ir.BaseBP, -1), 5)
	if slot.Tag != ir.TagIntNewc {
		t.Fatalf("slot destination should choose %s, got %s", ir.TagIntNewc, slot.Tag)
	}
	if v, _ := slot.Get("dst"); v != "bp[-1]" {
		t.Fatalf("slot dst attribute = %q, want bp[-1]", v)
	}
}

func TestFloatUsesHexFloatForm(t *testing.T) {
	n := ir.Float(ir.Push(), 1.5)
	v, _ := n.Get("val")
	if v != "0x1.8p+00" {
		t.Fatalf("Float val = %q, want 0x1.8p+00", v)
	}
}

func TestSimpleOpcodeTable(t *testing.T) {
	b, ok := ir.SimpleOpcode(ir.TagStackAlloc)
	if !ok || b != ir.OpStackAlloc {
		t.Fatalf("SimpleOpcode(stack_alloc) = %v, %v", b, ok)
	}
	if _, ok := ir.SimpleOpcode(ir.TagExceptPop); ok {
		t.Fatalf("except_pop should not have a single fixed opcode")
	}
}

func TestTerminator(t *testing.T) {
	if !ir.Terminator(ir.TagJmp) || !ir.Terminator(ir.TagRet) {
		t.Fatalf("jmp/ret should be terminators")
	}
	if ir.Terminator(ir.TagJt) {
		t.Fatalf("jt is conditional, not a terminator")
	}
}
