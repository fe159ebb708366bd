package encoder

import (
	"testing"

	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

func TestGenUintPicksNarrowestWidth(t *testing.T) {
	if n := len(genUint(3, 0)); n != 1 {
		t.Fatalf("expected 1 byte for small uint, got %d", n)
	}
	if n := len(genUint(1<<20, 0)); n <= 1 {
		t.Fatalf("expected a wider encoding for a large uint, got %d bytes", n)
	}
}

func TestGenIntRoundTripsSign(t *testing.T) {
	pos := genInt(5, 0, 5)
	neg := genInt(-5, 0, 5)
	if len(pos) != 1 || len(neg) != 1 {
		t.Fatalf("expected single-byte encodings for small values, got %d/%d", len(pos), len(neg))
	}
	if pos[0] == neg[0] {
		t.Fatalf("positive and negative small ints must not collide: %x vs %x", pos[0], neg[0])
	}
}

func TestGenSrcDstAbstractIsLiteral0x18(t *testing.T) {
	got := genSrcDst(ir.Abstract())
	if len(got) != 1 || got[0] != 0x18 {
		t.Fatalf("expected [0x18], got %v", got)
	}
}

func TestGenSrcDstEncodesBaseRegister(t *testing.T) {
	sp := genSrcDst(ir.Slot(ir.BaseSP, 1))
	bp := genSrcDst(ir.Slot(ir.BaseBP, 1))
	ap := genSrcDst(ir.Slot(ir.BaseAP, 1))
	if sp[0]&0x18 != 0 {
		t.Fatalf("sp base bits should be 0, got %#x", sp[0])
	}
	if bp[0]&0x18 != 1<<3 {
		t.Fatalf("bp base bits wrong: %#x", bp[0])
	}
	if ap[0]&0x18 != 2<<3 {
		t.Fatalf("ap base bits wrong: %#x", ap[0])
	}
}

func TestGenStrHashAppendsLittleEndianCRC32(t *testing.T) {
	got := genStrHash("add")
	if len(got) < 4 {
		t.Fatalf("expected at least a 4-byte CRC32 suffix, got %d bytes", len(got))
	}
	// CRC32("add") = 0xfd1a73e7 (IEEE polynomial); little-endian byte order
	// puts the low byte 0xe7 first.
	tail := got[len(got)-4:]
	if tail[0] != 0xe7 {
		t.Fatalf("expected little-endian CRC32 low byte 0xe7 first, got %#x (full: %x)", tail[0], tail)
	}
}

func fnNode(name string, argc int, children ...*tree.Node) *tree.Node {
	f := ir.Func(name, argc, false, true)
	for _, c := range children {
		f.Append(c)
	}
	return f
}

func TestEncodeTwoFunctionsResolvesForwardCall(t *testing.T) {
	callee := fnNode("callee", 0, ir.Retd())
	caller := fnNode("caller", 0,
		ir.StackAlloc(1),
		ir.Method(ir.Slot(ir.BaseSP, 0), "callee"),
		ir.Retd(),
	)
	mod := tree.New("module")
	mod.Append(caller)
	mod.Append(callee)

	e := New("m")
	if err := e.Encode(mod); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	syms := e.Symbols()
	if _, ok := syms["caller"]; !ok {
		t.Fatalf("caller symbol not bound")
	}
	if _, ok := syms["callee"]; !ok {
		t.Fatalf("callee symbol not bound")
	}
	if len(e.Code()) == 0 {
		t.Fatalf("expected non-empty code buffer")
	}
}

// TestShrinkFixupNarrowsForwardJump exercises spec.md's worked example: a
// forward jmp reserves a pessimistic 9-byte placeholder when its target is
// still unbound, then the post-pass shrink finds the actual displacement
// fits in far fewer bytes once the target binds nearby, and the saved bytes
// are physically removed (not just zero-padded) and everything after
// shifts down to close the gap.
func TestShrinkFixupNarrowsForwardJump(t *testing.T) {
	f := fnNode("f", 0,
		ir.Jmp("near"),
		ir.StackAlloc(1),
		ir.Label("near"),
		ir.Retd(),
	)
	mod := tree.New("module")
	mod.Append(f)

	e := New("m")
	if err := e.Encode(mod); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Without shrinking, the jmp opcode byte + 9 reserved bytes + the
	// stack_alloc's bytes + retd would total far more than what a minimal
	// one-byte-displacement jump needs. Confirm the reservation was
	// actually narrowed: the jmp's displacement is tiny (a few bytes
	// forward), so its encoded width must be far less than 9.
	near := e.Symbols()["near"]
	// jmp opcode (1 byte) + narrowed offset must land before `near`
	// noticeably sooner than a 9-byte reservation would have.
	if near > 1+9 {
		t.Fatalf("expected shrink to have narrowed the forward jump, near at %d", near)
	}
	if near >= 1+9 {
		t.Fatalf("shrink fixup did not reduce the jump's 9-byte placeholder: near=%d", near)
	}
}

func TestShrinkFixupIsIdempotent(t *testing.T) {
	f := fnNode("f", 0,
		ir.Jmp("far"),
		ir.StackAlloc(1),
		ir.StackAlloc(2),
		ir.StackAlloc(3),
		ir.Label("far"),
		ir.Retd(),
	)
	mod := tree.New("module")
	mod.Append(f)
	e := New("m")
	if err := e.Encode(mod); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	before := append([]byte{}, e.Code()...)
	e.shrinkFixups()
	if len(before) != len(e.Code()) {
		t.Fatalf("a second fixup pass changed the code length: %d -> %d", len(before), len(e.Code()))
	}
}
