package cbackend

import (
	"strings"
	"testing"

	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

func fn(name string, argc int, arrayArg, public bool, children ...*tree.Node) *tree.Node {
	f := ir.Func(name, argc, arrayArg, public)
	for _, c := range children {
		f.Append(c)
	}
	return f
}

func TestEmitDeclaresPrivateFunctionsAndDefinesBoth(t *testing.T) {
	mod := tree.New("module")
	mod.Append(fn("__m_init__", 1, false, true, ir.Retd()))
	mod.Append(fn("helper", 0, false, false, ir.Retd()))

	out, err := New().Emit(mod)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if !strings.Contains(out, "#include \"oovm.h\"") {
		t.Fatalf("missing include line")
	}
	if !strings.Contains(out, "void helper(ovm_thread_t th, ovm_inst_t dst, unsigned argc, ovm_inst_t argv);") {
		t.Fatalf("expected forward declaration for private function helper, got:\n%s", out)
	}
	if strings.Contains(out, "void __m_init__(ovm_thread_t th, ovm_inst_t dst, unsigned argc, ovm_inst_t argv);") {
		t.Fatalf("public function must not get a forward declaration, got:\n%s", out)
	}
	if strings.Count(out, "void helper(ovm_thread_t th, ovm_inst_t dst, unsigned argc, ovm_inst_t argv)") != 2 {
		t.Fatalf("expected helper's signature to appear twice (decl + def), got:\n%s", out)
	}
}

func TestEmitUsesArgcChkForFixedArity(t *testing.T) {
	mod := tree.New("module")
	mod.Append(fn("f", 2, false, true, ir.Retd()))
	out, err := New().Emit(mod)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if !strings.Contains(out, "ovm_method_argc_chk_exact(th, 2);") {
		t.Fatalf("expected an exact argc check, got:\n%s", out)
	}
}

func TestEmitUsesArrayArgPushForArrayRest(t *testing.T) {
	mod := tree.New("module")
	mod.Append(fn("f", 3, true, true, ir.Retd()))
	out, err := New().Emit(mod)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if !strings.Contains(out, "ovm_method_array_arg_push(th, 2);") {
		t.Fatalf("expected array_arg_push with argc-1 fixed args, got:\n%s", out)
	}
}

func TestEmitDeclaresBpWhenAFrameSlotIsUsed(t *testing.T) {
	mod := tree.New("module")
	mod.Append(fn("f", 1, false, true,
		ir.InstAssign(ir.Slot(ir.BaseBP, -1), ir.Slot(ir.BaseAP, 0)),
		ir.Retd(),
	))
	out, err := New().Emit(mod)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if !strings.Contains(out, "ovm_inst_t __bp = th->sp;") {
		t.Fatalf("expected __bp declared when a bp-relative slot is referenced, got:\n%s", out)
	}
	if !strings.Contains(out, "ovm_inst_assign(&__bp[-1], &argv[0]);") {
		t.Fatalf("expected bp/ap operands rendered via srcDst, got:\n%s", out)
	}
}

func TestEmitOmitsBpWhenUnused(t *testing.T) {
	mod := tree.New("module")
	mod.Append(fn("f", 0, false, true,
		ir.StackAlloc(1),
		ir.Retd(),
	))
	out, err := New().Emit(mod)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if strings.Contains(out, "__bp") {
		t.Fatalf("did not expect __bp to be declared, got:\n%s", out)
	}
}
