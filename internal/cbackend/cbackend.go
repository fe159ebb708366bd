// Package cbackend implements pass C, the alternative to the binary
// encoder: translating the same peephole-optimized IR into a C source file
// that calls into the ovm_* runtime API, grounded on ovmc5.py in full.
// Every gen_<tag> function in that file becomes one case in Gen's switch,
// producing the identical line of C for the identical IR shape; the one
// structural difference is bp_used, which ovmc5.py tracks as a module
// global mutated by gen_src_dst during a throwaway dry-run render into
// /dev/null — here it is a field on Backend reset before each function's
// two passes.
package cbackend

import (
	"fmt"
	"strconv"
	"strings"

	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

// Backend accumulates the generated C source for one module.
type Backend struct {
	bpUsed bool
}

// New creates a Backend ready to translate a module.
func New() *Backend { return &Backend{} }

// srcDst renders a destination/source descriptor as the C expression
// ovmc5.py's gen_src_dst produces: "dst" unchanged, "&th->sp[n]" for a
// stack slot, "&__bp[n]" for a frame-relative local (and notes that the
// function's prologue must declare __bp), "&argv[n]" for an argument.
func (b *Backend) srcDst(d ir.Dest) string {
	if d.Kind == ir.DestAbstract {
		return "dst"
	}
	s := d.String()
	switch d.Base {
	case ir.BaseSP:
		return "&th->" + s
	case ir.BaseBP:
		b.bpUsed = true
		return "&__" + s
	case ir.BaseAP:
		return "&argv" + s[2:]
	default:
		return s
	}
}

func dstOf(nd *tree.Node) ir.Dest {
	d, err := ir.ParseDest(nd.GetOr("dst", ""))
	if err != nil {
		d = ir.None()
	}
	return d
}

func srcOf(nd *tree.Node, key string) ir.Dest {
	d, err := ir.ParseDest(nd.GetOr(key, ""))
	if err != nil {
		d = ir.None()
	}
	return d
}

func boolDigit(nd *tree.Node) int {
	if nd.GetOr("val", "") == "#true" {
		return 1
	}
	return 0
}

// genNode appends the C statement(s) for one IR instruction node to w,
// dispatching on its tag exactly the way ovmc5.py's gen_node/gen_<tag>
// family does, one function (here, one case) per opcode.
func (b *Backend) genNode(w *strings.Builder, nd *tree.Node) error {
	switch nd.Tag {
	case ir.TagStackAlloc:
		fmt.Fprintf(w, "ovm_stack_alloc(th, %s);\n", nd.GetOr("size", "0"))
	case ir.TagStackFree:
		fmt.Fprintf(w, "ovm_stack_free(th, %s);\n", nd.GetOr("size", "0"))
	case ir.TagStackFreeAlloc:
		fmt.Fprintf(w, "ovm_stack_free_alloc(th, %s, %s);\n", nd.GetOr("size_free", "0"), nd.GetOr("size_alloc", "0"))
	case ir.TagMethodCall:
		fmt.Fprintf(w, "ovm_method_callsch(th, %s, _OVM_STR_CONST_HASH(\"%s\"), %s);\n",
			b.srcDst(dstOf(nd)), nd.GetOr("sel", ""), nd.GetOr("argc", "0"))
	case ir.TagNilAssign:
		fmt.Fprintf(w, "ovm_inst_assign_obj(%s, 0);\n", b.srcDst(dstOf(nd)))
	case ir.TagNilPush:
		w.WriteString("ovm_stack_push_obj(th, 0);\n")
	case ir.TagInstAssign:
		fmt.Fprintf(w, "ovm_inst_assign(%s, %s);\n", b.srcDst(dstOf(nd)), b.srcDst(srcOf(nd, "src")))
	case ir.TagStackPush:
		fmt.Fprintf(w, "ovm_stack_push(th, %s);\n", b.srcDst(srcOf(nd, "src")))
	case ir.TagBoolNewc:
		fmt.Fprintf(w, "ovm_bool_newc(%s, %d);\n", b.srcDst(dstOf(nd)), boolDigit(nd))
	case ir.TagBoolPushc:
		fmt.Fprintf(w, "ovm_bool_pushc(th, %d);\n", boolDigit(nd))
	case ir.TagIntNewc:
		fmt.Fprintf(w, "ovm_int_newc(%s, %s);\n", b.srcDst(dstOf(nd)), nd.GetOr("val", "0"))
	case ir.TagIntPushc:
		fmt.Fprintf(w, "ovm_int_pushc(th, %s);\n", nd.GetOr("val", "0"))
	case ir.TagFloatNewc:
		fmt.Fprintf(w, "ovm_float_newc(%s, %s);\n", b.srcDst(dstOf(nd)), nd.GetOr("val", "0"))
	case ir.TagFloatPushc:
		fmt.Fprintf(w, "ovm_float_pushc(th, %s);\n", nd.GetOr("val", "0"))
	case ir.TagMethodNewc:
		fmt.Fprintf(w, "ovm_codemethod_newc(%s, %s);\n", b.srcDst(dstOf(nd)), nd.GetOr("func", ""))
	case ir.TagMethodPushc:
		fmt.Fprintf(w, "ovm_codemethod_pushc(th, %s);\n", nd.GetOr("func", ""))
	case ir.TagStrNewc:
		fmt.Fprintf(w, "ovm_str_newc(%s, _OVM_STR_CONST(\"%s\"));\n", b.srcDst(dstOf(nd)), nd.GetOr("val", ""))
	case ir.TagStrPushc:
		fmt.Fprintf(w, "ovm_str_pushc(th, _OVM_STR_CONST(\"%s\"));\n", nd.GetOr("val", ""))
	case ir.TagStrNewch:
		fmt.Fprintf(w, "ovm_str_newch(%s, _OVM_STR_CONST_HASH(\"%s\"));\n", b.srcDst(dstOf(nd)), nd.GetOr("val", ""))
	case ir.TagStrPushch:
		fmt.Fprintf(w, "ovm_str_pushch(th, _OVM_STR_CONST_HASH(\"%s\"));\n", nd.GetOr("val", ""))
	case ir.TagLabel:
		fmt.Fprintf(w, "%s: ;\n", nd.GetOr("name", ""))
	case ir.TagPopjt:
		fmt.Fprintf(w, "if (ovm_bool_if(th))  goto %s;\n", nd.GetOr("label", ""))
	case ir.TagPopjf:
		fmt.Fprintf(w, "if (!ovm_bool_if(th))  goto %s;\n", nd.GetOr("label", ""))
	case ir.TagJt:
		fmt.Fprintf(w, "if (ovm_inst_boolval(th, %s))  goto %s;\n", b.srcDst(srcOf(nd, "src")), nd.GetOr("label", ""))
	case ir.TagJf:
		fmt.Fprintf(w, "if (!ovm_inst_boolval(th, %s))  goto %s;\n", b.srcDst(srcOf(nd, "src")), nd.GetOr("label", ""))
	case ir.TagJmp:
		fmt.Fprintf(w, "goto %s;\n", nd.GetOr("label", ""))
	case ir.TagEnvironAt:
		fmt.Fprintf(w, "ovm_environ_atc(th, %s, _OVM_STR_CONST_HASH(\"%s\"));\n", b.srcDst(dstOf(nd)), nd.GetOr("name", ""))
	case ir.TagEnvironAtPush:
		fmt.Fprintf(w, "ovm_environ_atc_push(th, _OVM_STR_CONST_HASH(\"%s\"));\n", nd.GetOr("name", ""))
	case ir.TagExceptPush:
		fmt.Fprintf(w, "setjmp(ovm_frame_except_push(th, %s));\n", b.srcDst(srcOf(nd, "var")))
	case ir.TagExceptPop:
		fmt.Fprintf(w, "ovm_frame_except_pop(th, %s);\n", nd.GetOr("cnt", "1"))
	case ir.TagJx:
		fmt.Fprintf(w, "if (ovm_except_chk(th))  goto %s;\n", nd.GetOr("label", ""))
	case ir.TagExceptRaise:
		fmt.Fprintf(w, "ovm_except_raise(th, %s);\n", b.srcDst(srcOf(nd, "src")))
	case ir.TagExceptReraise:
		w.WriteString("ovm_except_reraise(th);\n")
	case ir.TagRet:
		w.WriteString("return;\n")
	case ir.TagRetd:
		w.WriteString("ovm_inst_assign(dst, &argv[0]);\n")
		w.WriteString("return;\n")
	case ir.TagArgcChk, ir.TagArrayArgPush:
		// emitted by the function prologue writer instead; see Emit.
	case ir.TagComment:
		// a debug-dump annotation, never reaches the generated C source
	default:
		return fmt.Errorf("cbackend: no C translation for IR tag %q", nd.Tag)
	}
	return nil
}

func funcSignature(f *tree.Node) string {
	return fmt.Sprintf("void %s(ovm_thread_t th, ovm_inst_t dst, unsigned argc, ovm_inst_t argv)", f.GetOr("name", ""))
}

// Emit translates every function in module to C source, mirroring
// ovmc5.py's process_file: an #include, forward declarations for every
// private function, then each function's definition with its bp_used
// dry-run-determined prologue.
func (b *Backend) Emit(module *tree.Node) (string, error) {
	var out strings.Builder
	out.WriteString("#include \"oovm.h\"\n")

	for _, f := range module.Children {
		if f.Tag != ir.TagFunc {
			continue
		}
		if f.GetOr("visibility", "") == "private" {
			out.WriteString(funcSignature(f))
			out.WriteString(";\n")
		}
	}

	for _, f := range module.Children {
		if f.Tag != ir.TagFunc {
			continue
		}
		b.bpUsed = false
		var discard strings.Builder
		for _, s := range f.Children {
			if err := b.genNode(&discard, s); err != nil {
				return "", fmt.Errorf("cbackend: function %s: %w", f.GetOr("name", "?"), err)
			}
		}
		bpUsed := b.bpUsed

		out.WriteString(funcSignature(f))
		out.WriteString("\n{\n")
		if bpUsed {
			out.WriteString("ovm_inst_t __bp = th->sp;\n")
		}
		argc := f.GetOr("argc", "0")
		if f.GetOr("arrayarg", "") == "1" {
			n, _ := strconv.Atoi(argc)
			fmt.Fprintf(&out, "ovm_method_array_arg_push(th, %d);\n", n-1)
		} else {
			fmt.Fprintf(&out, "ovm_method_argc_chk_exact(th, %s);\n", argc)
		}
		b.bpUsed = false
		for _, s := range f.Children {
			if err := b.genNode(&out, s); err != nil {
				return "", fmt.Errorf("cbackend: function %s: %w", f.GetOr("name", "?"), err)
			}
		}
		out.WriteString("}\n")
	}
	return out.String(), nil
}
