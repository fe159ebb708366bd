package ir

import (
	"strconv"

	"oocbe/internal/tree"
)

// New starts a bare instruction node with the given tag. Most callers use
// one of the typed constructors below instead.
func New(tag string) *tree.Node {
	return tree.New(tag)
}

func withDst(n *tree.Node, dst Dest) *tree.Node {
	n.Set("dst", dst.String())
	return n
}

// StackAlloc/StackFree/StackFreeAlloc grow or shrink the current frame's
// temporary-slot region. They emit a node for any size, including zero;
// the peephole pass coalesces adjacent nodes but does not drop zero-size
// ones, so callers that want nothing for n==0 skip the call (as the
// generator's stackAlloc/stackFree do).
func StackAlloc(size int) *tree.Node {
	n := New(TagStackAlloc)
	n.Set("size", strconv.Itoa(size))
	return n
}

func StackFree(size int) *tree.Node {
	n := New(TagStackFree)
	n.Set("size", strconv.Itoa(size))
	return n
}

func StackFreeAlloc(free, alloc int) *tree.Node {
	n := New(TagStackFreeAlloc)
	n.Set("size_free", strconv.Itoa(free))
	n.Set("size_alloc", strconv.Itoa(alloc))
	return n
}

// InstAssign copies src into dst (both concrete, not None/Push).
func InstAssign(dst, src Dest) *tree.Node {
	n := New(TagInstAssign)
	withDst(n, dst)
	n.Set("src", src.String())
	return n
}

// StackPush pushes src onto the operand stack.
func StackPush(src Dest) *tree.Node {
	n := New(TagStackPush)
	n.Set("src", src.String())
	return n
}

// MethodCall sends selector sel with argc arguments already on the stack,
// storing the result at dst (DestNone is legal: discard the result).
func MethodCall(dst Dest, sel string, argc int) *tree.Node {
	n := New(TagMethodCall)
	if dst.Kind != DestNone {
		withDst(n, dst)
	}
	n.Set("sel", sel)
	n.Set("argc", strconv.Itoa(argc))
	return n
}

func Ret() *tree.Node  { return New(TagRet) }
func Retd() *tree.Node { return New(TagRetd) }

func ExceptPush(v Dest) *tree.Node {
	n := New(TagExceptPush)
	n.Set("var", v.String())
	return n
}

func ExceptRaise(src Dest) *tree.Node {
	n := New(TagExceptRaise)
	n.Set("src", src.String())
	return n
}

func ExceptReraise() *tree.Node { return New(TagExceptReraise) }

func ExceptPop(cnt int) *tree.Node {
	n := New(TagExceptPop)
	n.Set("cnt", strconv.Itoa(cnt))
	return n
}

func Jmp(label string) *tree.Node { return labeled(TagJmp, label) }

// Jt/Jf test a concrete src register's boolean value without popping
// anything (used when the tested value is already sitting in a named
// slot); Popjt/Popjf instead test-and-pop the operand stack's top.
func Jt(src Dest, label string) *tree.Node {
	n := labeled(TagJt, label)
	n.Set("src", src.String())
	return n
}

func Jf(src Dest, label string) *tree.Node {
	n := labeled(TagJf, label)
	n.Set("src", src.String())
	return n
}

func Jx(label string) *tree.Node    { return labeled(TagJx, label) }
func Popjt(label string) *tree.Node { return labeled(TagPopjt, label) }
func Popjf(label string) *tree.Node { return labeled(TagPopjf, label) }

func labeled(tag, label string) *tree.Node {
	n := New(tag)
	n.Set("label", label)
	return n
}

func Label(name string) *tree.Node {
	n := New(TagLabel)
	n.Set("name", name)
	return n
}

// EnvironAt/EnvironAtPush look a name up in the enclosing environment
// (global or captured-closure lookup), push or assign dual forms mirroring
// ovmc3_vm.py's gen_environ_at.
func EnvironAt(dst Dest, name string) *tree.Node {
	n := New(TagEnvironAt)
	withDst(n, dst)
	n.Set("name", name)
	return n
}

func EnvironAtPush(name string) *tree.Node {
	n := New(TagEnvironAtPush)
	n.Set("name", name)
	return n
}

// Nil/Bool/Int/Float/Str/StrHash/Method all have the push-or-assign dual
// form the original generator uses throughout: when dst is DestPush, emit
// the *_push variant with no dst attribute; otherwise emit the *_newc
// variant with a dst attribute.
func Nil(dst Dest) *tree.Node {
	if dst.Kind == DestPush {
		return New(TagNilPush)
	}
	return withDst(New(TagNilAssign), dst)
}

func Bool(dst Dest, val bool) *tree.Node {
	var n *tree.Node
	if dst.Kind == DestPush {
		n = New(TagBoolPushc)
	} else {
		n = withDst(New(TagBoolNewc), dst)
	}
	n.Set("val", boolLit(val))
	return n
}

func Int(dst Dest, val int64) *tree.Node {
	var n *tree.Node
	if dst.Kind == DestPush {
		n = New(TagIntPushc)
	} else {
		n = withDst(New(TagIntNewc), dst)
	}
	n.Set("val", strconv.FormatInt(val, 10))
	return n
}

// Float formats val using Go's hex-float form, the bit-exact equivalent of
// Python's float.hex() that the optimizer's folded-constant encoding relies
// on (see DESIGN.md's Open Question 4).
func Float(dst Dest, val float64) *tree.Node {
	var n *tree.Node
	if dst.Kind == DestPush {
		n = New(TagFloatPushc)
	} else {
		n = withDst(New(TagFloatNewc), dst)
	}
	n.Set("val", strconv.FormatFloat(val, 'x', -1, 64))
	return n
}

func Str(dst Dest, val string) *tree.Node {
	var n *tree.Node
	if dst.Kind == DestPush {
		n = New(TagStrPushc)
	} else {
		n = withDst(New(TagStrNewc), dst)
	}
	n.Set("val", val)
	return n
}

// StrHash is used for selectors: names resolved by CRC32 hash rather than
// full string comparison at run time (method/property/selector lookups).
func StrHash(dst Dest, val string) *tree.Node {
	var n *tree.Node
	if dst.Kind == DestPush {
		n = New(TagStrPushch)
	} else {
		n = withDst(New(TagStrNewch), dst)
	}
	n.Set("val", val)
	return n
}

func boolLit(v bool) string {
	if v {
		return "#true"
	}
	return "#false"
}

func Method(dst Dest, funcLabel string) *tree.Node {
	if dst.Kind == DestPush {
		n := New(TagMethodPushc)
		n.Set("func", funcLabel)
		return n
	}
	n := withDst(New(TagMethodNewc), dst)
	n.Set("func", funcLabel)
	return n
}

func ArgcChk(argc int) *tree.Node {
	n := New(TagArgcChk)
	n.Set("argc", strconv.Itoa(argc))
	return n
}

func ArrayArgPush(argc int) *tree.Node {
	n := New(TagArrayArgPush)
	n.Set("argc", strconv.Itoa(argc))
	return n
}

func Comment(text string) *tree.Node {
	n := New(TagComment)
	n.Set("text", text)
	return n
}

// Func starts a function/method body node: its children (appended by the
// caller as they are lowered) are the flat instruction sequence, and its
// attributes record the calling convention the encoder and C back-end both
// need (argument count, whether the last parameter collects extra
// arguments into an array, and public/private visibility for the C
// back-end's forward declarations).
func Func(name string, argc int, arrayArg bool, public bool) *tree.Node {
	n := New(TagFunc)
	n.Set("name", name)
	n.Set("argc", strconv.Itoa(argc))
	if arrayArg {
		n.Set("arrayarg", "1")
	}
	if public {
		n.Set("visibility", "public")
	} else {
		n.Set("visibility", "private")
	}
	return n
}
