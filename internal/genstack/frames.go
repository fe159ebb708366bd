// Package genstack implements the generator's compile-time scope stack: the
// nested Block/Method/Class/Namespace/Except/Break/Loop frames that the
// generator pushes and pops while lowering a tree into IR, grounded on
// ovmc3_vm.py's cstack machinery (CSTACK_TYPE_BLOCK..CSTACK_TYPE_LOOP and the
// cstack_push/cstack_pop/block_current/_block_var_add family of helpers).
package genstack

import "oocbe/internal/ir"

// Frame is implemented by every kind of compile-stack frame. It carries no
// behavior of its own; callers type-switch on the concrete frame types
// below, the same way the teacher's compregister.Scope/LoopInfo are plain
// data structs consulted by the compiler.
type Frame interface {
	frame()
}

// Var is one local variable declared within a Block frame.
type Var struct {
	Name    string
	Base    ir.Base
	Ofs     int
	Defined bool
}

// BlockFrame is a lexical block: a nested scope that owns a contiguous
// range of frame-pointer-relative stack slots. Ofs is the bp-relative
// offset the block starts at (zero or negative); its first variable sits
// one slot below, at Ofs-1. Size counts variables declared in it so far.
type BlockFrame struct {
	Ofs  int
	Size int
	Vars []Var
}

func (*BlockFrame) frame() {}

// MethodFrame marks a method or function body; blocks cannot be searched
// across it when resolving a variable or allocating a new block.
type MethodFrame struct {
	Name     string // fully qualified method/function name
	ArgCount int
	ArrayArg bool
}

func (*MethodFrame) frame() {}

// ClassFrame marks a class body being lowered.
type ClassFrame struct {
	Name string
}

func (*ClassFrame) frame() {}

// NamespaceFrame marks a namespace body being lowered.
type NamespaceFrame struct {
	Name string
}

func (*NamespaceFrame) frame() {}

// ExceptFrame marks a try block's protected region, used when computing the
// cleanup sequence a break/continue/return must emit to unwind through it.
type ExceptFrame struct{}

func (*ExceptFrame) frame() {}

// BreakFrame marks a construct `break` can target: for/while/until/loop, or
// a bare `cond` block. ExitLabel is allocated eagerly but only emitted if
// Used becomes true (a break statement actually referenced it), mirroring
// ovmc3_vm.py's break_push/break_pop.
type BreakFrame struct {
	Subtype   string // "for", "while", "until", "loop", "cond"
	ExitLabel string
	Used      bool
}

func (*BreakFrame) frame() {}

// LoopFrame marks a construct `continue` can target. ContinueLabel is only
// emitted if ContinueUsed becomes true.
type LoopFrame struct {
	Subtype       string
	ContinueLabel string
	ContinueUsed  bool
}

func (*LoopFrame) frame() {}
