// Package generator implements pass G: it lowers an (already optimized)
// source tree into the flat IR instruction sequences the peephole
// optimizer, encoder, and C back-end all consume, grounded on ovmc3_vm.py
// in full. Every lowering function follows the original's destination
// discipline — the caller says where a value should end up (discarded,
// pushed, or stored to a concrete or abstract slot) and the lowering
// function picks the right dual-form opcode — and the same compile-time
// scope stack (internal/genstack), built from the teacher's
// internal/compregister scope/loop-stack idiom merged with the original's
// cstack machinery.
package generator

import (
	"oocbe/internal/diagnostics"
	"oocbe/internal/genstack"
	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

// Generator holds all of pass G's mutable state for one module.
type Generator struct {
	ModName string
	Stack   genstack.Stack
	Lab     genstack.Labeler
	Diag    *diagnostics.Sink

	funcs          []*tree.Node // completed function/method bodies, in emission order
	cur            *tree.Node   // function node currently being built
	sp             int          // next free transient sp slot in the active block
	pendingRestore []restoreState
	anonNum        int // ovmc3_vm.py's anon_num counter
}

// New creates a Generator for module modName, reporting diagnostics to diag.
func New(modName string, diag *diagnostics.Sink) *Generator {
	return &Generator{ModName: modName, Diag: diag}
}

// Module assembles every lowered function/method body (in the order each
// body was finished, so nested bodies precede the module init function that
// LowerModule appends last) into one "module" tree.Node — the shape
// internal/peephole, internal/encoder, and internal/cbackend all consume.
func (g *Generator) Module() *tree.Node {
	m := tree.New("module")
	for _, f := range g.funcs {
		m.Append(f)
	}
	return m
}

func (g *Generator) emit(n *tree.Node) {
	if n == nil {
		return
	}
	g.cur.Append(n)
}

func (g *Generator) errorf(nd *tree.Node, format string, args ...any) {
	g.Diag.Report(diagnostics.KindCompile, diagnostics.Location{Line: nd.Line()}, format, args...)
}

// beginFunc starts a new function node and pushes its Method+Block frames.
// Returns the function node so callers can later append it to g.funcs.
func (g *Generator) beginFunc(name string, argc int, arrayArg, public bool) *tree.Node {
	f := ir.Func(name, argc, arrayArg, public)
	prevCur, prevSp := g.cur, g.sp
	g.cur = f
	g.sp = 0
	g.Stack.Push(&genstack.MethodFrame{Name: name, ArgCount: argc, ArrayArg: arrayArg})
	g.Stack.BlockPush()
	g.pendingRestore = append(g.pendingRestore, restoreState{cur: prevCur, sp: prevSp})
	return f
}

type restoreState struct {
	cur *tree.Node
	sp  int
}

// endFunc pops the Method/Block frames and restores the enclosing function
// context. It emits nothing; callers emit the closing retd before calling it.
func (g *Generator) endFunc() *tree.Node {
	f := g.cur
	block := g.Stack.BlockCurrent()
	g.Stack.PopTo(block)
	m := g.Stack.MethodCurrent()
	g.Stack.Pop(m)

	n := len(g.pendingRestore) - 1
	prev := g.pendingRestore[n]
	g.pendingRestore = g.pendingRestore[:n]
	g.cur, g.sp = prev.cur, prev.sp
	return f
}

// stackAlloc/stackFree grow or shrink the active block's transient region,
// tracking g.sp so nested expressions allocate disjoint slots.
func (g *Generator) stackAlloc(n int) int {
	base := g.sp
	if n > 0 {
		g.emit(ir.StackAlloc(n))
	}
	g.sp += n
	return base
}

func (g *Generator) stackFree(n int) {
	if n > 0 {
		g.emit(ir.StackFree(n))
	}
	g.sp -= n
}

// currentNamespaceOrModule implements @ns: the enclosing namespace's name,
// or the module name if there is none.
func (g *Generator) currentNamespaceOrModule() string {
	if ns := g.Stack.NamespaceCurrent(); ns != nil {
		return ns.Name
	}
	return g.ModName
}

// currentClassName implements @class: the enclosing class's name, reporting
// a diagnostic (and yielding the empty string) outside one.
func (g *Generator) currentClassName(nd *tree.Node) string {
	cl := g.Stack.ClassCurrent()
	if cl == nil {
		g.errorf(nd, "generator: @class expression not within class")
		return ""
	}
	return cl.Name
}

// currentMethodName implements @method: the name held by the innermost
// enclosing Method frame (the fully qualified name beginFunc gave it),
// reporting a diagnostic outside one.
func (g *Generator) currentMethodName(nd *tree.Node) string {
	m := g.Stack.MethodCurrent()
	if m == nil {
		g.errorf(nd, "generator: @method expression not within method")
		return ""
	}
	return m.Name
}

// store emits the instruction that lands a just-computed value (currently
// sitting in a temp slot) at its real destination: push it, assign it, or
// (dst == None) do nothing further — the value was only computed for a
// side effect and its temp slot is about to be freed anyway.
func (g *Generator) store(dst ir.Dest, src ir.Dest) {
	switch dst.Kind {
	case ir.DestNone:
		return
	case ir.DestPush:
		g.emit(ir.StackPush(src))
	default:
		g.emit(ir.InstAssign(dst, src))
	}
}
