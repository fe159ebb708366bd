package generator

import (
	"strconv"

	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

// lowerMethodCall lowers `methodcall(receiver, selector, args)`: the
// receiver and every argument are evaluated into consecutive temp slots,
// then a single method_call with argc = 1+len(args) is emitted.
func (g *Generator) lowerMethodCall(nd *tree.Node, dst ir.Dest) {
	sel := nd.Nth(1).GetOr("val", "")
	args := nd.Nth(2)
	argc := 1 + len(args.Children)

	base := g.stackAlloc(argc)
	g.Lower(nd.Nth(0), ir.Slot(ir.BaseSP, base))
	for i, a := range args.Children {
		g.Lower(a, ir.Slot(ir.BaseSP, base+1+i))
	}
	g.emit(ir.MethodCall(ir.Slot(ir.BaseSP, base), sel, argc))
	g.store(dst, ir.Slot(ir.BaseSP, base))
	g.stackFree(argc)
}

// lowerRecurse materializes a closure over the innermost enclosing
// method's own code (self-recursive function-value expression).
func (g *Generator) lowerRecurse(nd *tree.Node, dst ir.Dest) {
	fq := g.cur.GetOr("name", "")
	g.emit(ir.Method(dst, fq))
}

// lowerFuncExpr lowers a named local function expression: the body is
// emitted as its own func section (collected into g.funcs), and the use
// site materializes a closure value over it.
func (g *Generator) lowerFuncExpr(nd *tree.Node, dst ir.Dest) {
	params := nd.Nth(0)
	name := params.GetOr("name", "")
	body := nd.Nth(1)
	fq := g.lowerFuncBody(name, params, body, false)
	g.emit(ir.Method(dst, fq))
}

// lowerAnon lowers an anonymous function expression, naming it
// mod$__anon__$N the same way ovmc3_vm.py's anon_num counter does.
func (g *Generator) lowerAnon(nd *tree.Node, dst ir.Dest) {
	g.anonNum++
	name := "__anon__$" + strconv.Itoa(g.anonNum)
	fq := g.lowerFuncBody(name, nd.Nth(0), nd.Nth(1), false)
	g.emit(ir.Method(dst, fq))
}

// lowerCondExpr lowers the ternary `condexpr(cond, a, b)`.
func (g *Generator) lowerCondExpr(nd *tree.Node, dst ir.Dest) {
	labFalse := g.Lab.New()
	labDone := g.Lab.New()
	g.Lower(nd.Nth(0), ir.Push())
	g.emit(ir.Popjf(labFalse))
	g.Lower(nd.Nth(1), dst)
	g.emit(ir.Jmp(labDone))
	g.emit(ir.Label(labFalse))
	g.Lower(nd.Nth(2), dst)
	g.emit(ir.Label(labDone))
}

// lowerCond lowers a bare `cond` wrapper: a single child evaluated with dst
// passed straight through, but inside a Break frame so a `break` can target
// it (a loop-free escape hatch), mirroring ovmc3_vm.py's parse_cond.
func (g *Generator) lowerCond(nd *tree.Node, dst ir.Dest) {
	fr := g.Stack.BreakPush(&g.Lab, "cond")
	g.Lower(nd.Nth(0), dst)
	if fr.Used {
		g.emit(ir.Label(fr.ExitLabel))
	}
	g.Stack.Pop(fr)
}
