package generator

import (
	"oocbe/internal/genstack"
	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

// lowerFuncBody emits one function/method body: it pushes Method+Block
// frames, binds each formal parameter at ap[i] (the last parameter of a
// `methodarrayarg` form collects the remainder into its own local slot
// instead), lowers the body statements with dst=None under "noclean"
// (the activation record is unwound by retd, not an explicit stack_free),
// and appends the finished func node to g.funcs. Returns the fully
// qualified name other lowering sites use to reference it.
func (g *Generator) lowerFuncBody(name string, params, body *tree.Node, public bool) string {
	fq := genstack.FullyQualifiedName(&g.Stack, g.ModName, name)
	argc := len(params.Children)
	arrayArg := false
	if argc > 0 && params.Nth(argc-1).Tag == "methodarrayarg" {
		arrayArg = true
	}

	f := g.beginFunc(fq, argc, arrayArg, public)
	block := g.Stack.BlockCurrent()
	for i, p := range params.Children {
		switch p.Tag {
		case "methodarrayarg":
			argname := p.Nth(0).GetOr("name", "")
			block.Vars = append(block.Vars, genstack.Var{Name: argname, Base: ir.BaseAP, Ofs: -1, Defined: true})
			block.Size = 1
		default:
			g.Stack.BindArg(p.GetOr("name", ""), i)
		}
	}
	g.LowerBlockBody(body, true)
	g.emit(ir.Retd())
	g.endFunc()
	g.funcs = append(g.funcs, f)
	return fq
}

// LowerMethod lowers a `method`/`clmethod` class member: the body is
// emitted as its own function, and the init section registers it by name
// against the enclosing class's `methods`/`classmethods` table.
func (g *Generator) LowerMethod(nd *tree.Node, classRecv ir.Dest, isClassMethod bool) {
	name := nd.Nth(0).GetOr("name", "")
	params := nd.Nth(1)
	body := nd.Nth(2)
	fq := g.lowerFuncBody(name, params, body, false)

	base := g.stackAlloc(3)
	table := ir.Slot(ir.BaseSP, base)
	key := ir.Slot(ir.BaseSP, base+1)
	val := ir.Slot(ir.BaseSP, base+2)
	sel := "methods"
	if isClassMethod {
		sel = "classmethods"
	}
	g.emit(ir.InstAssign(table, classRecv.Adj(3)))
	g.emit(ir.MethodCall(table, sel, 1))
	g.emit(ir.StrHash(key, name))
	g.emit(ir.Method(val, fq))
	g.emit(ir.MethodCall(table, "atput", 3))
	g.stackFree(3)
}

// LowerParent lowers `@parent`: the enclosing class's parent expression,
// evaluated into dst.
func (g *Generator) LowerParent(nd *tree.Node, dst ir.Dest) {
	cl := g.Stack.ClassCurrent()
	if cl == nil {
		g.errorf(nd, "generator: @parent expression not within class")
		return
	}
	g.Lower(nd.Nth(0), dst)
}

// LowerClass lowers a class declaration: allocate the Metaclass instance
// against the current init section (name, parent, module/class receiver),
// push a Class frame, and lower every body member against it.
func (g *Generator) LowerClass(nd *tree.Node) {
	name := nd.Nth(0).GetOr("name", "")
	parent := nd.Nth(1)
	members := nd.Nth(3)

	base := g.stackAlloc(5)
	meta := ir.Slot(ir.BaseSP, base)
	nameSlot := ir.Slot(ir.BaseSP, base+1)
	parentSlot := ir.Slot(ir.BaseSP, base+2)
	recvSlot := ir.Slot(ir.BaseSP, base+3)
	clsSlot := ir.Slot(ir.BaseSP, base+4)

	g.emit(ir.EnvironAt(meta, "#Metaclass"))
	g.emit(ir.StrHash(nameSlot, name))
	g.Lower(parent, parentSlot)
	g.emit(ir.InstAssign(recvSlot, ir.Slot(ir.BaseAP, 0)))
	g.emit(ir.MethodCall(clsSlot, "new", 4))

	fr := &genstack.ClassFrame{Name: name}
	g.Stack.Push(fr)
	for _, m := range members.Children {
		switch m.Tag {
		case "method":
			g.LowerMethod(m, clsSlot, false)
		case "clmethod":
			g.LowerMethod(m, clsSlot, true)
		default:
			g.Lower(m, ir.None())
		}
	}
	g.Stack.Pop(fr)
	g.stackFree(5)
}

// LowerNamespace lowers a namespace declaration: register it in the init
// section under #Namespace, push a Namespace frame, lower the body.
func (g *Generator) LowerNamespace(nd *tree.Node) {
	name := nd.Nth(0).GetOr("name", "")
	members := nd.Nth(1)

	base := g.stackAlloc(2)
	nsSlot := ir.Slot(ir.BaseSP, base)
	clsSlot := ir.Slot(ir.BaseSP, base+1)
	g.emit(ir.Str(nsSlot, name))
	g.emit(ir.EnvironAt(clsSlot, "#Namespace"))
	g.emit(ir.MethodCall(clsSlot, "new", 2))

	fr := &genstack.NamespaceFrame{Name: name}
	g.Stack.Push(fr)
	for _, m := range members.Children {
		g.Lower(m, ir.None())
	}
	g.Stack.Pop(fr)
	g.stackFree(2)
}

// LowerModule lowers the module root: the top-level statements become the
// body of `__<module>_init__`, an argc=1 public function every member
// registration writes into via ap[0].
func (g *Generator) LowerModule(nd *tree.Node) *tree.Node {
	g.ModName = nd.GetOr("name", g.ModName)
	fq := "__" + g.ModName + "_init__"
	f := g.beginFunc(fq, 1, false, true)
	for _, stmt := range nd.Children {
		g.Lower(stmt, ir.None())
	}
	g.emit(ir.Retd())
	g.endFunc()
	g.funcs = append(g.funcs, f)
	return f
}
