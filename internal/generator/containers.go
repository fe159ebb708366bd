package generator

import (
	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

// lowerPair lowers a two-element Pair literal: fetch the #Pair class,
// lower both children as constructor arguments, send new(3).
func (g *Generator) lowerPair(nd *tree.Node, dst ir.Dest) {
	base := g.stackAlloc(3)
	cls := ir.Slot(ir.BaseSP, base)
	a := ir.Slot(ir.BaseSP, base+1)
	b := ir.Slot(ir.BaseSP, base+2)
	g.emit(ir.EnvironAt(cls, "#Pair"))
	g.Lower(nd.Nth(0), a)
	g.Lower(nd.Nth(1), b)
	g.emit(ir.MethodCall(cls, "new", 3))
	g.store(dst, cls)
	g.stackFree(3)
}

// lowerList lowers a List literal by consing each element onto an
// initially-nil accumulator and reversing once at the end, matching
// ovmc3_vm.py's parse_list (an empty list lowers to a bare nil).
func (g *Generator) lowerList(nd *tree.Node, dst ir.Dest) {
	if len(nd.Children) == 0 {
		g.emit(ir.Nil(dst))
		return
	}
	base := g.stackAlloc(2)
	acc := ir.Slot(ir.BaseSP, base)
	elem := ir.Slot(ir.BaseSP, base+1)
	g.emit(ir.Nil(acc))
	for _, c := range nd.Children {
		g.Lower(c, elem)
		g.emit(ir.MethodCall(acc, "cons", 1))
	}
	g.emit(ir.MethodCall(acc, "reverse", 0))
	g.store(dst, acc)
	g.stackFree(2)
}

// lowerArray lowers an Array literal: materialize #Array.new(n), then
// populate it element by element via atput(i, v).
func (g *Generator) lowerArray(nd *tree.Node, dst ir.Dest) {
	n := len(nd.Children)
	base := g.stackAlloc(3)
	arr := ir.Slot(ir.BaseSP, base)
	idx := ir.Slot(ir.BaseSP, base+1)
	val := ir.Slot(ir.BaseSP, base+2)

	g.emit(ir.EnvironAt(arr, "#Array"))
	g.emit(ir.Int(idx, int64(n)))
	g.emit(ir.MethodCall(arr, "new", 1))
	for i, c := range nd.Children {
		g.emit(ir.Int(idx, int64(i)))
		g.Lower(c, val)
		g.emit(ir.MethodCall(arr, "atput", 2))
	}
	g.store(dst, arr)
	g.stackFree(3)
}

// lowerSetLiteral lowers a Set literal: #Set.new, then put(v) per element.
func (g *Generator) lowerSetLiteral(nd *tree.Node, dst ir.Dest) {
	base := g.stackAlloc(2)
	set := ir.Slot(ir.BaseSP, base)
	val := ir.Slot(ir.BaseSP, base+1)
	g.emit(ir.EnvironAt(set, "#Set"))
	g.emit(ir.MethodCall(set, "new", 0))
	for _, c := range nd.Children {
		g.Lower(c, val)
		g.emit(ir.MethodCall(set, "put", 1))
	}
	g.store(dst, set)
	g.stackFree(2)
}

// lowerDict lowers a Dictionary literal. A string-literal key is lowered as
// a hashed string constant (its selector form); any other key expression is
// lowered normally. Each entry is installed with atput(k, v).
func (g *Generator) lowerDict(nd *tree.Node, dst ir.Dest) {
	base := g.stackAlloc(3)
	dict := ir.Slot(ir.BaseSP, base)
	key := ir.Slot(ir.BaseSP, base+1)
	val := ir.Slot(ir.BaseSP, base+2)
	g.emit(ir.EnvironAt(dict, "#Dictionary"))
	g.emit(ir.MethodCall(dict, "new", 0))
	for _, entry := range nd.Children {
		k, v := entry.Nth(0), entry.Nth(1)
		if k.Tag == "str" {
			g.emit(ir.StrHash(key, k.GetOr("val", "")))
		} else {
			g.Lower(k, key)
		}
		g.Lower(v, val)
		g.emit(ir.MethodCall(dict, "atput", 2))
	}
	g.store(dst, dict)
	g.stackFree(3)
}

// lowerObj2 lowers indexed/attribute access (obj2/obj2e): the receiver is
// evaluated first, then the index (a lowered expression for obj2, a hashed
// bare name for obj2e), and selector `at`/`ate` is sent.
func (g *Generator) lowerObj2(nd *tree.Node, dst ir.Dest, attr bool) {
	base := g.stackAlloc(2)
	recv := ir.Slot(ir.BaseSP, base)
	key := ir.Slot(ir.BaseSP, base+1)
	g.Lower(nd.Nth(0), recv)
	if attr {
		g.emit(ir.StrHash(key, nd.GetOr("name", "")))
	} else {
		g.Lower(nd.Nth(1), key)
	}
	sel := "at"
	if attr {
		sel = "ate"
	}
	g.emit(ir.MethodCall(recv, sel, 1))
	g.store(dst, recv)
	g.stackFree(2)
}

// lowerIndexedAssign lowers an assignment whose LHS is obj2/obj2e: the
// receiver, key, and rhs value are each lowered onto the stack and atput is
// sent with argc=3.
func (g *Generator) lowerIndexedAssign(lhs, rhs *tree.Node) {
	attr := lhs.Tag == "obj2e"
	base := g.stackAlloc(3)
	recv := ir.Slot(ir.BaseSP, base)
	key := ir.Slot(ir.BaseSP, base+1)
	val := ir.Slot(ir.BaseSP, base+2)
	g.Lower(lhs.Nth(0), recv)
	if attr {
		g.emit(ir.StrHash(key, lhs.GetOr("name", "")))
	} else {
		g.Lower(lhs.Nth(1), key)
	}
	g.Lower(rhs, val)
	g.emit(ir.MethodCall(recv, "atput", 3))
	g.stackFree(3)
}
