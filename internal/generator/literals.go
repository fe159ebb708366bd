package generator

import (
	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

// Lower emits the instructions that compute nd's value into dst, dispatching
// on nd's tag, mirroring ovmc3_vm.py's parse_node dispatch (exec('parse_' +
// nd.tag + ...)).
func (g *Generator) Lower(nd *tree.Node, dst ir.Dest) {
	switch nd.Tag {
	case "nil":
		g.emit(ir.Nil(dst))
	case "bool":
		g.emit(ir.Bool(dst, nd.GetOr("val", "#false") == "#true"))
	case "int":
		g.emit(ir.Int(dst, tree.IntVal(nd)))
	case "float":
		g.emit(ir.Float(dst, tree.FloatVal(nd)))
	case "str":
		g.emit(ir.Str(dst, nd.GetOr("val", "")))
	case "obj1":
		g.lowerObj1(nd, dst)
	case "obj2":
		g.lowerObj2(nd, dst, false)
	case "obj2e":
		g.lowerObj2(nd, dst, true)
	case "add", "sub", "mul", "equal", "lt", "gt", "le", "ge", "band", "bor", "bxor":
		g.lowerBinOp(nd, dst)
	case "div":
		g.lowerDiv(nd, dst)
	case "notequal":
		g.lowerNotEqual(nd, dst)
	case "land", "lor":
		g.lowerShortCircuit(nd, dst, nd.Tag == "land")
	case "minus":
		g.lowerNeg(nd, dst)
	case "lnot":
		g.lowerUnary(nd, dst, "not")
	case "pair":
		g.lowerPair(nd, dst)
	case "list":
		g.lowerList(nd, dst)
	case "array":
		g.lowerArray(nd, dst)
	case "set":
		g.lowerSetLiteral(nd, dst)
	case "dict":
		g.lowerDict(nd, dst)
	case "atmodule":
		g.emit(ir.Str(dst, g.ModName))
	case "atns":
		g.emit(ir.Str(dst, g.currentNamespaceOrModule()))
	case "atclass":
		g.emit(ir.Str(dst, g.currentClassName(nd)))
	case "atmethod":
		g.emit(ir.Str(dst, g.currentMethodName(nd)))
	case "methodcall":
		g.lowerMethodCall(nd, dst)
	case "recurse":
		g.lowerRecurse(nd, dst)
	case "func":
		g.lowerFuncExpr(nd, dst)
	case "anon":
		g.lowerAnon(nd, dst)
	case "condexpr":
		g.lowerCondExpr(nd, dst)
	case "cond":
		g.lowerCond(nd, dst)
	case "block":
		g.lowerBlockStmt(nd)
	case "var":
		g.lowerVar(nd)
	case "assign1c":
		g.lowerAssign1c(nd)
	case "assign11":
		g.lowerAssign11(nd)
	case "assign1":
		g.lowerAssign1(nd)
	case "assign":
		g.lowerGenericAssign(nd)
	case "if":
		g.lowerIf(nd, false)
	case "ifnot":
		g.lowerIf(nd, true)
	case "while":
		g.lowerWhileUntil(nd, true)
	case "until":
		g.lowerWhileUntil(nd, false)
	case "loop":
		g.lowerLoop(nd)
	case "for":
		g.lowerFor(nd)
	case "break":
		g.lowerBreak(nd, int(tree.IntVal(nd)))
	case "continue":
		g.lowerContinue(nd)
	case "return":
		g.lowerReturn(nd)
	case "try":
		g.lowerTry(nd, catchesOf(nd.Nth(2)), nil, nil)
	case "trynone":
		g.lowerTry(nd, catchesOf(nd.Nth(2)), nil, nd.Nth(3))
	case "tryany":
		g.lowerTry(nd, catchesOf(nd.Nth(2)), nd.Nth(3), nil)
	case "tryanynone":
		g.lowerTry(nd, catchesOf(nd.Nth(2)), nd.Nth(3), nd.Nth(4))
	case "raise":
		g.lowerRaise(nd)
	case "reraise":
		g.emit(ir.ExceptReraise())
	case "method":
		g.errorf(nd, "generator: method declaration outside class body")
	case "clmethod":
		g.errorf(nd, "generator: classmethod declaration outside class body")
	case "class":
		g.LowerClass(nd)
	case "namespace":
		g.LowerNamespace(nd)
	case "parent":
		g.LowerParent(nd, dst)
	case "iface":
		// interface declarations produce no code, and class bodies are not
		// checked against the interfaces they name.
	default:
		g.errorf(nd, "generator: no lowering for expression tag %q", nd.Tag)
	}
}

func (g *Generator) lowerObj1(nd *tree.Node, dst ir.Dest) {
	name := nd.GetOr("name", "")
	if v := g.Stack.VarFind(name); v != nil {
		g.store(dst, ir.Slot(v.Base, v.Ofs))
		return
	}
	if dst.Kind == ir.DestNone {
		return
	}
	if dst.Kind == ir.DestPush {
		g.emit(ir.EnvironAtPush(name))
		return
	}
	g.emit(ir.EnvironAt(dst, name))
}
