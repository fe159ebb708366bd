package generator

import "oocbe/internal/ir"
import "oocbe/internal/tree"

// binSelector names the runtime selector sent for each left-folded
// arithmetic/comparison/bitwise tag, matching spec.md's literal selector
// names (add, sub, mul, equal, lt, gt, le, ge, band, bor) rather than the
// source operator spelling.
var binSelector = map[string]string{
	"add": "add", "sub": "sub", "mul": "mul",
	"equal": "equal", "lt": "lt", "gt": "gt", "le": "le", "ge": "ge",
	"band": "band", "bor": "bor", "bxor": "bxor",
}

// lowerBinOp left-folds an (already n-ary flattened by the optimizer) tag
// into a chain of two-argument message sends, mirroring ovmc3_vm.py's
// parse_multiop: two temp slots are allocated, the running value lives in
// the first and each operand is evaluated into the second before being
// combined in.
func (g *Generator) lowerBinOp(nd *tree.Node, dst ir.Dest) {
	sel := binSelector[nd.Tag]
	base := g.stackAlloc(2)
	acc := ir.Slot(ir.BaseSP, base)
	arg := ir.Slot(ir.BaseSP, base+1)

	g.Lower(nd.Nth(0), acc)
	for i := 1; i < len(nd.Children); i++ {
		g.Lower(nd.Nth(i), arg)
		g.emit(ir.MethodCall(acc, sel, 1))
	}
	g.store(dst, acc)
	g.stackFree(2)
}

// lowerDiv lowers the two-operand `div` node. The runtime's div selector
// expects its divisor already on the stack ahead of the dividend, so the
// two operands are evaluated in reverse and the method send targets the
// dividend's slot (the receiver), which also receives the result.
func (g *Generator) lowerDiv(nd *tree.Node, dst ir.Dest) {
	base := g.stackAlloc(2)
	divisor := ir.Slot(ir.BaseSP, base)
	dividend := ir.Slot(ir.BaseSP, base+1)

	g.Lower(nd.Nth(1), divisor)
	g.Lower(nd.Nth(0), dividend)
	g.emit(ir.MethodCall(dividend, "div", 1))
	g.store(dst, dividend)
	g.stackFree(2)
}

// lowerUnary lowers a one-operand message send against the runtime
// selector list's `not`.
func (g *Generator) lowerUnary(nd *tree.Node, dst ir.Dest, sel string) {
	base := g.stackAlloc(1)
	recv := ir.Slot(ir.BaseSP, base)
	g.Lower(nd.Nth(0), recv)
	g.emit(ir.MethodCall(recv, sel, 0))
	g.store(dst, recv)
	g.stackFree(1)
}

// lowerNeg lowers a surviving non-literal `minus` node (the optimizer
// already folds every literal and double-negation case away, see
// internal/optimizer: simp_sub turns `0 - b` into a bare `minus(b)` only
// when b itself can't be folded). There is no distinct negation selector
// in the runtime selector list, so a negation is sent the same way the
// optimizer's own identity treats it — as `0.sub(b)` — reusing `sub`
// exactly as spec.md's selector list already names it, instead of
// inventing a selector the runtime doesn't have.
func (g *Generator) lowerNeg(nd *tree.Node, dst ir.Dest) {
	base := g.stackAlloc(2)
	acc := ir.Slot(ir.BaseSP, base)
	arg := ir.Slot(ir.BaseSP, base+1)
	g.emit(ir.Int(acc, 0))
	g.Lower(nd.Nth(0), arg)
	g.emit(ir.MethodCall(acc, "sub", 1))
	g.store(dst, acc)
	g.stackFree(2)
}

// lowerNotEqual lowers `notequal` as `equal` followed by a boolean `not`
// send against the same slot, exactly as the spec describes — not a
// distinct runtime selector.
func (g *Generator) lowerNotEqual(nd *tree.Node, dst ir.Dest) {
	base := g.stackAlloc(2)
	a := ir.Slot(ir.BaseSP, base)
	b := ir.Slot(ir.BaseSP, base+1)
	g.Lower(nd.Nth(0), a)
	g.Lower(nd.Nth(1), b)
	g.emit(ir.MethodCall(a, "equal", 1))
	g.emit(ir.MethodCall(a, "not", 0))
	g.store(dst, a)
	g.stackFree(2)
}

// lowerShortCircuit lowers `land`/`lor` without evaluating operands the
// result doesn't depend on: for `land`, the first falsy operand's value is
// the whole expression's value and later operands are skipped; for `lor`
// the first truthy operand short-circuits the same way. Mirrors
// ovmc3_vm.py's parse_land_lor, generalized left-to-right over the
// optimizer's already-flattened n-ary node the same way lowerBinOp is.
func (g *Generator) lowerShortCircuit(nd *tree.Node, dst ir.Dest, isAnd bool) {
	done := g.Lab.New()
	base := g.stackAlloc(1)
	acc := ir.Slot(ir.BaseSP, base)

	last := len(nd.Children) - 1
	for i, c := range nd.Children {
		g.Lower(c, acc)
		if i == last {
			break
		}
		if isAnd {
			g.emit(ir.Jf(acc, done))
		} else {
			g.emit(ir.Jt(acc, done))
		}
	}
	g.emit(ir.Label(done))
	g.store(dst, acc)
	g.stackFree(1)
}
