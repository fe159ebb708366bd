package generator

import (
	"oocbe/internal/genstack"
	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

// blockScan pre-declares every name a block's direct statements bind,
// mirroring ovmc3_vm.py's block_scan: an assign1-family statement
// soft-declares its LHS (visible only if no enclosing block already
// declares it); `var`/`for`/a `try` family statement hard-declares (or
// soft-declares, for the loop/exception variable) its own name.
func (g *Generator) blockScan(stmts *tree.Node) {
	for _, s := range stmts.Children {
		switch s.Tag {
		case "assign1c", "assign11", "assign1":
			g.Stack.VarAddSoft(s.Nth(0).GetOr("name", ""))
		case "var":
			for _, c := range s.Children {
				switch c.Tag {
				case "sym":
					g.Stack.VarAddHard(c.GetOr("name", ""))
				case "assign1c", "assign11", "assign1":
					g.Stack.VarAddHard(c.Nth(0).GetOr("name", ""))
				}
			}
		case "for", "try", "trynone", "tryany", "tryanynone":
			g.Stack.VarAddSoft(s.Nth(0).GetOr("name", ""))
		}
	}
}

// LowerBlockBody lowers a statement sequence as its own Block frame: scan
// for the names it declares, allocate their slots in one stack_alloc,
// lower each statement with dst=None, then free the slots — unless
// noclean, used for a method body whose frame is unwound by retd instead.
func (g *Generator) LowerBlockBody(stmts *tree.Node, noclean bool) {
	b := g.Stack.BlockPush()
	g.blockScan(stmts)
	if b.Size > 0 {
		g.emit(ir.StackAlloc(b.Size))
	}
	for _, s := range stmts.Children {
		g.Lower(s, ir.None())
	}
	if !noclean && b.Size > 0 {
		g.emit(ir.StackFree(b.Size))
	}
	g.Stack.Pop(b)
}

func (g *Generator) lowerBlockStmt(nd *tree.Node) {
	g.LowerBlockBody(nd, false)
}

// lowerVar lowers a `var` declaration: each assign1-family child (the
// binder already hard-declared the name in blockScan) is lowered as an
// ordinary assignment; a bare `sym` child needs no code.
func (g *Generator) lowerVar(nd *tree.Node) {
	for _, c := range nd.Children {
		switch c.Tag {
		case "assign1c", "assign11", "assign1":
			g.Lower(c, ir.None())
		}
	}
}

// lowerModuleOrClassAssign lowers an assignment whose LHS is a module- or
// class-level variable (outside any method): the RHS is evaluated, the LHS
// name hashed, and atput(3) installs it against the module/class receiver.
func (g *Generator) lowerModuleOrClassAssign(lvar string, rhs *tree.Node) {
	base := g.stackAlloc(3)
	recv := ir.Slot(ir.BaseSP, base)
	key := ir.Slot(ir.BaseSP, base+1)
	val := ir.Slot(ir.BaseSP, base+2)
	g.Lower(rhs, val)
	g.emit(ir.StrHash(key, lvar))
	g.emit(ir.InstAssign(recv, ir.Slot(ir.BaseAP, 0)))
	g.emit(ir.MethodCall(recv, "atput", 3))
	g.stackFree(3)
}

func (g *Generator) lowerAssign1c(nd *tree.Node) {
	lvar := nd.Nth(0).GetOr("name", "")
	rhs := nd.Nth(1)
	if g.Stack.MethodCurrent() == nil {
		g.lowerModuleOrClassAssign(lvar, rhs)
		return
	}
	v := g.Stack.VarFind(lvar)
	g.Lower(rhs, ir.Slot(v.Base, v.Ofs))
	g.Stack.VarMarkDefined(lvar)
}

func (g *Generator) lowerAssign11(nd *tree.Node) {
	lvar := nd.Nth(0).GetOr("name", "")
	rvar := nd.Nth(1).GetOr("name", "")
	if g.Stack.MethodCurrent() == nil {
		g.lowerModuleOrClassAssign(lvar, nd.Nth(1))
		return
	}
	ldst := func() ir.Dest {
		v := g.Stack.VarFind(lvar)
		return ir.Slot(v.Base, v.Ofs)
	}
	rv := g.Stack.VarFind(rvar)
	if rv == nil {
		g.emit(ir.EnvironAt(ldst(), rvar))
		g.Stack.VarMarkDefined(lvar)
		return
	}
	g.emit(ir.InstAssign(ldst(), ir.Slot(rv.Base, rv.Ofs)))
	g.Stack.VarMarkDefined(lvar)
}

func (g *Generator) lowerAssign1(nd *tree.Node) {
	lvar := nd.Nth(0).GetOr("name", "")
	rhs := nd.Nth(1)
	if g.Stack.MethodCurrent() == nil {
		g.lowerModuleOrClassAssign(lvar, rhs)
		return
	}
	v := g.Stack.VarFind(lvar)
	g.Lower(rhs, ir.Slot(v.Base, v.Ofs))
	g.Stack.VarMarkDefined(lvar)
}

func (g *Generator) lowerGenericAssign(nd *tree.Node) {
	g.lowerIndexedAssign(nd.Nth(0), nd.Nth(1))
}

// lowerIf lowers `if`/`ifnot(cond, then[, else])`.
func (g *Generator) lowerIf(nd *tree.Node, negate bool) {
	hasElse := len(nd.Children) > 2
	labElse := g.Lab.New()
	labEnd := g.Lab.New()
	target := labEnd
	if hasElse {
		target = labElse
	}
	base := g.stackAlloc(1)
	cond := ir.Slot(ir.BaseSP, base)
	g.Lower(nd.Nth(0), cond)
	if negate {
		g.emit(ir.Jt(cond, target))
	} else {
		g.emit(ir.Jf(cond, target))
	}
	g.stackFree(1)
	g.Lower(nd.Nth(1), ir.None())
	if hasElse {
		g.emit(ir.Jmp(labEnd))
		g.emit(ir.Label(labElse))
		g.Lower(nd.Nth(2), ir.None())
	}
	g.emit(ir.Label(labEnd))
}

// lowerWhileUntil lowers `while`/`until(cond, body)`: a jump-to-condition
// loop shape where `continue` targets the condition test itself.
func (g *Generator) lowerWhileUntil(nd *tree.Node, isWhile bool) {
	subtype := "while"
	if !isWhile {
		subtype = "until"
	}
	labBegin := g.Lab.New()
	labLoop := g.Lab.New()

	fr := g.Stack.BreakPush(&g.Lab, subtype)
	lp := &genstack.LoopFrame{Subtype: subtype, ContinueLabel: labBegin}
	g.Stack.Push(lp)

	g.emit(ir.Jmp(labBegin))
	g.emit(ir.Label(labLoop))
	g.Lower(nd.Nth(1), ir.None())
	g.emit(ir.Label(labBegin))

	base := g.stackAlloc(1)
	cond := ir.Slot(ir.BaseSP, base)
	g.Lower(nd.Nth(0), cond)
	if isWhile {
		g.emit(ir.Jt(cond, labLoop))
	} else {
		g.emit(ir.Jf(cond, labLoop))
	}
	g.stackFree(1)

	g.Stack.Pop(lp)
	if fr.Used {
		g.emit(ir.Label(fr.ExitLabel))
	}
	g.Stack.Pop(fr)
}

// lowerLoop lowers a bare infinite `loop(body)`.
func (g *Generator) lowerLoop(nd *tree.Node) {
	labLoop := g.Lab.New()
	fr := g.Stack.BreakPush(&g.Lab, "loop")
	lp := &genstack.LoopFrame{Subtype: "loop", ContinueLabel: labLoop}
	g.Stack.Push(lp)

	g.emit(ir.Label(labLoop))
	g.Lower(nd.Nth(0), ir.None())
	g.emit(ir.Jmp(labLoop))

	g.Stack.Pop(lp)
	if fr.Used {
		g.emit(ir.Label(fr.ExitLabel))
	}
	g.Stack.Pop(fr)
}

// lowerFor lowers `for(var, iter, body)`: the iterable is converted to a
// linked list once via `List`, then walked with isnil/car/cdr.
func (g *Generator) lowerFor(nd *tree.Node) {
	iterVar := nd.Nth(0).GetOr("name", "")
	fr := g.Stack.BreakPush(&g.Lab, "for")
	labContinue := g.Lab.New()
	lp := &genstack.LoopFrame{Subtype: "for", ContinueLabel: labContinue}
	g.Stack.Push(lp)

	base := g.stackAlloc(2)
	listSlot := ir.Slot(ir.BaseSP, base)
	testSlot := ir.Slot(ir.BaseSP, base+1)
	g.Lower(nd.Nth(1), listSlot)
	g.emit(ir.MethodCall(listSlot, "List", 0))

	v, _ := g.Stack.VarAddSoft(iterVar)
	g.Stack.VarMarkDefined(iterVar)
	vdst := ir.Slot(v.Base, v.Ofs)

	labLoop := g.Lab.New()
	labDone := g.Lab.New()
	g.emit(ir.Label(labLoop))
	g.emit(ir.InstAssign(testSlot, listSlot))
	g.emit(ir.MethodCall(testSlot, "isnil", 0))
	g.emit(ir.Jt(testSlot, labDone))
	g.emit(ir.InstAssign(vdst, listSlot))
	g.emit(ir.MethodCall(vdst, "car", 0))
	g.Lower(nd.Nth(2), ir.None())
	if lp.ContinueUsed {
		g.emit(ir.Label(labContinue))
	}
	g.emit(ir.MethodCall(listSlot, "cdr", 0))
	g.emit(ir.Jmp(labLoop))
	g.emit(ir.Label(labDone))

	g.stackFree(2)
	g.Stack.Pop(lp)
	if fr.Used {
		g.emit(ir.Label(fr.ExitLabel))
	}
	g.Stack.Pop(fr)
}

// lowerBreak walks the compile stack from the top, accumulating block
// sizes to free and except frames to unwind, stopping at the n'th Break
// frame (a Method frame reached first is a static error).
func (g *Generator) lowerBreak(nd *tree.Node, n int) {
	stackCleanup, exceptCleanup := 0, 0
	frames := g.Stack.Frames()
	for i := len(frames) - 1; i >= 0; i-- {
		switch f := frames[i].(type) {
		case *genstack.MethodFrame:
			g.errorf(nd, "generator: invalid break count")
			return
		case *genstack.BlockFrame:
			stackCleanup += f.Size
		case *genstack.ExceptFrame:
			exceptCleanup++
			stackCleanup = 0
		case *genstack.BreakFrame:
			n--
			if n == 0 {
				g.emit(ir.ExceptPop(exceptCleanup))
				g.emit(ir.StackFree(stackCleanup))
				g.emit(ir.Jmp(f.ExitLabel))
				f.Used = true
				return
			}
		}
	}
	g.errorf(nd, "generator: invalid break count")
}

// lowerContinue walks the compile stack the same way break does, but
// targets the nearest enclosing Loop frame's continue label.
func (g *Generator) lowerContinue(nd *tree.Node) {
	stackCleanup, exceptCleanup := 0, 0
	frames := g.Stack.Frames()
	for i := len(frames) - 1; i >= 0; i-- {
		switch f := frames[i].(type) {
		case *genstack.MethodFrame:
			g.errorf(nd, "generator: continue not within for/while/until/loop")
			return
		case *genstack.BlockFrame:
			stackCleanup += f.Size
		case *genstack.ExceptFrame:
			exceptCleanup++
			stackCleanup = 0
		case *genstack.LoopFrame:
			g.emit(ir.ExceptPop(exceptCleanup))
			g.emit(ir.StackFree(stackCleanup))
			f.ContinueUsed = true
			g.emit(ir.Jmp(f.ContinueLabel))
			return
		}
	}
	g.errorf(nd, "generator: continue not within for/while/until/loop")
}

// lowerReturn lowers a `return[, value]`: a bare return emits the implicit
// retd; a value-returning form lowers its expression into the abstract
// "dst" placeholder and emits the explicit return opcode.
func (g *Generator) lowerReturn(nd *tree.Node) {
	if len(nd.Children) == 0 {
		g.emit(ir.Retd())
		return
	}
	g.Lower(nd.Nth(0), ir.Abstract())
	g.emit(ir.Ret())
}

// tryCatch is one `catch` arm: Cond is nil for a bare catch-all.
type tryCatch struct {
	Cond *tree.Node
	Body *tree.Node
}

// lowerTry lowers every `try`/`trynone`/`tryany`/`tryanynone` form: a
// protected region guarded by setjmp-style except_push/jx, followed by its
// catch arms tried in order, an implicit reraise if none match, and
// optional `none`/`any` epilogue sections.
func (g *Generator) lowerTry(nd *tree.Node, catches []tryCatch, anyc, nonec *tree.Node) {
	b := g.Stack.BlockPush()
	varName := nd.Nth(0).GetOr("name", "")
	v, _ := g.Stack.VarAddSoft(varName)
	g.Stack.VarMarkDefined(varName)
	vdst := ir.Slot(v.Base, v.Ofs)

	labEx := g.Lab.New()
	labCleanup := g.Lab.New()
	labDone := g.Lab.New()

	g.emit(ir.ExceptPush(vdst))
	g.emit(ir.Jx(labEx))
	fr := &genstack.ExceptFrame{}
	g.Stack.Push(fr)

	g.Lower(nd.Nth(1), ir.None())
	g.emit(ir.ExceptPop(1))
	if nonec != nil {
		g.Lower(nonec, ir.None())
	}
	g.emit(ir.Jmp(labDone))
	g.emit(ir.Label(labEx))
	for _, c := range catches {
		if c.Cond == nil {
			g.Lower(c.Body, ir.None())
			g.emit(ir.Jmp(labCleanup))
			continue
		}
		labNo := g.Lab.New()
		base := g.stackAlloc(1)
		t := ir.Slot(ir.BaseSP, base)
		g.Lower(c.Cond, t)
		g.emit(ir.Jf(t, labNo))
		g.stackFree(1)
		g.Lower(c.Body, ir.None())
		g.emit(ir.Jmp(labCleanup))
		g.emit(ir.Label(labNo))
	}
	g.emit(ir.ExceptReraise())
	g.emit(ir.Label(labCleanup))
	g.emit(ir.ExceptPop(1))
	g.Stack.Pop(fr)
	if anyc != nil {
		g.Lower(anyc, ir.None())
	}
	g.emit(ir.Label(labDone))
	g.Stack.Pop(b)
}

// catchesOf reads a try node's catch-arm list (each either a single
// catch-all body, or a [cond, body] pair).
func catchesOf(list *tree.Node) []tryCatch {
	out := make([]tryCatch, 0, len(list.Children))
	for _, c := range list.Children {
		if len(c.Children) == 1 {
			out = append(out, tryCatch{Body: c.Nth(0)})
		} else {
			out = append(out, tryCatch{Cond: c.Nth(0), Body: c.Nth(1)})
		}
	}
	return out
}

func (g *Generator) lowerRaise(nd *tree.Node) {
	base := g.stackAlloc(1)
	src := ir.Slot(ir.BaseSP, base)
	g.Lower(nd.Nth(0), src)
	g.emit(ir.ExceptRaise(src))
	g.stackFree(1)
}
