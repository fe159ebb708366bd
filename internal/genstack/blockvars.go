package genstack

import "oocbe/internal/ir"

// varAdd grows the current block by one slot and records nm at the new
// offset, mirroring ovmc3_vm.py's _block_var_add (which also emits a debug
// Comment node at this point; the generator does that itself since it owns
// the IR output, not this package).
func varAdd(b *BlockFrame, nm string, defined bool) *Var {
	b.Size++
	v := Var{Name: nm, Base: ir.BaseBP, Ofs: b.Ofs - b.Size, Defined: defined}
	b.Vars = append(b.Vars, v)
	return &b.Vars[len(b.Vars)-1]
}

// BindArg declares the i'th formal parameter of the current method at
// ap[i], already defined (an argument always has a value on entry).
func (s *Stack) BindArg(nm string, i int) *Var {
	b := s.BlockCurrent()
	if b == nil {
		panic("genstack: BindArg with no current block")
	}
	v := Var{Name: nm, Base: ir.BaseAP, Ofs: i, Defined: true}
	b.Vars = append(b.Vars, v)
	return &b.Vars[len(b.Vars)-1]
}

// VarFind searches for nm starting at the current block and walking
// outward through enclosing blocks, stopping at the Method boundary
// (ovmc3_vm.py's _block_var_find).
func (s *Stack) VarFind(nm string) *Var {
	for i := len(s.frames) - 1; i >= 0; i-- {
		switch f := s.frames[i].(type) {
		case *BlockFrame:
			for j := range f.Vars {
				if f.Vars[j].Name == nm {
					return &f.Vars[j]
				}
			}
		case *MethodFrame:
			return nil
		}
	}
	return nil
}

// VarAddSoft declares nm in the current block only if it is not already
// visible in an enclosing block of the current method (ovmc3_vm.py's
// block_var_add_soft) — used for implicit declarations such as a for-loop
// variable that may already have been declared by an outer `var`.
func (s *Stack) VarAddSoft(nm string) (*Var, bool) {
	if v := s.VarFind(nm); v != nil {
		return v, false
	}
	b := s.BlockCurrent()
	if b == nil {
		panic("genstack: VarAddSoft with no current block")
	}
	return varAdd(b, nm, false), true
}

// VarAddHard always declares a new variable in the current block, shadowing
// any outer variable of the same name (ovmc3_vm.py's block_var_add_hard) —
// used for an explicit `var x` statement.
func (s *Stack) VarAddHard(nm string) *Var {
	b := s.BlockCurrent()
	if b == nil {
		panic("genstack: VarAddHard with no current block")
	}
	return varAdd(b, nm, false)
}

// VarMarkDefined marks nm (found via VarFind) as having been assigned at
// least once, matching ovmc3_vm.py's block_var_mark_defined.
func (s *Stack) VarMarkDefined(nm string) {
	if v := s.VarFind(nm); v != nil {
		v.Defined = true
	}
}
