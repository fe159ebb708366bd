// Package peephole implements pass P: a single linear scan over each
// function's flat IR sequence that coalesces adjacent stack adjustments and
// drops code made unreachable by an unconditional jump or return, grounded
// on ovmc4.py's optim in full.
package peephole

import (
	"strconv"

	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

// Run rewrites every func node's body in place and returns the module,
// mirroring ovmc4.py's process_file driving optim over every top-level
// func element.
func Run(module *tree.Node) *tree.Node {
	for _, f := range module.Children {
		if f.Tag == ir.TagFunc {
			optim(f)
		}
	}
	return module
}

// optim rewrites one function body, buffering the most recently kept
// instruction ("last") so it can be merged with, or discarded in favor of,
// the instruction that follows it.
func optim(fn *tree.Node) {
	out := make([]*tree.Node, 0, len(fn.Children))
	var last *tree.Node
	dead := false

	for _, s := range fn.Children {
		if s.Tag == ir.TagLabel {
			dead = false
		}
		if dead {
			continue
		}

		if last != nil && s.Tag == ir.TagStackAlloc && last.Tag == ir.TagStackAlloc {
			addSize(last, "size", s, "size")
			continue
		}
		if last != nil && s.Tag == ir.TagStackFree && last.Tag == ir.TagStackFree {
			addSize(last, "size", s, "size")
			continue
		}
		if last != nil && s.Tag == ir.TagStackAlloc && last.Tag == ir.TagStackFree {
			last = ir.StackFreeAlloc(intAttr(last, "size"), intAttr(s, "size"))
			continue
		}
		if last != nil && s.Tag == ir.TagStackAlloc && last.Tag == ir.TagStackFreeAlloc {
			addSize(last, "size_alloc", s, "size")
			continue
		}
		// A stack_free immediately preceding a ret is dead: ret unwinds
		// the activation record itself. retd (the implicit fall-off-end
		// return) is deliberately excluded here, matching ovmc4.py.
		if last != nil && last.Tag == ir.TagStackFree && s.Tag == ir.TagRet {
			last = nil
		}
		if s.Tag == ir.TagJmp || s.Tag == ir.TagRet {
			dead = true
		}
		if last != nil {
			out = append(out, last)
		}
		last = s
	}
	if last != nil {
		out = append(out, last)
	}
	fn.Children = out
}

func intAttr(n *tree.Node, key string) int {
	v, _ := n.Get(key)
	i, _ := strconv.Atoi(v)
	return i
}

func addSize(dst *tree.Node, dstKey string, src *tree.Node, srcKey string) {
	dst.Set(dstKey, strconv.Itoa(intAttr(dst, dstKey)+intAttr(src, srcKey)))
}
