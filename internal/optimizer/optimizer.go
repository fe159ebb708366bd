package optimizer

import "oocbe/internal/tree"

// Run optimizes an entire module tree, mirroring ovmc2.py's parse_module:
// every top-level statement is rewritten independently and the module
// node's own tag/attrs are preserved.
func Run(module *tree.Node) *tree.Node {
	return optimizeChildren(module)
}
