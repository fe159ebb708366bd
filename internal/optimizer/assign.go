package optimizer

import "oocbe/internal/tree"

var literalTags = map[string]bool{
	"nil": true, "bool": true, "int": true, "float": true, "str": true,
}

// optimizeAssign classifies a generic `assign` node into one of three
// specialized tags based on its rewritten right-hand side, or leaves it as
// a generic `assign` (handled like any other statement) when its left-hand
// side is not a bare local-variable reference — mirroring ovmc2.py's
// parse_assign.
func optimizeAssign(nd *tree.Node) *tree.Node {
	lhs := Optimize(nd.Nth(0))
	rhs := Optimize(nd.Nth(1))

	if lhs.Tag != "obj1" {
		out := tree.CopyShallow(nd)
		out.Append(lhs)
		out.Append(rhs)
		return out
	}

	var kind string
	switch {
	case literalTags[rhs.Tag]:
		kind = "assign1c"
	case rhs.Tag == "obj1":
		kind = "assign11"
	default:
		kind = "assign1"
	}

	out := tree.New(kind)
	out.Attrs = append(out.Attrs, nd.Attrs...)
	out.Append(lhs)
	out.Append(rhs)
	return out
}
