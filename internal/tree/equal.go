package tree

// Equal reports whether a and b have the same shape, ignoring the "line"
// attribute (which only ever reflects where a node appeared in source, not
// what it means) but comparing every other attribute and all children in
// order. This is the tree-equality predicate the optimizer tests use
// instead of a field-by-field reflect.DeepEqual, since
// "line" legitimately differs between an expected tree built by hand and one
// produced by lowering real source.
func Equal(a, b *Node) bool {
	return equalIgnoring(a, b, nil)
}

// EqualIgnoring is Equal but additionally ignores the named attributes on
// every node, e.g. a class-interface check that must ignore a symbol's
// bound value while still comparing its name.
func EqualIgnoring(a, b *Node, extraIgnored ...string) bool {
	return equalIgnoring(a, b, extraIgnored)
}

func equalIgnoring(a, b *Node, extra []string) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag != b.Tag {
		return false
	}
	if !attrsEqual(a.Attrs, b.Attrs, extra) || !attrsEqual(b.Attrs, a.Attrs, extra) {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !equalIgnoring(a.Children[i], b.Children[i], extra) {
			return false
		}
	}
	return true
}

func ignored(key string, extra []string) bool {
	if key == "line" {
		return true
	}
	for _, e := range extra {
		if e == key {
			return true
		}
	}
	return false
}

// attrsEqual checks every non-ignored attribute of a has a matching value
// in b; called both directions by equalIgnoring to catch attrs present in
// only one side.
func attrsEqual(a, b []Attr, extra []string) bool {
	for _, at := range a {
		if ignored(at.Key, extra) {
			continue
		}
		v, ok := lookup(b, at.Key)
		if !ok || v != at.Val {
			return false
		}
	}
	return true
}

func lookup(attrs []Attr, key string) (string, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
