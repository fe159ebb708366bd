package genstack

import "strconv"

// Labeler hands out sequential label names, mirroring ovmc3_vm.py's
// label_new() global counter.
type Labeler struct {
	n int
}

// New returns the next unused label name.
func (l *Labeler) New() string {
	l.n++
	return "L" + strconv.Itoa(l.n)
}

// BreakPush pushes a Break frame with a freshly allocated (but not yet
// necessarily used) exit label.
func (s *Stack) BreakPush(lab *Labeler, subtype string) *BreakFrame {
	f := &BreakFrame{Subtype: subtype, ExitLabel: lab.New()}
	s.Push(f)
	return f
}

// LoopPush pushes a Loop frame with a freshly allocated continue label.
func (s *Stack) LoopPush(lab *Labeler, subtype string) *LoopFrame {
	f := &LoopFrame{Subtype: subtype, ContinueLabel: lab.New()}
	s.Push(f)
	return f
}

// NearestBreak returns the nearest enclosing Break frame, or nil if a
// Method boundary (or the bottom of the stack) is reached first.
func (s *Stack) NearestBreak() *BreakFrame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if f, ok := s.frames[i].(*BreakFrame); ok {
			return f
		}
		if _, ok := s.frames[i].(*MethodFrame); ok {
			return nil
		}
	}
	return nil
}

// NearestLoop returns the nearest enclosing Loop frame (targeted by
// `continue`), stopping at a Method boundary.
func (s *Stack) NearestLoop() *LoopFrame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if f, ok := s.frames[i].(*LoopFrame); ok {
			return f
		}
		if _, ok := s.frames[i].(*MethodFrame); ok {
			return nil
		}
	}
	return nil
}

// FullyQualifiedName composes a method's fully qualified name from the
// frames already on the stack (the enclosing Namespace/Class/Method chain,
// not including methodName's own not-yet-pushed Method frame) joined by
// "$", prefixed by modName — mirroring ovmc3_vm.py's method_func_name,
// which is called at the point a method is about to be pushed.
func FullyQualifiedName(s *Stack, modName, methodName string) string {
	var parts []string
	for i := len(s.frames) - 1; i >= 0; i-- {
		switch f := s.frames[i].(type) {
		case *MethodFrame:
			parts = append([]string{f.Name}, parts...)
		case *ClassFrame:
			parts = append([]string{f.Name}, parts...)
		case *NamespaceFrame:
			parts = append([]string{f.Name}, parts...)
		}
	}
	parts = append(parts, methodName)
	out := modName
	for _, p := range parts {
		out += "$" + p
	}
	return out
}
